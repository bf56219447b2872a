// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errs 提供 seedlab 全域共用的分級錯誤型別。
//
// 分級語意：
//   - Fatal：呼叫端的操作無法繼續（例如 OS entropy 取不到、seed 長度錯誤）。
//   - Warn：使用端輸入不合法，可修正後重試（HTTP 層會轉成 400）。
//   - Log：只需記錄，不影響流程。
package errs

import (
	"errors"
	"fmt"
)

// ErrLevel 錯誤分級
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端追加的上下文；Cause 串接下層錯誤。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
}

func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

func (e *E) Unwrap() error { return e.Cause }

// Is 讓帶有 Extra 的副本仍能以 errors.Is 比對到原本的哨兵錯誤。
// 只有「裸」哨兵（無 Extra、無 Cause）會被當成比對目標。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok || t.Extra != "" || t.Cause != nil {
		return false
	}
	return t.Message == e.Message && t.ErrLv == e.ErrLv
}

func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E { return New(Fatal, msg) }

func NewWarn(msg string) *E { return New(Warn, msg) }

func NewLog(msg string) *E { return New(Log, msg) }

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Detail 複製哨兵錯誤並附上上下文，保留原本的等級。
func Detail(sentinel *E, format string, a ...any) *E {
	return &E{
		Message: sentinel.Message,
		Extra:   fmt.Sprintf(format, a...),
		ErrLv:   sentinel.ErrLv,
	}
}

// Wrap 包裝底層錯誤。
//
// ErrLevel 規則：
//   - cause 已經是 *E：沿用其 ErrLv。
//   - 其他錯誤（標準庫或三方依賴）：一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	if errors.As(cause, &e) {
		errLv = e.ErrLv
	}
	r := New(errLv, msg)
	r.Cause = cause
	return r
}

// WrapWithExtra 同 Wrap，額外附加上下文。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// IsFatal 回報 err 鏈上是否有 Fatal 等級的 *E；非 *E 的錯誤同樣視為 Fatal。
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	e, ok := AsErr(err)
	if !ok {
		return true
	}
	return e.ErrLv == Fatal
}
