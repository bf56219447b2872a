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

// Package httperr 是 HTTP 邊界層：把 errs 等級映射為狀態碼並以 JSON 回寫。
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/seedlab/errs"
)

// Body 錯誤回應格式。
type Body struct {
	Error string `json:"error"`
	Level string `json:"level"`
}

// StatusCode 對應規則：
//   - context 超時 504、取消 408
//   - 找不到物件或資料 404
//   - Warn 400（使用方式錯誤）
//   - Fatal 與非 *errs.E 的錯誤 500
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, errs.ErrNoObject), errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	}
	if e, ok := errs.AsErr(err); ok && e.ErrLv == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Write 回寫錯誤，err 為 nil 時不做事。
func Write(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	lv := errs.ErrLv(errs.Fatal)
	if e, ok := errs.AsErr(err); ok {
		lv = errs.ErrLv(e.ErrLv)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(StatusCode(err))
	_ = json.NewEncoder(w).Encode(Body{Error: err.Error(), Level: lv})
}

// Log 只記錄伺服器端值得關注的錯誤：5xx 為 Error，408/409/429 為 Warn，其餘交給 access log。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	switch status := StatusCode(err); {
	case status >= 500:
		log.Error(msg, slog.Any("err", err))
	case status == http.StatusRequestTimeout, status == http.StatusConflict, status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Any("err", err))
	}
}
