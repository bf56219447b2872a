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

// Package entropy 提供兩種 entropy 來源：
//   - OS：作業系統密碼學亂數，慢但獨立，用於根 seed 與快取初始化。
//   - Cache：每個執行槽位一個 ChaCha8，從 OS 取一次種子後重複使用，供大量 seed 快速產生。
package entropy

import (
	"crypto/rand"
	"io"

	"github.com/zintix-labs/seedlab/errs"
)

// FillOS 以 OS entropy 填滿 p。失敗時回傳 errs.ErrEntropy（Fatal），沒有較弱的替代方案。
func FillOS(p []byte) error {
	return fillFrom(rand.Reader, p)
}

// MustFillOS 同 FillOS，失敗直接 panic。
func MustFillOS(p []byte) {
	if err := FillOS(p); err != nil {
		panic(err)
	}
}

func fillFrom(r io.Reader, p []byte) error {
	if _, err := io.ReadFull(r, p); err != nil {
		return errs.WrapWithExtra(errs.ErrEntropy, "fill from os entropy", err.Error())
	}
	return nil
}
