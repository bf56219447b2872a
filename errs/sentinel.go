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

package errs

// 共用哨兵錯誤。搭配 Detail 附加上下文，呼叫端以 errors.Is 判斷。
var (
	// ErrEntropy OS entropy 取得失敗。沒有較弱的替代來源。
	ErrEntropy = NewFatal("os entropy unavailable")
	// ErrSeedSize seed 位元組長度與演算法要求不符。
	ErrSeedSize = NewFatal("seed size mismatch")
	// ErrUnknownKind 演算法名稱未註冊。
	ErrUnknownKind = NewWarn("unknown rng kind")
	// ErrDuplicateKind 同名演算法重複註冊。
	ErrDuplicateKind = NewFatal("duplicate rng kind")
	// ErrSelfLink 物件不能成為自己的 target。
	ErrSelfLink = NewWarn("object cannot target itself")
	// ErrCycle 連結會造成 source/target 循環。
	ErrCycle = NewWarn("link would create a cycle")
	// ErrNoObject 物件不存在或已被移除。
	ErrNoObject = NewWarn("object not found")
	// ErrNotFound 查詢的資料（例如已保存的快照）不存在。
	ErrNotFound = NewWarn("record not found")
	// ErrFlushLimit 單次 flush 處理的指令數超過上限，多半是無限連鎖。
	ErrFlushLimit = NewFatal("command flush limit exceeded")
	// ErrReleased 租借的 entropy 已歸還後又被使用。
	ErrReleased = NewFatal("entropy lease used after release")
	// ErrBadState 快照資料無法還原。
	ErrBadState = NewWarn("invalid rng state")
	// ErrBadConfig 情境設定不合法。
	ErrBadConfig = NewWarn("invalid scenario config")
)
