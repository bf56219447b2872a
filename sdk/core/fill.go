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

package core

import "encoding/binary"

// FillFromUint64 以 next 產生的 64-bit 字組依 little-endian 填滿 p。
// 尾端不足 8 bytes 時仍會消耗一整個字組，剩餘位元丟棄。
//
// 所有內建演算法的 FillBytes 都遵守這個約定，fork 出來的 seed 因此
// 只取決於 Uint64 序列。
func FillFromUint64(p []byte, next func() uint64) {
	for len(p) >= 8 {
		binary.LittleEndian.PutUint64(p, next())
		p = p[8:]
	}
	if len(p) > 0 {
		var tail [8]byte
		binary.LittleEndian.PutUint64(tail[:], next())
		copy(p, tail[:])
	}
}

// splitmix64 將輸入值混洗成新的 64-bit 值，用於種子展開。
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// ExpandUint64 以 splitmix64 將一個整數展開成 size 個 bytes。
// 相同 (v, size) 永遠得到相同結果，供 CLI 以整數指定根 seed。
func ExpandUint64(v uint64, size int) []byte {
	out := make([]byte, size)
	x := v
	FillFromUint64(out, func() uint64 {
		x += 0x9e3779b97f4a7c15
		return splitmix64(x)
	})
	return out
}
