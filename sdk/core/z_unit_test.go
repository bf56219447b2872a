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

import (
	"bytes"
	"encoding/binary"
	"errors"
	"slices"
	"testing"

	"github.com/zintix-labs/seedlab/errs"
)

func seedOf(k Kind, b byte) []byte {
	return bytes.Repeat([]byte{b}, k.SeedSize())
}

func TestKindsDeterminism(t *testing.T) {
	for _, k := range Builtin() {
		a, err := k.New(seedOf(k, 7))
		if err != nil {
			t.Fatalf("%s: %v", k.Name(), err)
		}
		b, _ := k.New(seedOf(k, 7))
		for i := 0; i < 16; i++ {
			if x, y := a.Uint64(), b.Uint64(); x != y {
				t.Fatalf("%s: mismatch at %d: %d != %d", k.Name(), i, x, y)
			}
		}
		c, _ := k.New(seedOf(k, 8))
		if a.Uint64() == c.Uint64() && a.Uint64() == c.Uint64() {
			t.Fatalf("%s: different seeds produced identical output", k.Name())
		}
	}
}

func TestSeedSizeMismatch(t *testing.T) {
	for _, k := range Builtin() {
		_, err := k.New(make([]byte, k.SeedSize()+1))
		if !errors.Is(err, errs.ErrSeedSize) {
			t.Fatalf("%s: expected ErrSeedSize, got %v", k.Name(), err)
		}
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	for _, k := range Builtin() {
		r, _ := k.New(seedOf(k, 3))
		r.Uint64()
		r.Uint32()
		snap, err := r.Snapshot()
		if err != nil {
			t.Fatalf("%s snapshot: %v", k.Name(), err)
		}
		want := r.Uint64()

		other, _ := k.New(seedOf(k, 9))
		if err := other.Restore(snap); err != nil {
			t.Fatalf("%s restore: %v", k.Name(), err)
		}
		if got := other.Uint64(); got != want {
			t.Fatalf("%s: restored stream diverged: %d != %d", k.Name(), got, want)
		}
		if err := other.Restore([]byte("garbage")); !errors.Is(err, errs.ErrBadState) {
			t.Fatalf("%s: expected ErrBadState, got %v", k.Name(), err)
		}
	}
}

func TestFillBytesLittleEndianWords(t *testing.T) {
	for _, k := range Builtin() {
		a, _ := k.New(seedOf(k, 5))
		b, _ := k.New(seedOf(k, 5))
		buf := make([]byte, 12)
		a.FillBytes(buf)

		w0, w1 := b.Uint64(), b.Uint64()
		if binary.LittleEndian.Uint64(buf[:8]) != w0 {
			t.Fatalf("%s: first word mismatch", k.Name())
		}
		var tail [8]byte
		binary.LittleEndian.PutUint64(tail[:], w1)
		if !bytes.Equal(buf[8:], tail[:4]) {
			t.Fatalf("%s: tail mismatch", k.Name())
		}
		// 尾端消耗整個字組，兩者位置應一致
		if a.Uint64() != b.Uint64() {
			t.Fatalf("%s: position diverged after partial word", k.Name())
		}
	}
}

func TestRegistry(t *testing.T) {
	r := Default()
	if !slices.Equal(r.Names(), []string{"chacha8", "pcg32", "pcg64", "wyrand", "xoshiro256"}) {
		t.Fatalf("unexpected names: %v", r.Names())
	}
	if k, err := r.Lookup("wyrand"); err != nil || k != KindWyRand {
		t.Fatalf("lookup wyrand: %v %v", k, err)
	}
	if _, err := r.Lookup("mt19937"); !errors.Is(err, errs.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if err := r.Register(KindChaCha8); !errors.Is(err, errs.ErrDuplicateKind) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := MergeRegistry(Default(), Default()); err == nil {
		t.Fatalf("expected merge conflict")
	}
	m, err := MergeRegistry(nil, Default())
	if err != nil || len(m.Names()) != 5 {
		t.Fatalf("merge: %v", err)
	}
}

func TestXoshiroZeroSeed(t *testing.T) {
	r, _ := KindXoshiro256.New(make([]byte, 32))
	if r.Uint64() == 0 && r.Uint64() == 0 {
		t.Fatalf("zero seed produced stuck generator")
	}
}

func TestExpandUint64(t *testing.T) {
	a := ExpandUint64(42, 32)
	b := ExpandUint64(42, 32)
	c := ExpandUint64(43, 32)
	if !bytes.Equal(a, b) || bytes.Equal(a, c) || len(a) != 32 {
		t.Fatalf("expand not deterministic or not distinct")
	}
}

func TestCorePickAndShuffle(t *testing.T) {
	c := New(NewWyRand(9))
	if got := c.Pick(nil); got != -1 {
		t.Fatalf("expected -1 for empty pick, got %d", got)
	}
	if c.IntN(0) != -1 || c.UintN(0) != 0 {
		t.Fatalf("unexpected bounded result for zero max")
	}
	for i := 0; i < 100; i++ {
		if v := c.IntN(7); v < 0 || v >= 7 {
			t.Fatalf("IntN out of range: %d", v)
		}
		if f := c.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %v", f)
		}
	}

	src := []int{1, 2, 3, 4}
	c.ShuffleInts(src)
	got := slices.Clone(src)
	slices.Sort(got)
	if !slices.Equal(got, []int{1, 2, 3, 4}) {
		t.Fatalf("shuffle changed elements: %v", src)
	}
}
