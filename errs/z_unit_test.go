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

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDetailMatchesSentinel(t *testing.T) {
	err := Detail(ErrSeedSize, "want %d got %d", 32, 8)
	if !errors.Is(err, ErrSeedSize) {
		t.Fatalf("expected errors.Is to match sentinel")
	}
	if errors.Is(err, ErrCycle) {
		t.Fatalf("unexpected match with other sentinel")
	}
	if !strings.Contains(err.Error(), "want 32 got 8") {
		t.Fatalf("extra missing: %s", err.Error())
	}
	if err.ErrLv != Fatal {
		t.Fatalf("level not kept")
	}
}

func TestWrapKeepsLevel(t *testing.T) {
	w := Wrap(Detail(ErrUnknownKind, "xyz"), "lookup")
	if w.ErrLv != Warn {
		t.Fatalf("expected warn, got %s", ErrLv(w.ErrLv))
	}
	if !errors.Is(w, ErrUnknownKind) {
		t.Fatalf("wrapped sentinel not found")
	}
	if f := Wrap(io.EOF, "read"); f.ErrLv != Fatal {
		t.Fatalf("foreign error should be fatal")
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Fatalf("nil is not fatal")
	}
	if !IsFatal(io.EOF) {
		t.Fatalf("foreign error should count as fatal")
	}
	if IsFatal(NewWarn("x")) {
		t.Fatalf("warn is not fatal")
	}
	if _, ok := AsErr(io.EOF); ok {
		t.Fatalf("io.EOF is not *E")
	}
}
