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

package perf

import (
	"errors"
	"os"
	"testing"
)

func TestRunWithoutProfile(t *testing.T) {
	called := false
	file, err := Run(func() error { called = true; return nil }, "", t.TempDir())
	if err != nil || file != "" || !called {
		t.Fatalf("file %q err %v called %v", file, err, called)
	}
}

func TestRunWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []string{"cpu", "heap", "allocs", "mutex", "block"} {
		file, err := Run(func() error {
			buf := make([][]byte, 0, 64)
			for i := 0; i < 64; i++ {
				buf = append(buf, make([]byte, 1024))
			}
			_ = buf
			return nil
		}, mode, dir)
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if st, err := os.Stat(file); err != nil || st.Size() == 0 {
			t.Fatalf("%s: profile missing: %v", mode, err)
		}
	}
}

func TestRunPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := Run(func() error { return boom }, "heap", t.TempDir()); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if _, err := Run(func() error { return nil }, "trace", t.TempDir()); err == nil {
		t.Fatalf("unknown mode must fail")
	}
}
