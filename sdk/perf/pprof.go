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

// Package perf 以 runtime/pprof 包住一次執行，cmd/run 的 -p 旗標使用。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/seedlab/errs"
)

// DefaultDir pprof 檔案寫入路徑。
const DefaultDir = "build/profiling"

// Modes 支援的模式，空字串表示不取樣。
var Modes = []string{"", "cpu", "heap", "allocs", "mutex", "block"}

// Run 依 mode 執行 exe 並把 profile 寫到 dir/<mode>.pprof，回傳檔案路徑（未取樣時為空）。
func Run(exe func() error, mode, dir string) (string, error) {
	if mode == "" {
		return "", exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(err, "create pprof dir")
	}
	file := filepath.Join(dir, mode+".pprof")

	switch mode {
	case "cpu":
		return file, cpu(exe, file)
	case "heap", "allocs":
		if err := exe(); err != nil {
			return "", err
		}
		runtime.GC()
		return file, write(mode, file)
	case "mutex":
		prev := runtime.SetMutexProfileFraction(1)
		defer runtime.SetMutexProfileFraction(prev)
		if err := exe(); err != nil {
			return "", err
		}
		return file, write(mode, file)
	case "block":
		runtime.SetBlockProfileRate(1)
		defer runtime.SetBlockProfileRate(0)
		if err := exe(); err != nil {
			return "", err
		}
		return file, write(mode, file)
	default:
		return "", errs.Warnf("unknown pprof mode %q", mode)
	}
}

func cpu(exe func() error, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return errs.Wrap(err, "create cpu profile")
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

func write(name, file string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return errs.Warnf("no %s profile", name)
	}
	f, err := os.Create(file)
	if err != nil {
		return errs.Wrap(err, "create "+name+" profile")
	}
	if err := prof.WriteTo(f, 0); err != nil {
		f.Close()
		return errs.Wrap(err, "write "+name+" profile")
	}
	return f.Close()
}
