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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

func goCmd(args ...string) *exec.Cmd {
	cmd := exec.Command("go", args...)
	cmd.Env = os.Environ()
	return cmd
}

func cleanCache() error {
	out, err := goCmd("clean", "-testcache").CombinedOutput()
	if err != nil {
		return fmt.Errorf("go clean -testcache: %w: %s", err, out)
	}
	return nil
}

// stream 合併 stdout/stderr 後逐行交給 fn。
func stream(cmd *exec.Cmd, fn func(line string)) error {
	pr, pw := io.Pipe()
	cmd.Stdout, cmd.Stderr = pw, pw
	if err := cmd.Start(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
		pw.Close()
	}()
	sc := bufio.NewScanner(pr)
	for sc.Scan() {
		fn(sc.Text())
	}
	return <-done
}

func runTest() error {
	info.Println("running tests")
	if err := cleanCache(); err != nil {
		return err
	}
	failed := false
	err := stream(goCmd("test", "./...", "-cover", "-count=1"), func(line string) {
		switch {
		case strings.HasPrefix(line, "ok"):
			info.Println(line)
		case strings.HasPrefix(line, "FAIL"):
			failed = true
			fail.Println(line)
		case strings.Contains(line, "build failed"), strings.Contains(line, "setup failed"):
			failed = true
			fail.Println(line)
		}
	})
	if err != nil || failed {
		return errors.New("tests finished with errors")
	}
	info.Println("all tests passed")
	return nil
}

func runTestAll() error {
	info.Println("running tests (all with coverage)")
	if err := cleanCache(); err != nil {
		return err
	}
	cmd := goCmd("test", "./...", "-cover")
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	return cmd.Run()
}

func runTestDetail() error {
	info.Println("running tests (detail)")
	if err := cleanCache(); err != nil {
		return err
	}
	return stream(goCmd("test", "./...", "-v", "-count=1"), func(line string) {
		if strings.Contains(line, "[no test files]") {
			return
		}
		switch {
		case strings.HasPrefix(line, "--- FAIL"), strings.HasPrefix(line, "FAIL"):
			fail.Println(line)
		case strings.HasPrefix(line, "--- PASS"), strings.HasPrefix(line, "ok"):
			info.Println(line)
		default:
			dim.Println(line)
		}
	})
}

// Step、快取與 async logger 都有 goroutine，race 只跑這幾個套件。
func runTestRace() error {
	info.Println("running race tests")
	cmd := goCmd("test", "-race", "-count=1", ".", "./sdk/entropy", "./sdk/world", "./server/logger", "./server/api")
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	return cmd.Run()
}

func runDemo(args []string) error {
	name := "turn_based"
	if len(args) > 0 {
		name = args[0]
	}
	info.Printf("running demo %s\n", name)
	cmd := goCmd("run", "./cmd/run", "-demo", name, "-workers", "4", "-pb")
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	return cmd.Run()
}
