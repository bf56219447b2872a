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

// ops 開發用任務：go run ./scripts <task>
package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

type task struct {
	name string
	help string
	run  func(args []string) error
}

var tasks = []task{
	{"test", "clean test cache, run all tests, print ok/FAIL lines", func([]string) error { return runTest() }},
	{"test-all", "run all tests with coverage", func([]string) error { return runTestAll() }},
	{"test-detail", "verbose tests without [no test files] lines", func([]string) error { return runTestDetail() }},
	{"test-race", "race detector on the concurrent packages", func([]string) error { return runTestRace() }},
	{"demo", "run a built-in scenario with 4 workers: demo [name]", runDemo},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	i := slices.IndexFunc(tasks, func(t task) bool { return t.name == os.Args[1] })
	if i < 0 {
		warn.Printf("unknown task: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err := tasks[i].run(os.Args[2:]); err != nil {
		fail.Println(err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: go run ./scripts [task]")
	for _, t := range tasks {
		fmt.Printf("  %s%s%s\n", t.name, strings.Repeat(" ", 12-len(t.name)), t.help)
	}
}
