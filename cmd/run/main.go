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

// run 在命令列執行一個情境並輸出串流統計。
//
//	go run ./cmd/run -demo turn_based -workers 8 -pb
//	go run ./cmd/run -scenario my.yaml -out json -db build/seedlab.db -snapshot last
package main

import (
	"fmt"
	"log"

	"github.com/zintix-labs/seedlab/sdk/perf"
)

func main() {
	cfg := bindVar()
	file, err := perf.Run(func() error { return executeSimulator(cfg) }, cfg.pprofmode, "")
	if err != nil {
		log.Fatal(err)
	}
	if file != "" {
		fmt.Println("profile:", file)
	}
}
