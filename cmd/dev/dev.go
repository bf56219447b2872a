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

// dev 以示範情境與記憶體快照儲存啟動伺服器，就緒後在瀏覽器開啟物件列表。
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os/exec"
	"runtime"
	"time"

	"github.com/zintix-labs/seedlab/server"
	"github.com/zintix-labs/seedlab/server/netsvr"
	"github.com/zintix-labs/seedlab/server/svrcfg"
)

func main() {
	name := flag.String("demo", "turn_based", "built-in scenario name")
	noBrowser := flag.Bool("no-browser", false, "do not open a browser")
	flag.Parse()

	env, err := svrcfg.LoadEnvFrom(map[string]string{
		"SEEDLAB_LOG_MODE": "dev",
		"SEEDLAB_SCENARIO": *name,
		"SEEDLAB_DB_PATH":  ":memory:",
	})
	if err != nil {
		log.Fatal(err)
	}
	sCfg, closer, err := svrcfg.Build(env)
	if err != nil {
		log.Fatal("build server config: " + err.Error())
	}
	defer closer()

	if !*noBrowser {
		go func() {
			if err := waitForTCP(env.Addr, 5*time.Second); err != nil {
				log.Println("dev server not ready: " + err.Error())
				return
			}
			if err := openBrowser("http://localhost" + env.Addr + "/v1/objects"); err != nil {
				log.Println("open browser failed: " + err.Error())
			}
		}()
	}
	svr := netsvr.NewChiServer(env.Addr, netsvr.Timeouts{})
	if err := server.RunWithSvr(context.Background(), sCfg, svr); err != nil {
		log.Println(err)
	}
}

func waitForTCP(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	target := "127.0.0.1" + addr
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", target, 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for %s", addr)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
