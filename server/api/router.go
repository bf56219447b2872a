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

package api

import (
	"log/slog"
	"net/http"

	v1 "github.com/zintix-labs/seedlab/server/api/v1"
	"github.com/zintix-labs/seedlab/server/netsvr"
	"github.com/zintix-labs/seedlab/server/netsvr/middleware"
	"github.com/zintix-labs/seedlab/server/svrcfg"
)

// RegisterRoutes 掛上 middleware 與所有路由。快照保存相關路由只在設定了儲存時註冊。
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	h, err := v1.NewHandler(sCfg)
	if err != nil {
		return err
	}
	registerMiddleware(svr, sCfg.Log)
	svr.Get("/healthz", healthz)
	svr.Group("/v1", func(r netsvr.NetRouter) {
		r.Get("/objects", h.Objects)
		r.Get("/objects/{id}", h.Object)
		r.Post("/objects/{id}/reseed", h.Reseed)
		r.Post("/step", h.Step)
		r.Get("/report", h.Report)
		r.Get("/snapshot", h.Snapshot)
		if h.HasStore() {
			r.Get("/snapshots", h.Snapshots)
			r.Post("/snapshot/{name}", h.SaveSnapshot)
			r.Get("/snapshot/{name}", h.LoadSnapshot)
			r.Post("/snapshot/{name}/restore", h.RestoreSnapshot)
			r.Delete("/snapshot/{name}", h.DeleteSnapshot)
		}
	})
	return nil
}

func registerMiddleware(svr netsvr.NetRouter, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover)
	svr.Use(middleware.Compression)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
