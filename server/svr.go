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

// Package server 組裝並啟動 seedlab 的檢視伺服器。
//
// Run 只負責組裝：驗證 SvrCfg、建立 chi server、註冊路由、交給 app 管理生命週期。
// 設定來源（環境變數、旗標、檔案）由呼叫端決定，見 cmd/svr。
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/server/api"
	"github.com/zintix-labs/seedlab/server/app"
	"github.com/zintix-labs/seedlab/server/netsvr"
	"github.com/zintix-labs/seedlab/server/svrcfg"
)

// Run 以預設位址啟動。
func Run(ctx context.Context, sCfg *svrcfg.SvrCfg) error {
	return RunWithSvr(ctx, sCfg, netsvr.NewChiServerDefault())
}

// RunWithSvr 以呼叫端提供的 NetSvr 啟動，阻塞直到 ctx 結束或收到終止信號。
func RunWithSvr(ctx context.Context, sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		// logger 可能不可用，直接寫 stderr
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return errs.NewFatal("chi server is not ready")
	}
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		return err
	}

	sCfg.Log.Info("[seedlab] listening",
		slog.String("addr", svr.Address()),
		slog.String("scenario", sCfg.Sim.Scenario().Name),
		slog.Bool("store", sCfg.Store != nil),
	)
	err := app.New(app.WithLogger(sCfg.Log)).Register(svr).Run(ctx)
	if err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
	}
	return err
}
