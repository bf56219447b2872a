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

package netsvr

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const DefaultAddr = ":5808"

// Timeouts http.Server 的逾時設定。零值欄位沿用預設。
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

var defaultTimeouts = Timeouts{
	Read:  10 * time.Second,
	Write: 30 * time.Second,
	Idle:  120 * time.Second,
}

// ChiAdapter 以 chi 實作 NetSvr。
type ChiAdapter struct {
	router chi.Router
	server *http.Server
	addr   string
}

// NewChiServer addr 為空時使用 DefaultAddr。
func NewChiServer(addr string, to Timeouts) *ChiAdapter {
	if addr == "" {
		addr = DefaultAddr
	}
	if to.Read <= 0 {
		to.Read = defaultTimeouts.Read
	}
	if to.Write <= 0 {
		to.Write = defaultTimeouts.Write
	}
	if to.Idle <= 0 {
		to.Idle = defaultTimeouts.Idle
	}
	cr := chi.NewRouter()
	return &ChiAdapter{
		router: cr,
		server: &http.Server{
			Addr:         addr,
			Handler:      cr,
			ReadTimeout:  to.Read,
			WriteTimeout: to.Write,
			IdleTimeout:  to.Idle,
		},
		addr: addr,
	}
}

func NewChiServerDefault() *ChiAdapter { return NewChiServer(DefaultAddr, Timeouts{}) }

// Ready 檢查 server 是否完整建構（子路由群組不算）。
func (c *ChiAdapter) Ready() bool {
	if c == nil || c.router == nil || c.server == nil || c.server.Handler == nil {
		return false
	}
	_, _, err := net.SplitHostPort(c.addr)
	return err == nil
}

func (c *ChiAdapter) Run() error { return c.server.ListenAndServe() }

func (c *ChiAdapter) Shutdown(ctx context.Context) error { return c.server.Shutdown(ctx) }

func (c *ChiAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) { c.router.ServeHTTP(w, r) }

func (c *ChiAdapter) Address() string { return c.addr }

func (c *ChiAdapter) Use(mw func(http.Handler) http.Handler) { c.router.Use(mw) }
func (c *ChiAdapter) Get(path string, h http.HandlerFunc)    { c.router.Get(path, h) }
func (c *ChiAdapter) Post(path string, h http.HandlerFunc)   { c.router.Post(path, h) }
func (c *ChiAdapter) Put(path string, h http.HandlerFunc)    { c.router.Put(path, h) }
func (c *ChiAdapter) Delete(path string, h http.HandlerFunc) { c.router.Delete(path, h) }

func (c *ChiAdapter) Group(path string, fn func(NetRouter)) {
	c.router.Route(path, func(r chi.Router) {
		fn(&ChiAdapter{router: r})
	})
}

// URLParam 取得路由參數，讓 handler 不必直接 import chi。
func URLParam(r *http.Request, key string) string { return chi.URLParam(r, key) }
