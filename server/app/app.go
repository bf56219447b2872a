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

// Package app 管理長駐元件（HTTP server、背景 worker）的啟動與優雅關閉。
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

// Component 可被 App 啟動並關閉的元件。Run 應阻塞直到元件停止。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

type App struct {
	comps   []Component
	grace   time.Duration
	log     *slog.Logger
	signals bool
}

type Option func(*App)

// WithGrace 優雅關閉的等待上限，預設 5 秒。
func WithGrace(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.grace = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithoutSignals 不監聽 SIGINT/SIGTERM，只靠 ctx 或元件錯誤結束。
func WithoutSignals() Option {
	return func(a *App) { a.signals = false }
}

func New(opts ...Option) *App {
	a := &App{grace: 5 * time.Second, log: slog.New(slog.DiscardHandler), signals: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) Register(c ...Component) *App {
	a.comps = append(a.comps, c...)
	return a
}

// Run 啟動所有元件，直到 ctx 結束、收到終止信號或任一元件回傳錯誤，之後關閉全部元件。
// 元件因正常關閉回傳的 http.ErrServerClosed 不視為錯誤。
func (a *App) Run(ctx context.Context) error {
	if a.signals {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
	}

	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) { errCh <- c.Run() }(c)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		if errors.Is(runErr, http.ErrServerClosed) {
			runErr = nil
		}
	}
	return errors.Join(runErr, a.shutdown())
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.grace)
	defer cancel()
	var all []error
	// 反向關閉，後註冊的先停
	for i := len(a.comps) - 1; i >= 0; i-- {
		if err := a.comps[i].Shutdown(ctx); err != nil {
			a.log.Warn("shutdown", slog.Any("err", err))
			all = append(all, err)
		}
	}
	return errors.Join(all...)
}
