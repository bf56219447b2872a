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

// Package sqlite 以 SQLite 保存 Lab 快照與情境根 seed。
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/sdk/rng"
)

//go:embed schema.sql
var schema string

// ErrNotFound 指定名稱的資料不存在。
var ErrNotFound = errs.ErrNotFound

// Store 保存快照。可被多個 goroutine 共用。
type Store struct {
	db *sql.DB
}

// Entry 快照清單項目。
type Entry struct {
	Name      string    `json:"name"`
	Objects   int       `json:"objects"`
	Links     int       `json:"links"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open 開啟（必要時建立）資料庫並套用 schema。path 為 ":memory:" 時使用記憶體資料庫。
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errs.NewWarn("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrap(err, "open sqlite db")
	}
	if path == ":memory:" {
		// 每條連線都是獨立的記憶體資料庫，只能保留一條
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(err, "ping sqlite db")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(err, "apply schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save 以名稱保存快照，同名則覆蓋。
func (s *Store) Save(ctx context.Context, name string, snap *seedlab.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewWarn("snapshot name is required")
	}
	body, err := seedlab.MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	now := time.Now().UTC().UnixMilli()
	links := 0
	for _, l := range snap.Links {
		links += len(l.Edges)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (name, objects, links, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   objects = excluded.objects,
		   links = excluded.links,
		   body = excluded.body,
		   updated_at = excluded.updated_at`,
		name, len(snap.Objects), links, body, now, now,
	)
	if err != nil {
		return errs.Wrap(err, "save snapshot")
	}
	return nil
}

// Load 讀取快照，不存在時回傳 ErrNotFound。
func (s *Store) Load(ctx context.Context, name string) (*seedlab.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE name = ?`, strings.TrimSpace(name)).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.Detail(ErrNotFound, "%s", name)
		}
		return nil, errs.Wrap(err, "load snapshot")
	}
	return seedlab.UnmarshalSnapshot(body)
}

// List 依更新時間由新到舊列出快照。
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, objects, links, updated_at FROM snapshots ORDER BY updated_at DESC, name ASC`)
	if err != nil {
		return nil, errs.Wrap(err, "list snapshots")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ms int64
		)
		if err := rows.Scan(&e.Name, &e.Objects, &e.Links, &ms); err != nil {
			return nil, errs.Wrap(err, "scan snapshot")
		}
		e.UpdatedAt = time.UnixMilli(ms).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "iterate snapshots")
	}
	return out, nil
}

// Delete 刪除快照，回傳是否真的刪除了資料。
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return false, errs.Wrap(err, "delete snapshot")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errs.Wrap(err, "delete snapshot")
	}
	return n > 0, nil
}

// SaveRootSeed 記錄情境使用的根 seed，讓以 OS entropy 啟動的模擬也能重現。
// 已有紀錄時不覆蓋。
func (s *Store) SaveRootSeed(ctx context.Context, scenario string, seed rng.Seed) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO root_seeds (scenario, kind, seed, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(scenario) DO NOTHING`,
		scenario, seed.Kind().Name(), seed.Bytes(), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return errs.Wrap(err, "save root seed")
	}
	return nil
}

// RootSeed 讀取情境的根 seed。
func (s *Store) RootSeed(ctx context.Context, reg *core.Registry, scenario string) (rng.Seed, error) {
	if err := ctx.Err(); err != nil {
		return rng.Seed{}, err
	}
	var (
		kind string
		raw  []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT kind, seed FROM root_seeds WHERE scenario = ?`, scenario).Scan(&kind, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rng.Seed{}, errs.Detail(ErrNotFound, "root seed %s", scenario)
		}
		return rng.Seed{}, errs.Wrap(err, "load root seed")
	}
	k, err := reg.Lookup(kind)
	if err != nil {
		return rng.Seed{}, err
	}
	return rng.SeedFromBinary(k, raw)
}
