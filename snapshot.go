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

package seedlab

import (
	"encoding/hex"
	"encoding/json"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/link"
	"github.com/zintix-labs/seedlab/sdk/rng"
	"github.com/zintix-labs/seedlab/sdk/world"
)

// Snapshot 某一時刻所有存活物件的 seed、entropy 狀態與連結。
type Snapshot struct {
	Objects []ObjectState `json:"objects" yaml:"objects"`
	Links   []LinkState   `json:"links" yaml:"links"`
}

type ObjectState struct {
	ID      world.ID      `json:"id" yaml:"id"`
	Name    string        `json:"name" yaml:"name"`
	Streams []StreamState `json:"streams" yaml:"streams"`
}

// StreamState 單一演算法的 seed 與目前位置。
type StreamState struct {
	Kind        string     `json:"kind" yaml:"kind"`
	Seed        string     `json:"seed,omitempty" yaml:"seed,omitempty"`
	SeedVersion uint64     `json:"seed_version" yaml:"seed_version"`
	State       *rng.State `json:"state,omitempty" yaml:"state,omitempty"`
}

type LinkState struct {
	Source string      `json:"source" yaml:"source"`
	Target string      `json:"target" yaml:"target"`
	Edges  []link.Edge `json:"edges" yaml:"edges"`
}

// Snapshot 擷取目前狀態。應在 Flush 之後呼叫，佇列中的指令不會被記錄。
func (l *Lab) Snapshot() (*Snapshot, error) {
	snap := &Snapshot{}
	for _, id := range l.w.Objects() {
		obj := ObjectState{ID: id, Name: l.w.Name(id)}
		for _, k := range l.w.Kinds(id) {
			ss := StreamState{Kind: k.Name(), SeedVersion: l.w.SeedVersion(id, k)}
			if s, ok := l.w.Seed(id, k); ok {
				ss.Seed = hex.EncodeToString(s.Bytes())
			}
			if e, ok := l.w.Entropy(id, k); ok {
				st, err := e.State()
				if err != nil {
					return nil, err
				}
				ss.State = &st
			}
			obj.Streams = append(obj.Streams, ss)
		}
		snap.Objects = append(snap.Objects, obj)
	}
	for _, p := range l.g.Pairs() {
		snap.Links = append(snap.Links, LinkState{
			Source: p.Source.Name(),
			Target: p.Target.Name(),
			Edges:  l.g.Edges(p),
		})
	}
	return snap, nil
}

// RestoreStreams 將快照中的 entropy 狀態寫回 ID 相同且仍存活的物件，回傳還原的串流數。
//
// 只還原串流位置，不改動 seed、seed 版本與連結，也不觸發自動連鎖。
func (l *Lab) RestoreStreams(snap *Snapshot) (int, error) {
	type restore struct {
		id    world.ID
		live  *rng.Entropy // 已存在的串流，就地 Restore
		fresh *rng.Entropy // 尚無串流，直接放入
		data  []byte
	}
	// 先全部解碼驗證，任何一筆失敗都不動到世界
	var plan []restore
	for _, obj := range snap.Objects {
		if !l.w.Alive(obj.ID) {
			continue
		}
		for _, ss := range obj.Streams {
			if ss.State == nil {
				continue
			}
			k, err := l.reg.Lookup(ss.Kind)
			if err != nil {
				return 0, err
			}
			if e, ok := l.w.Entropy(obj.ID, k); ok {
				dry, err := e.Clone()
				if err != nil {
					return 0, err
				}
				if err := dry.Restore(ss.State.Data); err != nil {
					return 0, errs.Wrap(err, "restore "+obj.ID.String())
				}
				plan = append(plan, restore{id: obj.ID, live: e, data: ss.State.Data})
				continue
			}
			e, err := rng.FromState(l.reg, *ss.State)
			if err != nil {
				return 0, errs.Wrap(err, "restore "+obj.ID.String())
			}
			plan = append(plan, restore{id: obj.ID, fresh: e})
		}
	}

	n := 0
	for _, r := range plan {
		if r.live != nil {
			if err := r.live.Restore(r.data); err != nil {
				return n, err
			}
		} else if err := l.w.PutEntropy(r.id, r.fresh); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// MarshalSnapshot JSON 序列化。
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, errs.Wrap(err, "marshal snapshot")
	}
	return b, nil
}

func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errs.Wrap(errs.Detail(errs.ErrBadState, "snapshot json"), err.Error())
	}
	return s, nil
}
