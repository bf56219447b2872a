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

package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/core"
	"github.com/zintix-labs/seedlab/sdk/world"
)

var pair = Pair{Source: core.KindChaCha8, Target: core.KindWyRand}

func ids(w *world.World, n int) []world.ID {
	out := make([]world.ID, n)
	for i := range out {
		out[i] = w.Spawn("obj")
	}
	return out
}

func TestLinkOrderAndQueries(t *testing.T) {
	w := world.New()
	o := ids(w, 4)
	require.NoError(t, NewGraph().Link(pair, o[0]))

	g := NewGraph()
	require.NoError(t, g.Link(pair, o[0], o[3], o[1], o[2]))
	assert.Equal(t, []world.ID{o[3], o[1], o[2]}, g.TargetsOf(pair, o[0]))
	assert.True(t, g.IsSource(pair, o[0]))
	assert.False(t, g.IsSource(pair, o[1]))

	src, ok := g.SourceOf(pair, o[1])
	require.True(t, ok)
	assert.Equal(t, o[0], src)
	assert.Equal(t, 3, g.Len(pair))

	// 其他 Pair 互不影響
	other := Pair{Source: core.KindChaCha8, Target: core.KindPCG32}
	assert.Empty(t, g.TargetsOf(other, o[0]))
	assert.Equal(t, []Pair{pair}, g.Pairs())
	require.NoError(t, g.Validate())
}

func TestLinkRejectsSelfAndCycle(t *testing.T) {
	w := world.New()
	o := ids(w, 3)
	g := NewGraph()

	err := g.Link(pair, o[0], o[1], o[0])
	require.ErrorIs(t, err, errs.ErrSelfLink)
	assert.Equal(t, 0, g.Len(pair), "failed link must not insert partial edges")

	require.NoError(t, g.Link(pair, o[0], o[1]))
	require.NoError(t, g.Link(pair, o[1], o[2]))
	require.ErrorIs(t, g.Link(pair, o[2], o[0]), errs.ErrCycle)
	require.NoError(t, g.Validate())
}

func TestRelinkMovesTarget(t *testing.T) {
	w := world.New()
	o := ids(w, 4)
	g := NewGraph()
	require.NoError(t, g.Link(pair, o[0], o[2], o[3]))
	require.NoError(t, g.Link(pair, o[1], o[2]))

	assert.Equal(t, []world.ID{o[3]}, g.TargetsOf(pair, o[0]))
	assert.Equal(t, []world.ID{o[2]}, g.TargetsOf(pair, o[1]))

	// 重複連結同一 source 不改變順序
	require.NoError(t, g.Link(pair, o[1], o[2], o[2]))
	assert.Equal(t, []world.ID{o[2]}, g.TargetsOf(pair, o[1]))
	require.NoError(t, g.Validate())
}

func TestUnlinkAndRemoveObject(t *testing.T) {
	w := world.New()
	o := ids(w, 5)
	g := NewGraph()
	require.NoError(t, g.Link(pair, o[0], o[1], o[2]))
	require.NoError(t, g.Link(pair, o[1], o[3], o[4]))

	assert.True(t, g.Unlink(pair, o[2]))
	assert.False(t, g.Unlink(pair, o[2]))
	assert.Equal(t, []world.ID{o[1]}, g.TargetsOf(pair, o[0]))

	orphans := g.RemoveObject(o[1])
	assert.Equal(t, []world.ID{o[3], o[4]}, orphans[pair])
	assert.False(t, g.IsSource(pair, o[0]))
	_, ok := g.SourceOf(pair, o[3])
	assert.False(t, ok)
	assert.Equal(t, 0, g.Len(pair))
	require.NoError(t, g.Validate())
}

func TestEdgesOrdered(t *testing.T) {
	w := world.New()
	o := ids(w, 4)
	g := NewGraph()
	require.NoError(t, g.Link(pair, o[1], o[3]))
	require.NoError(t, g.Link(pair, o[0], o[2]))
	edges := g.Edges(pair)
	require.Len(t, edges, 2)
	assert.Equal(t, Edge{Source: o[0], Target: o[2], Order: 0}, edges[0])
	assert.Equal(t, Edge{Source: o[1], Target: o[3], Order: 0}, edges[1])
}
