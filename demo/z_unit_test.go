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

package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zintix-labs/seedlab"
	"github.com/zintix-labs/seedlab/errs"
	"github.com/zintix-labs/seedlab/sdk/entropy"
)

func TestAllDemosLoad(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{"fan_out", "mine_clicker", "turn_based"}, names)
	for _, n := range names {
		sc, err := Scenario(n)
		require.NoError(t, err, n)
		assert.Equal(t, n, sc.Name)
		assert.True(t, sc.Global.HasSeed(), "%s must be reproducible", n)
	}
}

func TestDemoSimulators(t *testing.T) {
	for _, n := range Names() {
		s, err := NewSimulator(n, seedlab.WithCache(entropy.NewCache(entropy.WithSlots(1))))
		require.NoError(t, err, n)
		require.NoError(t, s.Advance(2, 2), n)
		r := s.Report(2)
		for _, g := range r.Groups {
			assert.NotZero(t, g.Draws, "%s/%s", n, g.Name)
		}
	}
}

func TestUnknownDemo(t *testing.T) {
	_, err := Scenario("../etc/passwd")
	assert.ErrorIs(t, err, errs.ErrBadConfig)
}
