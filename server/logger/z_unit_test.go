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

package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := map[string]LogMode{"": ModeDev, "DEV": ModeDev, "prod": ModeProd, "off": ModeSilence}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("loud"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAsyncHandlerFlushesOnClose(t *testing.T) {
	var buf bytes.Buffer
	ah := NewAsyncHandler(handlerTo(ModeProd, &buf), 64)
	log := slog.New(ah).With("lab", "t")
	for i := range 10 {
		log.InfoContext(context.Background(), "signal dropped", "i", i)
	}
	ah.Close()
	ah.Close()

	if got := strings.Count(buf.String(), "signal dropped"); got+int(ah.Dropped()) != 10 {
		t.Fatalf("written %d dropped %d", got, ah.Dropped())
	}
	if !strings.Contains(buf.String(), `"lab":"t"`) {
		t.Fatalf("attrs lost: %s", buf.String())
	}

	// 關閉後的紀錄只計數
	before := ah.Dropped()
	log.Info("late")
	if ah.Dropped() != before+1 {
		t.Fatalf("late record not counted")
	}
}

func TestSilenceDisablesDebug(t *testing.T) {
	if Silent().Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("silent logger should not enable info")
	}
}
