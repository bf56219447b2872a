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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/seedlab/errs"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errs.Wrap(context.Canceled, "flush"), http.StatusRequestTimeout},
		{errs.Detail(errs.ErrNoObject, "3v1"), http.StatusNotFound},
		{errs.Wrap(errs.Detail(errs.ErrNotFound, "snap"), "load"), http.StatusNotFound},
		{errs.Detail(errs.ErrCycle, "a->b"), http.StatusBadRequest},
		{errs.ErrEntropy, http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Errorf("StatusCode(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestWrite(t *testing.T) {
	rr := httptest.NewRecorder()
	Write(rr, errs.Detail(errs.ErrUnknownKind, "mt19937"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", rr.Code)
	}
	var b Body
	if err := json.NewDecoder(rr.Body).Decode(&b); err != nil {
		t.Fatal(err)
	}
	if b.Level != "warn" || b.Error == "" {
		t.Fatalf("body = %+v", b)
	}

	rr = httptest.NewRecorder()
	Write(rr, nil)
	if rr.Body.Len() != 0 {
		t.Fatalf("nil error must not write")
	}
}
