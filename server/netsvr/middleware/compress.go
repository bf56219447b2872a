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

package middleware

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// 快照與報表的 JSON 重複性高，壓縮比通常在 5 倍以上。
var (
	gzipPool = sync.Pool{New: func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return w
	}}
	zstdPool = sync.Pool{New: func() any {
		w, err := zstd.NewWriter(io.Discard,
			zstd.WithEncoderLevel(zstd.SpeedFastest),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			panic(err)
		}
		return w
	}}
)

type encoder interface {
	io.WriteCloser
	Flush() error
	Reset(w io.Writer)
}

type encoding struct {
	name    string
	acquire func(w io.Writer) encoder
	release func(e encoder)
}

var encodings = []encoding{
	{
		name: "zstd",
		acquire: func(w io.Writer) encoder {
			e := zstdPool.Get().(*zstd.Encoder)
			e.Reset(w)
			return e
		},
		release: func(e encoder) { zstdPool.Put(e) },
	},
	{
		name: "gzip",
		acquire: func(w io.Writer) encoder {
			e := gzipPool.Get().(*gzip.Writer)
			e.Reset(w)
			return e
		},
		release: func(e encoder) { gzipPool.Put(e) },
	},
}

// pick 依 zstd、gzip 的優先序挑選用戶端接受的編碼。
func pick(accept string) *encoding {
	accept = strings.ToLower(accept)
	for i := range encodings {
		if strings.Contains(accept, encodings[i].name) {
			return &encodings[i]
		}
	}
	return nil
}

type compressWriter struct {
	http.ResponseWriter
	enc         encoder
	passthrough bool
	wroteHeader bool
}

func (cw *compressWriter) WriteHeader(code int) {
	if cw.wroteHeader {
		return
	}
	cw.wroteHeader = true
	h := cw.Header()
	h.Del("Content-Length")
	// 1xx、204、304 沒有 body，不能帶 Content-Encoding
	if (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified {
		cw.passthrough = true
		h.Del("Content-Encoding")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		if cw.Header().Get("Content-Type") == "" {
			cw.Header().Set("Content-Type", http.DetectContentType(b))
		}
		cw.WriteHeader(http.StatusOK)
	}
	if cw.passthrough {
		return cw.ResponseWriter.Write(b)
	}
	return cw.enc.Write(b)
}

func (cw *compressWriter) Flush() {
	if !cw.passthrough {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressWriter) Unwrap() http.ResponseWriter { return cw.ResponseWriter }

// Compression 依 Accept-Encoding 以 zstd 或 gzip 壓縮回應。HEAD 與 upgrade 請求不處理。
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead || r.Header.Get("Upgrade") != "" || w.Header().Get("Content-Encoding") != "" {
			next.ServeHTTP(w, r)
			return
		}
		enc := pick(r.Header.Get("Accept-Encoding"))
		if enc == nil {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Encoding", enc.name)
		w.Header().Add("Vary", "Accept-Encoding")

		e := enc.acquire(w)
		cw := &compressWriter{ResponseWriter: w, enc: e}
		defer func() {
			if cw.passthrough {
				// 沒有 body 的狀態碼不能寫出壓縮尾端
				e.Reset(io.Discard)
			}
			_ = e.Close()
			enc.release(e)
		}()
		next.ServeHTTP(cw, r)
	})
}
