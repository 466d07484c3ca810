package bodyparse_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/njern/bodyparse"
)

func FuzzMiddlewareContentEncoding(f *testing.F) {
	f.Add("gzip", "application/json", []byte(`{"foo":"bar"}`))
	f.Add("deflate", "application/json", []byte(`{"foo":"bar"}`))
	f.Add("zstd", "text/plain", []byte("hello"))
	f.Add("gzip, deflate", "text/plain", []byte("hello"))
	f.Add("br", "application/json", []byte("{}"))
	f.Add("", "application/x-www-form-urlencoded", []byte("a[b]=1&a.c=2"))
	f.Add("", "", []byte("hello"))

	logger, _ := test.NewNullLogger()
	handler := bodyparse.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), bodyparse.WithLogger(logger))

	allowed := map[int]bool{
		http.StatusOK:                    true,
		http.StatusBadRequest:            true,
		http.StatusRequestEntityTooLarge: true,
		http.StatusUnsupportedMediaType:  true,
	}

	f.Fuzz(func(t *testing.T, encoding, contentType string, payload []byte) {
		if len(payload) > 64*1024 {
			t.Skip()
		}

		req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, "/test", bytes.NewReader(payload))
		if err != nil {
			t.Fatalf("request: %v", err)
		}

		if encoding != "" {
			req.Header.Set("Content-Encoding", encoding)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if !allowed[rr.Code] {
			t.Fatalf("unexpected status: %d (%s)", rr.Code, rr.Body.String())
		}
	})
}
