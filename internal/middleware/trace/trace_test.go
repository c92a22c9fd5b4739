package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"transferdash/internal/log"
)

func TestMiddleware_AssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Format: "json", Output: &buf})

	var seen string
	h := NewMiddleware(logger, func(*http.Request) string { return "198.51.100.1" }).
		Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
			log.FromContext(r.Context()).InfoContext(r.Context(), "Inside handler")
			w.WriteHeader(http.StatusTeapot)
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("request id %q is not a UUID", seen)
	}
	if rec.Header().Get(HeaderRequestID) != seen {
		t.Errorf("response header = %q, want %q", rec.Header().Get(HeaderRequestID), seen)
	}
	out := buf.String()
	if strings.Count(out, seen) < 2 {
		t.Errorf("handler and access logs should carry the request id:\n%s", out)
	}
	if !strings.Contains(out, `"status_code":418`) || !strings.Contains(out, `"client_ip":"198.51.100.1"`) {
		t.Errorf("access log missing fields:\n%s", out)
	}
}

func TestMiddleware_KeepsValidIncomingID(t *testing.T) {
	h := NewMiddleware(log.New(log.Config{Output: &bytes.Buffer{}}), nil).
		Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get(HeaderRequestID) != id {
		t.Errorf("valid incoming id should be kept")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got == "<script>" || got == "" {
		t.Errorf("invalid incoming id should be replaced, got %q", got)
	}
}
