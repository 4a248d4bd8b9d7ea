package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/citeshelf/citeshelf/internal/metrics"
	"github.com/citeshelf/citeshelf/internal/store"
	"github.com/citeshelf/citeshelf/internal/store/memstore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSession_ProvidesAndReleases(t *testing.T) {
	st := memstore.New()
	rec := metrics.NewInMemory()

	var seen store.Session
	handler := Session(st, rec, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := store.FromContext(r.Context())
		if !ok {
			t.Fatal("session missing from request context")
		}
		if got := st.OpenSessions(); got != 1 {
			t.Errorf("open sessions during request = %d, want 1", got)
		}
		seen = sess
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/authors/", nil))

	if seen == nil {
		t.Fatal("handler did not run")
	}
	if got := st.OpenSessions(); got != 0 {
		t.Errorf("open sessions after request = %d, want 0", got)
	}
	if _, err := seen.GetAuthor(context.Background(), "x"); !errors.Is(err, store.ErrSessionClosed) {
		t.Errorf("session should be closed after the request, got %v", err)
	}

	snap := rec.Snapshot()
	if snap.SessionsOpened != 1 || snap.SessionsReleased != 1 || snap.SessionsOpen != 0 {
		t.Errorf("session metrics = %+v", snap)
	}
}

func TestSession_ReleasedOnPanic(t *testing.T) {
	st := memstore.New()

	handler := Recoverer(discardLogger())(Session(st, nil, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/author/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	if got := st.OpenSessions(); got != 0 {
		t.Errorf("open sessions after panic = %d, want 0", got)
	}
}

func TestSession_OpenFailure(t *testing.T) {
	rec := metrics.NewInMemory()
	failing := store.OpenerFunc(func(ctx context.Context) (store.Session, error) {
		return nil, errors.New("pool exhausted")
	})

	called := false
	handler := Session(failing, rec, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/authors/", nil))

	if called {
		t.Error("handler must not run without a session")
	}
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"code":"SESSION_UNAVAILABLE"`) {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
	if snap := rec.Snapshot(); snap.SessionOpenFailures != 1 || snap.SessionsOpen != 0 {
		t.Errorf("session metrics = %+v", snap)
	}
}
