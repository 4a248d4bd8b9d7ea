package middleware

import (
	"log/slog"
	"net/http"

	"github.com/citeshelf/citeshelf/internal/metrics"
	"github.com/citeshelf/citeshelf/internal/store"
)

// Session opens one store session per request, stores it in the request
// context and closes it when the handler returns or panics. Handlers read
// it back with store.FromContext.
//
// If no session can be opened the request fails with 503 and the handler
// is not called.
func Session(opener store.Opener, recorder metrics.Recorder, logger *slog.Logger) func(http.Handler) http.Handler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := opener.Open(r.Context())
			if err != nil {
				recorder.IncSessionOpenFailed()
				logger.Error("failed to open session",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("path", r.URL.Path),
					slog.Any("error", err),
				)
				writeError(w, http.StatusServiceUnavailable, "SESSION_UNAVAILABLE", "Storage is temporarily unavailable")
				return
			}
			recorder.IncSessionOpened()
			defer func() {
				sess.Close()
				recorder.IncSessionReleased()
			}()

			next.ServeHTTP(w, r.WithContext(store.NewContext(r.Context(), sess)))
		})
	}
}
