package handler

import (
	"fmt"
	"net/http"

	"github.com/citeshelf/citeshelf/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "citeshelf_sessions_opened_total %d\n", snap.SessionsOpened)
	writeMetric(w, "citeshelf_sessions_released_total %d\n", snap.SessionsReleased)
	writeMetric(w, "citeshelf_session_open_failures_total %d\n", snap.SessionOpenFailures)
	writeMetric(w, "citeshelf_sessions_open %d\n", snap.SessionsOpen)

	writeMetric(w, "citeshelf_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "citeshelf_logins_failed_total %d\n", snap.LoginsFailed)

	writeMetric(w, "citeshelf_authors_written_total{op=\"create\"} %d\n", snap.AuthorsCreated)
	writeMetric(w, "citeshelf_authors_written_total{op=\"update\"} %d\n", snap.AuthorsUpdated)
	writeMetric(w, "citeshelf_authors_written_total{op=\"delete\"} %d\n", snap.AuthorsDeleted)
	writeMetric(w, "citeshelf_texts_written_total{op=\"create\"} %d\n", snap.TextsCreated)
	writeMetric(w, "citeshelf_texts_written_total{op=\"delete\"} %d\n", snap.TextsDeleted)
	writeMetric(w, "citeshelf_citations_created_total %d\n", snap.CitationsCreated)

	writeMetric(w, "citeshelf_author_cache_hits_total %d\n", snap.AuthorCacheHits)
	writeMetric(w, "citeshelf_author_cache_misses_total %d\n", snap.AuthorCacheMisses)

	writeMetric(w, "citeshelf_search_duration_seconds_count %d\n", snap.SearchDurationCount)
	writeMetric(w, "citeshelf_search_duration_seconds_sum %.6f\n", float64(snap.SearchDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
