// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Session lifecycle
	IncSessionOpened()
	IncSessionReleased()
	IncSessionOpenFailed()

	// Users
	IncUserRegistered()
	IncLoginFailed()

	// Catalogue writes
	IncAuthorCreated()
	IncAuthorUpdated()
	IncAuthorDeleted()
	IncTextCreated()
	IncTextDeleted()
	IncCitationCreated()

	// Author cache
	IncAuthorCacheHit()
	IncAuthorCacheMiss()

	// Search
	ObserveSearchDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
