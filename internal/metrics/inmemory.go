package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SessionsOpened        uint64
	SessionsReleased      uint64
	SessionOpenFailures   uint64
	SessionsOpen          int64
	UsersRegistered       uint64
	LoginsFailed          uint64
	AuthorsCreated        uint64
	AuthorsUpdated        uint64
	AuthorsDeleted        uint64
	TextsCreated          uint64
	TextsDeleted          uint64
	CitationsCreated      uint64
	AuthorCacheHits       uint64
	AuthorCacheMisses     uint64
	SearchDurationCount   uint64
	SearchDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics
// endpoint and test assertions.
type InMemoryRecorder struct {
	sessionsOpened        atomic.Uint64
	sessionsReleased      atomic.Uint64
	sessionOpenFailures   atomic.Uint64
	sessionsOpen          atomic.Int64
	usersRegistered       atomic.Uint64
	loginsFailed          atomic.Uint64
	authorsCreated        atomic.Uint64
	authorsUpdated        atomic.Uint64
	authorsDeleted        atomic.Uint64
	textsCreated          atomic.Uint64
	textsDeleted          atomic.Uint64
	citationsCreated      atomic.Uint64
	authorCacheHits       atomic.Uint64
	authorCacheMisses     atomic.Uint64
	searchDurationCount   atomic.Uint64
	searchDurationTotalNs atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		SessionsOpened:        m.sessionsOpened.Load(),
		SessionsReleased:      m.sessionsReleased.Load(),
		SessionOpenFailures:   m.sessionOpenFailures.Load(),
		SessionsOpen:          m.sessionsOpen.Load(),
		UsersRegistered:       m.usersRegistered.Load(),
		LoginsFailed:          m.loginsFailed.Load(),
		AuthorsCreated:        m.authorsCreated.Load(),
		AuthorsUpdated:        m.authorsUpdated.Load(),
		AuthorsDeleted:        m.authorsDeleted.Load(),
		TextsCreated:          m.textsCreated.Load(),
		TextsDeleted:          m.textsDeleted.Load(),
		CitationsCreated:      m.citationsCreated.Load(),
		AuthorCacheHits:       m.authorCacheHits.Load(),
		AuthorCacheMisses:     m.authorCacheMisses.Load(),
		SearchDurationCount:   m.searchDurationCount.Load(),
		SearchDurationTotalNs: m.searchDurationTotalNs.Load(),
	}
}

// IncSessionOpened counts an opened session and raises the open gauge.
func (m *InMemoryRecorder) IncSessionOpened() {
	m.sessionsOpened.Add(1)
	m.sessionsOpen.Add(1)
}

// IncSessionReleased counts a released session and lowers the open gauge.
func (m *InMemoryRecorder) IncSessionReleased() {
	m.sessionsReleased.Add(1)
	m.sessionsOpen.Add(-1)
}

func (m *InMemoryRecorder) IncSessionOpenFailed() { m.sessionOpenFailures.Add(1) }
func (m *InMemoryRecorder) IncUserRegistered()    { m.usersRegistered.Add(1) }
func (m *InMemoryRecorder) IncLoginFailed()       { m.loginsFailed.Add(1) }
func (m *InMemoryRecorder) IncAuthorCreated()     { m.authorsCreated.Add(1) }
func (m *InMemoryRecorder) IncAuthorUpdated()     { m.authorsUpdated.Add(1) }
func (m *InMemoryRecorder) IncAuthorDeleted()     { m.authorsDeleted.Add(1) }
func (m *InMemoryRecorder) IncTextCreated()       { m.textsCreated.Add(1) }
func (m *InMemoryRecorder) IncTextDeleted()       { m.textsDeleted.Add(1) }
func (m *InMemoryRecorder) IncCitationCreated()   { m.citationsCreated.Add(1) }
func (m *InMemoryRecorder) IncAuthorCacheHit()    { m.authorCacheHits.Add(1) }
func (m *InMemoryRecorder) IncAuthorCacheMiss()   { m.authorCacheMisses.Add(1) }

// ObserveSearchDuration records search duration.
func (m *InMemoryRecorder) ObserveSearchDuration(duration time.Duration) {
	m.searchDurationCount.Add(1)
	m.searchDurationTotalNs.Add(duration.Nanoseconds())
}
