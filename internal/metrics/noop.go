package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncSessionOpened()                            {}
func (n *NoopRecorder) IncSessionReleased()                          {}
func (n *NoopRecorder) IncSessionOpenFailed()                        {}
func (n *NoopRecorder) IncUserRegistered()                           {}
func (n *NoopRecorder) IncLoginFailed()                              {}
func (n *NoopRecorder) IncAuthorCreated()                            {}
func (n *NoopRecorder) IncAuthorUpdated()                            {}
func (n *NoopRecorder) IncAuthorDeleted()                            {}
func (n *NoopRecorder) IncTextCreated()                              {}
func (n *NoopRecorder) IncTextDeleted()                              {}
func (n *NoopRecorder) IncCitationCreated()                          {}
func (n *NoopRecorder) IncAuthorCacheHit()                           {}
func (n *NoopRecorder) IncAuthorCacheMiss()                          {}
func (n *NoopRecorder) ObserveSearchDuration(duration time.Duration) {}
