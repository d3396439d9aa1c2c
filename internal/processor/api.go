package processor

import (
	"time"

	"fleet-crm/internal/matching"
	"fleet-crm/pkg/events"
)

// Engine exposes the contract used by the HTTP layer and main.
type Engine interface {
	Start()
	Stop(timeout time.Duration) error
	Submit(requestedBy string) (Run, error)
	Get(id string) (Run, bool)
	List() []Run
	GetStats() ProcessingStats
	SetMatcher(m *matching.Matcher)
	Matcher() *matching.Matcher
	SetEventStore(es events.Store)
}

// Ensure ProcessingEngine implements Engine.
var _ Engine = (*ProcessingEngine)(nil)
