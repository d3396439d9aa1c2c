// Package drafts persists in-progress wizard records.
//
// A draft is always written as a whole record: Save replaces whatever was stored for the
// same wizard and owner. There are no partial updates and no schema migrations.
package drafts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Wizard identifies which onboarding form a draft belongs to.
type Wizard string

const (
	WizardContact Wizard = "contact"
	WizardCompany Wizard = "company"
	WizardVehicle Wizard = "vehicle"
)

// Valid reports whether w is a known wizard.
func (w Wizard) Valid() bool {
	switch w {
	case WizardContact, WizardCompany, WizardVehicle:
		return true
	}
	return false
}

// ErrNotFound is returned by Get when no draft exists for the key.
var ErrNotFound = errors.New("draft not found")

// Draft is the serialized state of one wizard for one user.
type Draft struct {
	Wizard    Wizard         `json:"wizard"`
	OwnerID   string         `json:"owner_id"`
	Step      int            `json:"step"`
	Data      map[string]any `json:"data"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store is the persistence port for drafts.
type Store interface {
	Save(ctx context.Context, d Draft) (Draft, error)
	Get(ctx context.Context, wizard Wizard, ownerID string) (Draft, error)
	Delete(ctx context.Context, wizard Wizard, ownerID string) error
	Count(ctx context.Context) (int, error)
}

func key(wizard Wizard, ownerID string) string {
	return fmt.Sprintf("drafts:%s:%s", wizard, ownerID)
}

// MemoryStore provides thread-safe in-memory storage for drafts.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]Draft
	now    func() time.Time
}

// NewMemoryStore creates a new in-memory draft store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts: make(map[string]Draft),
		now:    time.Now,
	}
}

// Save stores or replaces the draft for its wizard and owner
func (s *MemoryStore) Save(_ context.Context, d Draft) (Draft, error) {
	if !d.Wizard.Valid() {
		return Draft{}, fmt.Errorf("unknown wizard %q", d.Wizard)
	}
	d.UpdatedAt = s.now().UTC()
	d.Data = cloneData(d.Data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key(d.Wizard, d.OwnerID)] = d
	return d, nil
}

// Get retrieves a draft if it exists
func (s *MemoryStore) Get(_ context.Context, wizard Wizard, ownerID string) (Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[key(wizard, ownerID)]
	if !ok {
		return Draft{}, ErrNotFound
	}
	d.Data = cloneData(d.Data)
	return d, nil
}

// Delete removes a draft from the store
func (s *MemoryStore) Delete(_ context.Context, wizard Wizard, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, key(wizard, ownerID))
	return nil
}

// Count returns the total number of drafts in the store
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.drafts), nil
}

// cloneData copies the top level so callers cannot mutate stored state.
func cloneData(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
