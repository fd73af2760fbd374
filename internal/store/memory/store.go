// Package memory is a map-backed presentation store for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
)

// Store keeps presentations keyed by transaction id with a request id index.
// Writes replace the stored value; the last write wins.
type Store struct {
	mu          sync.RWMutex
	byID        map[domain.TransactionID]domain.Presentation
	byRequestID map[domain.RequestID]domain.TransactionID
}

func New() *Store {
	return &Store{
		byID:        make(map[domain.TransactionID]domain.Presentation),
		byRequestID: make(map[domain.RequestID]domain.TransactionID),
	}
}

func (s *Store) LoadPresentationByID(_ context.Context, id domain.TransactionID) (domain.Presentation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrPresentationNotFound
	}
	return p, nil
}

func (s *Store) LoadPresentationByRequestID(_ context.Context, id domain.RequestID) (domain.Presentation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txID, ok := s.byRequestID[id]
	if !ok {
		return nil, domain.ErrPresentationNotFound
	}
	p, ok := s.byID[txID]
	if !ok {
		return nil, domain.ErrPresentationNotFound
	}
	return p, nil
}

func (s *Store) StorePresentation(_ context.Context, p domain.Presentation) error {
	if p == nil {
		return domain.NewValidationError("presentation is required")
	}
	base := p.Common()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[base.ID] = p
	s.byRequestID[base.RequestID] = base.ID
	return nil
}

// LoadIncompletePresentationsOlderThan returns the non-terminal presentations whose
// stage-relative anchor is at or before cutoff, oldest first.
func (s *Store) LoadIncompletePresentationsOlderThan(_ context.Context, cutoff time.Time) ([]domain.Presentation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Presentation
	for _, p := range s.byID {
		if domain.IsExpired(p, cutoff) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ai, _ := domain.ExpiryAnchor(out[i])
		aj, _ := domain.ExpiryAnchor(out[j])
		return ai.Before(aj)
	})
	return out, nil
}

// Len returns the number of stored presentations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
