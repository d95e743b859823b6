package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"eanft/internal/accounts/models"
)

// InMemory keeps account records in a map. The mutex makes Upsert a single
// atomic step, matching the Postgres ON CONFLICT behaviour.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[string]*models.AccountRecord
}

func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[string]*models.AccountRecord)}
}

// Upsert creates the record or overwrites PublicKey and AllKeys of the
// existing one. created reports which branch ran.
func (s *InMemory) Upsert(_ context.Context, record *models.AccountRecord, now time.Time) (*models.AccountRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.accounts[record.AccountID]; ok {
		existing.PublicKey = record.PublicKey
		existing.AllKeys = record.AllKeys
		existing.UpdatedAt = now
		out := *existing
		return &out, false, nil
	}
	stored := &models.AccountRecord{
		AccountID: record.AccountID,
		PublicKey: record.PublicKey,
		AllKeys:   record.AllKeys,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.accounts[record.AccountID] = stored
	out := *stored
	return &out, true, nil
}

func (s *InMemory) FindByAccountID(_ context.Context, accountID string) (*models.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.accounts[accountID]; ok {
		out := *record
		return &out, nil
	}
	return nil, ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]*models.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AccountRecord, 0, len(s.accounts))
	for _, record := range s.accounts {
		r := *record
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}
