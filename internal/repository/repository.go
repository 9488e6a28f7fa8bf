// Package repository declares the storage ports used by the dairy services.
// Backends live in the sub packages (memory, sqlite, mongodb, badger).
package repository

import (
	"context"
	"errors"

	"github.com/mamadbah2/dairy/internal/domain/models"
)

// ErrNotFound is returned when a lookup by id or name has no match.
var ErrNotFound = errors.New("record not found")

// RateStore holds the single active Rate.
type RateStore interface {
	// Get returns ok=false when no rate was ever stored.
	Get(ctx context.Context) (rate models.Rate, ok bool, err error)
	Set(ctx context.Context, rate models.Rate) error
}

// MemberStore persists suppliers together with their embedded history.
type MemberStore interface {
	// All returns members ordered by name.
	All(ctx context.Context) ([]models.Member, error)
	FindByName(ctx context.Context, name string) (models.Member, error)
	FindByID(ctx context.Context, id string) (models.Member, error)
	Insert(ctx context.Context, member models.Member) error
	Update(ctx context.Context, member models.Member) error
	Delete(ctx context.Context, id string) error
	ClearHistory(ctx context.Context, id string) error
}

// RecordStore persists individual collection records.
type RecordStore interface {
	Insert(ctx context.Context, record models.CollectionRecord) error
	// All returns records newest first.
	All(ctx context.Context) ([]models.CollectionRecord, error)
}

// SessionStore persists grouped shift sessions.
type SessionStore interface {
	Insert(ctx context.Context, session models.CollectionSession) error
	Update(ctx context.Context, session models.CollectionSession) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (models.CollectionSession, error)
	// All returns sessions newest first.
	All(ctx context.Context) ([]models.CollectionSession, error)
}

// DraftStore keeps the unsaved entry grid across restarts.
type DraftStore interface {
	Save(ctx context.Context, rows []models.RowState) error
	// Load returns an empty slice when there is no draft.
	Load(ctx context.Context) ([]models.RowState, error)
	Clear(ctx context.Context) error
}

// Stores bundles one backend's implementations.
type Stores struct {
	Rates    RateStore
	Members  MemberStore
	Records  RecordStore
	Sessions SessionStore
	close    func(ctx context.Context) error
}

// NewStores assembles a Stores value. closeFn may be nil.
func NewStores(rates RateStore, members MemberStore, records RecordStore, sessions SessionStore, closeFn func(ctx context.Context) error) *Stores {
	return &Stores{Rates: rates, Members: members, Records: records, Sessions: sessions, close: closeFn}
}

// Close releases the backend connection, if any.
func (s *Stores) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}
