// Package memory provides process local implementations of the repository
// ports. State is lost on exit; values are copied in and out so callers never
// share slices with the store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository"
)

// NewStores returns a fresh in-memory backend.
func NewStores() *repository.Stores {
	return repository.NewStores(NewRateStore(), NewMemberStore(), NewRecordStore(), NewSessionStore(), nil)
}

// RateStore keeps the single rate value.
type RateStore struct {
	mu   sync.RWMutex
	rate *models.Rate
}

// NewRateStore creates an empty rate store.
func NewRateStore() *RateStore { return &RateStore{} }

// Get implements repository.RateStore.
func (s *RateStore) Get(_ context.Context) (models.Rate, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rate == nil {
		return models.Rate{}, false, nil
	}
	return *s.rate, true, nil
}

// Set implements repository.RateStore.
func (s *RateStore) Set(_ context.Context, rate models.Rate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = &rate
	return nil
}

// MemberStore keeps members keyed by id.
type MemberStore struct {
	mu      sync.RWMutex
	members map[string]models.Member
}

// NewMemberStore creates an empty member store.
func NewMemberStore() *MemberStore {
	return &MemberStore{members: make(map[string]models.Member)}
}

// All implements repository.MemberStore.
func (s *MemberStore) All(_ context.Context) ([]models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, copyMember(m))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].JoinDate.Before(out[j].JoinDate)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// FindByName returns the earliest joined member whose name equals name exactly.
func (s *MemberStore) FindByName(ctx context.Context, name string) (models.Member, error) {
	all, _ := s.All(ctx)
	for _, m := range all {
		if m.Name == name {
			return m, nil
		}
	}
	return models.Member{}, repository.ErrNotFound
}

// FindByID implements repository.MemberStore.
func (s *MemberStore) FindByID(_ context.Context, id string) (models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return models.Member{}, repository.ErrNotFound
	}
	return copyMember(m), nil
}

// Insert implements repository.MemberStore.
func (s *MemberStore) Insert(_ context.Context, member models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.members[member.ID]; exists {
		return fmt.Errorf("member %s already exists", member.ID)
	}
	s.members[member.ID] = copyMember(member)
	return nil
}

// Update implements repository.MemberStore.
func (s *MemberStore) Update(_ context.Context, member models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[member.ID]; !ok {
		return repository.ErrNotFound
	}
	s.members[member.ID] = copyMember(member)
	return nil
}

// Delete implements repository.MemberStore.
func (s *MemberStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.members, id)
	return nil
}

// ClearHistory implements repository.MemberStore.
func (s *MemberStore) ClearHistory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.History = []models.CollectionRecord{}
	s.members[id] = m
	return nil
}

// RecordStore keeps collection records in insertion order.
type RecordStore struct {
	mu      sync.RWMutex
	records []models.CollectionRecord

	// FailOn makes Insert fail for records with this name. Used by tests to
	// exercise partial batch failures.
	FailOn string
}

// NewRecordStore creates an empty record store.
func NewRecordStore() *RecordStore { return &RecordStore{} }

// Insert implements repository.RecordStore.
func (s *RecordStore) Insert(_ context.Context, record models.CollectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailOn != "" && record.Name == s.FailOn {
		return fmt.Errorf("insert record %s: simulated failure", record.Name)
	}
	s.records = append(s.records, record)
	return nil
}

// All implements repository.RecordStore.
func (s *RecordStore) All(_ context.Context) ([]models.CollectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CollectionRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// SessionStore keeps sessions keyed by id.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.CollectionSession

	// FailInsert makes every Insert fail.
	FailInsert bool
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]models.CollectionSession)}
}

// Insert implements repository.SessionStore.
func (s *SessionStore) Insert(_ context.Context, session models.CollectionSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailInsert {
		return fmt.Errorf("insert session %s: simulated failure", session.ID)
	}
	s.sessions[session.ID] = copySession(session)
	return nil
}

// Update implements repository.SessionStore.
func (s *SessionStore) Update(_ context.Context, session models.CollectionSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return repository.ErrNotFound
	}
	s.sessions[session.ID] = copySession(session)
	return nil
}

// Delete implements repository.SessionStore.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// GetByID implements repository.SessionStore.
func (s *SessionStore) GetByID(_ context.Context, id string) (models.CollectionSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return models.CollectionSession{}, repository.ErrNotFound
	}
	return copySession(session), nil
}

// All implements repository.SessionStore.
func (s *SessionStore) All(_ context.Context) ([]models.CollectionSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CollectionSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, copySession(session))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// DraftStore keeps the encoded draft blob, mirroring what a disk store holds.
type DraftStore struct {
	mu   sync.Mutex
	blob []byte
}

// NewDraftStore creates an empty draft store.
func NewDraftStore() *DraftStore { return &DraftStore{} }

// Save implements repository.DraftStore.
func (s *DraftStore) Save(_ context.Context, rows []models.RowState) error {
	blob, err := repository.EncodeDraft(rows)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = blob
	return nil
}

// Load implements repository.DraftStore.
func (s *DraftStore) Load(_ context.Context) ([]models.RowState, error) {
	s.mu.Lock()
	blob := s.blob
	s.mu.Unlock()
	return repository.DecodeDraft(blob)
}

// Clear implements repository.DraftStore.
func (s *DraftStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = nil
	return nil
}

func copyMember(m models.Member) models.Member {
	m.History = append([]models.CollectionRecord{}, m.History...)
	return m
}

func copySession(s models.CollectionSession) models.CollectionSession {
	s.Records = append([]models.CollectionRecord{}, s.Records...)
	if s.FactoryEntry != nil {
		entry := *s.FactoryEntry
		s.FactoryEntry = &entry
	}
	return s
}
