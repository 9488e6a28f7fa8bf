// Package members manages suppliers and the portable JSON archive.
package members

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository"
)

var (
	// ErrBlankName is returned when adding a member without a name.
	ErrBlankName = errors.New("member name must not be blank")
	// ErrEmptyArchive is returned when an imported archive holds nothing.
	ErrEmptyArchive = errors.New("archive contains no members or entries")
	// ErrUnrecognizedArchive is returned for input that is neither a member
	// list nor a full archive.
	ErrUnrecognizedArchive = errors.New("unrecognized archive format")
)

// ImportResult counts what an import added.
type ImportResult struct {
	MembersAdded    int `json:"members_added"`
	MembersSkipped  int `json:"members_skipped"`
	SessionsAdded   int `json:"sessions_added"`
	HistoryAppended int `json:"history_appended"`
}

// Service manages members.
type Service struct {
	members  repository.MemberStore
	sessions repository.SessionStore
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires a new member service instance.
func NewService(members repository.MemberStore, sessions repository.SessionStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		members:  members,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Add creates a member with an empty history.
func (s *Service) Add(ctx context.Context, name string) (models.Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Member{}, ErrBlankName
	}
	member := models.Member{
		ID:       s.newID(),
		Name:     name,
		JoinDate: s.now().UTC(),
		History:  []models.CollectionRecord{},
	}
	if err := s.members.Insert(ctx, member); err != nil {
		return models.Member{}, fmt.Errorf("insert member: %w", err)
	}
	s.logger.Info("member added", zap.String("member_id", member.ID), zap.String("name", member.Name))
	return member, nil
}

// Remove deletes a member. Saved records are kept.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.members.Delete(ctx, id)
}

// Get returns a member by id.
func (s *Service) Get(ctx context.Context, id string) (models.Member, error) {
	return s.members.FindByID(ctx, id)
}

// List returns all members ordered by name.
func (s *Service) List(ctx context.Context) ([]models.Member, error) {
	return s.members.All(ctx)
}

// ClearHistory empties a member's history and keeps the member.
func (s *Service) ClearHistory(ctx context.Context, id string) error {
	return s.members.ClearHistory(ctx, id)
}

// ExportAll writes every session and member as a full archive.
func (s *Service) ExportAll(ctx context.Context, w io.Writer) error {
	sessions, err := s.sessions.All(ctx)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	members, err := s.members.All(ctx)
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}
	return writeJSON(w, models.Archive{Entries: sessions, Members: members})
}

// ExportMembers writes the member list only.
func (s *Service) ExportMembers(ctx context.Context, w io.Writer) error {
	members, err := s.members.All(ctx)
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}
	return writeJSON(w, members)
}

// Import reads either a member list or a full archive. Members whose name
// already exists are skipped. Imported session records are appended to the
// history of the member with the same name.
func (s *Service) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read archive: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ImportResult{}, ErrEmptyArchive
	}

	var archive models.Archive
	switch data[0] {
	case '[':
		err = json.Unmarshal(data, &archive.Members)
	case '{':
		err = json.Unmarshal(data, &archive)
	default:
		return ImportResult{}, ErrUnrecognizedArchive
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrUnrecognizedArchive, err)
	}
	if len(archive.Members) == 0 && len(archive.Entries) == 0 {
		return ImportResult{}, ErrEmptyArchive
	}

	var result ImportResult
	for _, member := range archive.Members {
		added, err := s.importMember(ctx, member)
		if err != nil {
			return result, err
		}
		if added {
			result.MembersAdded++
		} else {
			result.MembersSkipped++
		}
	}

	for _, session := range archive.Entries {
		if session.ID == "" {
			session.ID = s.newID()
		}
		if err := s.sessions.Insert(ctx, session); err != nil {
			return result, fmt.Errorf("insert session %s: %w", session.ID, err)
		}
		result.SessionsAdded++
		for _, record := range session.Records {
			appended, err := s.appendHistory(ctx, record)
			if err != nil {
				return result, err
			}
			if appended {
				result.HistoryAppended++
			}
		}
	}

	s.logger.Info("archive imported",
		zap.Int("members_added", result.MembersAdded),
		zap.Int("members_skipped", result.MembersSkipped),
		zap.Int("sessions_added", result.SessionsAdded),
	)
	return result, nil
}

func (s *Service) importMember(ctx context.Context, member models.Member) (bool, error) {
	_, err := s.members.FindByName(ctx, member.Name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("look up member %s: %w", member.Name, err)
	}
	if member.ID == "" {
		member.ID = s.newID()
	}
	if member.JoinDate.IsZero() {
		member.JoinDate = s.now().UTC()
	}
	if member.History == nil {
		member.History = []models.CollectionRecord{}
	}
	if err := s.members.Insert(ctx, member); err != nil {
		return false, fmt.Errorf("insert member %s: %w", member.Name, err)
	}
	return true, nil
}

func (s *Service) appendHistory(ctx context.Context, record models.CollectionRecord) (bool, error) {
	member, err := s.members.FindByName(ctx, record.Name)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("look up member %s: %w", record.Name, err)
	}
	member.History = append(member.History, record)
	if err := s.members.Update(ctx, member); err != nil {
		return false, fmt.Errorf("append history of %s: %w", member.ID, err)
	}
	return true, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}
	return nil
}
