package entry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository"
)

// SaveResult describes what a save batch managed to persist.
type SaveResult struct {
	// Session is the grouped session. It is nil for an empty batch.
	Session *models.CollectionSession `json:"session,omitempty"`
	// Saved and Failed count individual record inserts.
	Saved  int `json:"saved"`
	Failed int `json:"failed"`
	// SessionStored is false when the session write failed.
	SessionStored bool `json:"session_stored"`
}

// Saver turns finished rows into immutable records and their session.
type Saver struct {
	records  repository.RecordStore
	members  repository.MemberStore
	sessions repository.SessionStore
	logger   *zap.Logger
	newID    func() string
}

// NewSaver wires a Saver over the given stores.
func NewSaver(records repository.RecordStore, members repository.MemberStore, sessions repository.SessionStore, logger *zap.Logger) *Saver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saver{
		records:  records,
		members:  members,
		sessions: sessions,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// SaveAll stores one record per row, appends each stored record to the history
// of the member with exactly the same name and groups all records in a
// session. Individual failures are logged and skipped.
func (s *Saver) SaveAll(ctx context.Context, rows []models.RowState, rate models.Rate, isNight bool, at time.Time) SaveResult {
	var result SaveResult
	if len(rows) == 0 {
		return result
	}

	records := make([]models.CollectionRecord, 0, len(rows))
	for _, row := range rows {
		fat := ParseDecimal(row.FatRate)
		qty := ParseDecimal(row.MilkQty)
		records = append(records, models.CollectionRecord{
			ID:          s.newID(),
			Name:        row.Name,
			FatPercent:  fat,
			MilkQty:     qty,
			AmountToPay: ComputeAmount(fat, rate.BuyingFatRate, qty),
			Timestamp:   at,
			IsNight:     isNight,
		})
	}

	for _, record := range records {
		if err := s.records.Insert(ctx, record); err != nil {
			result.Failed++
			s.logger.Error("failed to insert record", zap.String("id", record.ID), zap.String("name", record.Name), zap.Error(err))
			continue
		}
		result.Saved++
		s.appendHistory(ctx, record)
	}

	session := models.CollectionSession{
		ID:        s.newID(),
		Records:   records,
		Timestamp: at,
		IsNight:   isNight,
	}
	result.Session = &session
	if err := s.sessions.Insert(ctx, session); err != nil {
		s.logger.Error("failed to insert session", zap.String("id", session.ID), zap.Int("records", len(records)), zap.Error(err))
		return result
	}
	result.SessionStored = true

	s.logger.Info("entries saved",
		zap.String("session_id", session.ID),
		zap.Int("saved", result.Saved),
		zap.Int("failed", result.Failed),
		zap.Bool("is_night", isNight),
	)
	return result
}

func (s *Saver) appendHistory(ctx context.Context, record models.CollectionRecord) {
	member, err := s.members.FindByName(ctx, record.Name)
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Error("failed to look up member", zap.String("name", record.Name), zap.Error(err))
		return
	}
	member.History = append(member.History, record)
	if err := s.members.Update(ctx, member); err != nil {
		s.logger.Error("failed to append member history", zap.String("member_id", member.ID), zap.Error(err))
	}
}
