package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository"
)

// RateStore persists the single rate row (id 0).
type RateStore struct {
	db *sqlx.DB
}

type rateRow struct {
	BuyingFatRate  float64 `db:"buying_fat_rate"`
	SellingFatRate float64 `db:"selling_fat_rate"`
	MilkResaleRate float64 `db:"milk_resale_rate"`
	UpdatedAt      int64   `db:"updated_at"`
}

// Get implements repository.RateStore.
func (s *RateStore) Get(ctx context.Context) (models.Rate, bool, error) {
	var row rateRow
	err := s.db.GetContext(ctx, &row, `SELECT buying_fat_rate, selling_fat_rate, milk_resale_rate, updated_at FROM rates WHERE id = 0`)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Rate{}, false, nil
	}
	if err != nil {
		return models.Rate{}, false, fmt.Errorf("load rate: %w", err)
	}
	return models.Rate{
		BuyingFatRate:  row.BuyingFatRate,
		SellingFatRate: row.SellingFatRate,
		MilkResaleRate: row.MilkResaleRate,
		UpdatedAt:      fromMillis(row.UpdatedAt),
	}, true, nil
}

// Set implements repository.RateStore.
func (s *RateStore) Set(ctx context.Context, rate models.Rate) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO rates (id, buying_fat_rate, selling_fat_rate, milk_resale_rate, updated_at) VALUES (0, ?, ?, ?, ?)`,
		rate.BuyingFatRate, rate.SellingFatRate, rate.MilkResaleRate, toMillis(rate.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store rate: %w", err)
	}
	return nil
}

// MemberStore persists members; history is a JSON column.
type MemberStore struct {
	db *sqlx.DB
}

type memberRow struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	JoinDate int64  `db:"join_date"`
	History  string `db:"history"`
}

func (r memberRow) toModel() (models.Member, error) {
	history, err := decodeRecords(r.History)
	if err != nil {
		return models.Member{}, fmt.Errorf("decode history of member %s: %w", r.ID, err)
	}
	return models.Member{ID: r.ID, Name: r.Name, JoinDate: fromMillis(r.JoinDate), History: history}, nil
}

// All implements repository.MemberStore.
func (s *MemberStore) All(ctx context.Context) ([]models.Member, error) {
	var rows []memberRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name, join_date, history FROM members ORDER BY name, join_date`); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	members := make([]models.Member, 0, len(rows))
	for _, row := range rows {
		m, err := row.toModel()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// FindByName implements repository.MemberStore.
func (s *MemberStore) FindByName(ctx context.Context, name string) (models.Member, error) {
	return s.findOne(ctx, `SELECT id, name, join_date, history FROM members WHERE name = ? ORDER BY join_date LIMIT 1`, name)
}

// FindByID implements repository.MemberStore.
func (s *MemberStore) FindByID(ctx context.Context, id string) (models.Member, error) {
	return s.findOne(ctx, `SELECT id, name, join_date, history FROM members WHERE id = ?`, id)
}

func (s *MemberStore) findOne(ctx context.Context, query string, arg any) (models.Member, error) {
	var row memberRow
	err := s.db.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Member{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Member{}, fmt.Errorf("load member: %w", err)
	}
	return row.toModel()
}

// Insert implements repository.MemberStore.
func (s *MemberStore) Insert(ctx context.Context, member models.Member) error {
	history, err := encodeRecords(member.History)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO members (id, name, join_date, history) VALUES (?, ?, ?, ?)`,
		member.ID, member.Name, toMillis(member.JoinDate), history); err != nil {
		return fmt.Errorf("insert member %s: %w", member.Name, err)
	}
	return nil
}

// Update implements repository.MemberStore.
func (s *MemberStore) Update(ctx context.Context, member models.Member) error {
	history, err := encodeRecords(member.History)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE members SET name = ?, join_date = ?, history = ? WHERE id = ?`,
		member.Name, toMillis(member.JoinDate), history, member.ID)
	if err != nil {
		return fmt.Errorf("update member %s: %w", member.ID, err)
	}
	return requireAffected(res)
}

// Delete implements repository.MemberStore.
func (s *MemberStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete member %s: %w", id, err)
	}
	return requireAffected(res)
}

// ClearHistory implements repository.MemberStore.
func (s *MemberStore) ClearHistory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE members SET history = '[]' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("clear history of member %s: %w", id, err)
	}
	return requireAffected(res)
}

// RecordStore persists individual collection records.
type RecordStore struct {
	db *sqlx.DB
}

type recordRow struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Fat         float64 `db:"fat"`
	MilkQty     float64 `db:"milk_qty"`
	AmountToPay float64 `db:"amount_to_pay"`
	Timestamp   int64   `db:"timestamp"`
	IsNight     bool    `db:"is_night"`
}

// Insert implements repository.RecordStore.
func (s *RecordStore) Insert(ctx context.Context, record models.CollectionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, name, fat, milk_qty, amount_to_pay, timestamp, is_night) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Name, record.FatPercent, record.MilkQty, record.AmountToPay, toMillis(record.Timestamp), record.IsNight)
	if err != nil {
		return fmt.Errorf("insert entry %s: %w", record.Name, err)
	}
	return nil
}

// All implements repository.RecordStore.
func (s *RecordStore) All(ctx context.Context) ([]models.CollectionRecord, error) {
	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, name, fat, milk_qty, amount_to_pay, timestamp, is_night FROM entries ORDER BY timestamp DESC, rowid DESC`); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	records := make([]models.CollectionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.CollectionRecord{
			ID:          row.ID,
			Name:        row.Name,
			FatPercent:  row.Fat,
			MilkQty:     row.MilkQty,
			AmountToPay: row.AmountToPay,
			Timestamp:   fromMillis(row.Timestamp),
			IsNight:     row.IsNight,
		})
	}
	return records, nil
}

// SessionStore persists grouped sessions; records and the factory entry are JSON columns.
type SessionStore struct {
	db *sqlx.DB
}

type sessionRow struct {
	ID           string         `db:"id"`
	Records      string         `db:"records"`
	FactoryEntry sql.NullString `db:"factory_entry"`
	Timestamp    int64          `db:"timestamp"`
	IsNight      bool           `db:"is_night"`
}

func (r sessionRow) toModel() (models.CollectionSession, error) {
	records, err := decodeRecords(r.Records)
	if err != nil {
		return models.CollectionSession{}, fmt.Errorf("decode records of session %s: %w", r.ID, err)
	}
	session := models.CollectionSession{
		ID:        r.ID,
		Records:   records,
		Timestamp: fromMillis(r.Timestamp),
		IsNight:   r.IsNight,
	}
	if r.FactoryEntry.Valid && r.FactoryEntry.String != "" {
		var entry models.CollectionRecord
		if err := json.Unmarshal([]byte(r.FactoryEntry.String), &entry); err != nil {
			return models.CollectionSession{}, fmt.Errorf("decode factory entry of session %s: %w", r.ID, err)
		}
		session.FactoryEntry = &entry
	}
	return session, nil
}

func sessionArgs(session models.CollectionSession) (string, sql.NullString, error) {
	records, err := encodeRecords(session.Records)
	if err != nil {
		return "", sql.NullString{}, err
	}
	var factory sql.NullString
	if session.FactoryEntry != nil {
		data, err := json.Marshal(session.FactoryEntry)
		if err != nil {
			return "", sql.NullString{}, fmt.Errorf("encode factory entry: %w", err)
		}
		factory = sql.NullString{String: string(data), Valid: true}
	}
	return records, factory, nil
}

// Insert implements repository.SessionStore.
func (s *SessionStore) Insert(ctx context.Context, session models.CollectionSession) error {
	records, factory, err := sessionArgs(session)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO entry_sessions (id, records, factory_entry, timestamp, is_night) VALUES (?, ?, ?, ?, ?)`,
		session.ID, records, factory, toMillis(session.Timestamp), session.IsNight); err != nil {
		return fmt.Errorf("insert session %s: %w", session.ID, err)
	}
	return nil
}

// Update implements repository.SessionStore.
func (s *SessionStore) Update(ctx context.Context, session models.CollectionSession) error {
	records, factory, err := sessionArgs(session)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE entry_sessions SET records = ?, factory_entry = ?, timestamp = ?, is_night = ? WHERE id = ?`,
		records, factory, toMillis(session.Timestamp), session.IsNight, session.ID)
	if err != nil {
		return fmt.Errorf("update session %s: %w", session.ID, err)
	}
	return requireAffected(res)
}

// Delete implements repository.SessionStore.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entry_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return requireAffected(res)
}

// GetByID implements repository.SessionStore.
func (s *SessionStore) GetByID(ctx context.Context, id string) (models.CollectionSession, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `SELECT id, records, factory_entry, timestamp, is_night FROM entry_sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CollectionSession{}, repository.ErrNotFound
	}
	if err != nil {
		return models.CollectionSession{}, fmt.Errorf("load session %s: %w", id, err)
	}
	return row.toModel()
}

// All implements repository.SessionStore.
func (s *SessionStore) All(ctx context.Context) ([]models.CollectionSession, error) {
	var rows []sessionRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, records, factory_entry, timestamp, is_night FROM entry_sessions ORDER BY timestamp DESC`); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sessions := make([]models.CollectionSession, 0, len(rows))
	for _, row := range rows {
		session, err := row.toModel()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func encodeRecords(records []models.CollectionRecord) (string, error) {
	if records == nil {
		records = []models.CollectionRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode records: %w", err)
	}
	return string(data), nil
}

func decodeRecords(value string) ([]models.CollectionRecord, error) {
	records := []models.CollectionRecord{}
	if value == "" {
		return records, nil
	}
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		return nil, err
	}
	return records, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
