// Package reporting covers saved sessions: listing, the factory entry, the
// production report, shareable summaries and sheet export.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository"
	"github.com/mamadbah2/dairy/internal/service/entry"
	"github.com/mamadbah2/dairy/internal/service/rates"
)

const (
	searchDateLayout  = "2 Jan 2006"
	sheetDateLayout   = "2006-01-02"
	summaryTimeLayout = "2 Jan 2006 15:04"
	sessionsDataRange = "Sessions!A:H"
	sessionIDRange    = "Sessions!A:A"
	defaultFactory    = "factory"
)

var (
	// ErrReportPending is returned while a session has no factory entry.
	ErrReportPending = errors.New("report pending: factory entry missing")
	// ErrFactoryEntryExists is returned when a factory entry is set twice.
	ErrFactoryEntryExists = errors.New("factory entry already set")
	// ErrInvalidFactoryEntry rejects negative factory milk or fat.
	ErrInvalidFactoryEntry = errors.New("factory milk and fat must not be negative")
	// ErrExportDisabled is returned when no sheet is configured.
	ErrExportDisabled = errors.New("sheet export is not configured")
	// ErrAlreadyExported is returned when the sheet already holds the session.
	ErrAlreadyExported = errors.New("session already exported")
	// ErrInvalidShift rejects unknown shift filters.
	ErrInvalidShift = errors.New("shift must be all, morning or night")
	// ErrAmbiguousSession is returned when an id prefix matches several sessions.
	ErrAmbiguousSession = errors.New("session id prefix is ambiguous")
)

// SheetSink receives exported session rows.
type SheetSink interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// SessionFilter narrows ListSessions. Shift is "", "all", "morning" or
// "night"; Query is matched against the session date such as "2 Mar 2025".
type SessionFilter struct {
	Shift string
	Query string
}

// FactoryInput is the bulk milk forwarded to the factory for one session.
type FactoryInput struct {
	Name       string  `json:"name"`
	MilkQty    float64 `json:"milk_qty"`
	FatPercent float64 `json:"fat"`
}

// Service exposes saved sessions and their reports.
type Service struct {
	sessions repository.SessionStore
	rates    *rates.Service
	sheet    SheetSink
	loc      *time.Location
	logger   *zap.Logger
	newID    func() string
}

// NewService wires a new reporting service instance. sheet may be nil when
// export is not configured.
func NewService(sessions repository.SessionStore, rateService *rates.Service, sheet SheetSink, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		sessions: sessions,
		rates:    rateService,
		sheet:    sheet,
		loc:      loc,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// ListSessions returns matching sessions newest first.
func (s *Service) ListSessions(ctx context.Context, filter SessionFilter) ([]models.CollectionSession, error) {
	var wantNight *bool
	switch strings.ToLower(strings.TrimSpace(filter.Shift)) {
	case "", "all":
	case models.ShiftNight:
		v := true
		wantNight = &v
	case models.ShiftMorning:
		v := false
		wantNight = &v
	default:
		return nil, ErrInvalidShift
	}

	all, err := s.sessions.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]models.CollectionSession, 0, len(all))
	for _, session := range all {
		if wantNight != nil && session.IsNight != *wantNight {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(session.Timestamp.In(s.loc).Format(searchDateLayout)), query) {
			continue
		}
		out = append(out, session)
	}
	return out, nil
}

// GetSession returns a session by id.
func (s *Service) GetSession(ctx context.Context, id string) (models.CollectionSession, error) {
	return s.sessions.GetByID(ctx, id)
}

// FindSession resolves a full id or a unique id prefix.
func (s *Service) FindSession(ctx context.Context, prefix string) (models.CollectionSession, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return models.CollectionSession{}, repository.ErrNotFound
	}
	if session, err := s.sessions.GetByID(ctx, prefix); err == nil {
		return session, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return models.CollectionSession{}, err
	}

	all, err := s.sessions.All(ctx)
	if err != nil {
		return models.CollectionSession{}, fmt.Errorf("load sessions: %w", err)
	}
	var found []models.CollectionSession
	for _, session := range all {
		if strings.HasPrefix(session.ID, prefix) {
			found = append(found, session)
		}
	}
	switch len(found) {
	case 0:
		return models.CollectionSession{}, repository.ErrNotFound
	case 1:
		return found[0], nil
	default:
		return models.CollectionSession{}, ErrAmbiguousSession
	}
}

// DeleteSession removes a session. Its records are kept.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// SetFactoryEntry records the milk forwarded to the factory for a session.
// It can only be set while absent.
func (s *Service) SetFactoryEntry(ctx context.Context, sessionID string, input FactoryInput) (models.CollectionSession, error) {
	if input.MilkQty < 0 || input.FatPercent < 0 {
		return models.CollectionSession{}, ErrInvalidFactoryEntry
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.CollectionSession{}, err
	}
	if session.FactoryEntry != nil {
		return models.CollectionSession{}, ErrFactoryEntryExists
	}

	rate, err := s.rates.Get(ctx)
	if err != nil {
		return models.CollectionSession{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = defaultFactory
	}
	session.FactoryEntry = &models.CollectionRecord{
		ID:          s.newID(),
		Name:        name,
		FatPercent:  input.FatPercent,
		MilkQty:     input.MilkQty,
		AmountToPay: entry.ComputeAmount(input.FatPercent, rate.SellingFatRate, input.MilkQty),
		Timestamp:   session.Timestamp,
		IsNight:     session.IsNight,
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return models.CollectionSession{}, fmt.Errorf("store factory entry: %w", err)
	}
	s.logger.Info("factory entry set", zap.String("session_id", session.ID), zap.Float64("milk_qty", input.MilkQty))
	return session, nil
}

// ClearFactoryEntry removes the factory entry so it can be entered again.
func (s *Service) ClearFactoryEntry(ctx context.Context, sessionID string) (models.CollectionSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.CollectionSession{}, err
	}
	if session.FactoryEntry == nil {
		return session, nil
	}
	session.FactoryEntry = nil
	if err := s.sessions.Update(ctx, session); err != nil {
		return models.CollectionSession{}, fmt.Errorf("clear factory entry: %w", err)
	}
	return session, nil
}

// Report computes the production report of a session.
func (s *Service) Report(ctx context.Context, sessionID string) (models.ProductionReport, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.ProductionReport{}, err
	}
	return s.ReportFor(ctx, session)
}

// ReportFor computes the production report of an already loaded session.
func (s *Service) ReportFor(ctx context.Context, session models.CollectionSession) (models.ProductionReport, error) {
	if session.FactoryEntry == nil {
		return models.ProductionReport{}, ErrReportPending
	}
	rate, err := s.rates.RequireProduction(ctx)
	if err != nil {
		return models.ProductionReport{}, err
	}
	report, _ := Reconcile(session, rate)
	return report, nil
}

// FormatSessionSummary renders a plain text summary of a session.
func (s *Service) FormatSessionSummary(session models.CollectionSession) string {
	var b strings.Builder
	shift := "Morning"
	if session.IsNight {
		shift = "Night"
	}
	fmt.Fprintf(&b, "%s shift, %s\n", shift, session.Timestamp.In(s.loc).Format(summaryTimeLayout))
	for i, record := range session.Records {
		fmt.Fprintf(&b, "%d. %s: %.2f L, fat %.2f, Rs %.2f\n", i+1, displayName(record.Name), record.MilkQty, record.FatPercent, record.AmountToPay)
	}
	totals := Totals(session.Records)
	fmt.Fprintf(&b, "Total: %d entries, %.2f L, avg fat %.2f, Rs %.2f", totals.Count, totals.TotalMilk, totals.AvgFat, totals.TotalAmount)
	if f := session.FactoryEntry; f != nil {
		fmt.Fprintf(&b, "\nFactory (%s): %.2f L, fat %.2f", f.Name, f.MilkQty, f.FatPercent)
	}
	return b.String()
}

// FormatReport renders a production report as plain text.
func FormatReport(report models.ProductionReport) string {
	return fmt.Sprintf("Collected %.2f L, sent %.2f L, local %.2f L\nPaid Rs %.2f, factory Rs %.2f, local Rs %.2f\nEarning Rs %.2f",
		report.TotalMilkCollected, report.TotalMilkSent, report.LocalSoldMilk,
		report.TotalPaidToMembers, report.FactoryIncome, report.LocalIncome,
		report.FinalEarning)
}

// DailySummary summarizes every session saved on the calendar day of day in
// the service location.
func (s *Service) DailySummary(ctx context.Context, day time.Time) (string, error) {
	all, err := s.sessions.All(ctx)
	if err != nil {
		return "", fmt.Errorf("load sessions: %w", err)
	}

	y, m, d := day.In(s.loc).Date()
	var parts []string
	for i := len(all) - 1; i >= 0; i-- {
		session := all[i]
		sy, sm, sd := session.Timestamp.In(s.loc).Date()
		if sy != y || sm != m || sd != d {
			continue
		}
		part := s.FormatSessionSummary(session)
		if report, err := s.ReportFor(ctx, session); err == nil {
			part += "\n" + FormatReport(report)
		}
		parts = append(parts, part)
	}

	label := time.Date(y, m, d, 0, 0, 0, 0, s.loc).Format(searchDateLayout)
	if len(parts) == 0 {
		return fmt.Sprintf("Collection summary %s: no sessions saved.", label), nil
	}
	return fmt.Sprintf("Collection summary %s\n\n%s", label, strings.Join(parts, "\n\n")), nil
}

// ExportSession appends one sheet row per record of the session and returns
// the number of rows written.
func (s *Service) ExportSession(ctx context.Context, sessionID string) (int, error) {
	if s.sheet == nil {
		return 0, ErrExportDisabled
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	existing, err := s.sheet.ReadRange(ctx, sessionIDRange)
	if err != nil {
		return 0, fmt.Errorf("load exported sessions: %w", err)
	}
	for _, row := range existing {
		if len(row) > 0 && fmt.Sprint(row[0]) == session.ID {
			return 0, ErrAlreadyExported
		}
	}

	date := session.Timestamp.In(s.loc).Format(sheetDateLayout)
	rows := make([][]interface{}, 0, len(session.Records))
	for _, record := range session.Records {
		rows = append(rows, []interface{}{
			session.ID, date, session.Shift(), record.Name,
			record.FatPercent, record.MilkQty, record.AmountToPay, record.ID,
		})
	}
	if err := s.sheet.AppendRows(ctx, sessionsDataRange, rows); err != nil {
		return 0, fmt.Errorf("export session: %w", err)
	}
	s.logger.Info("session exported", zap.String("session_id", session.ID), zap.Int("rows", len(rows)))
	return len(rows), nil
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(no name)"
	}
	return name
}
