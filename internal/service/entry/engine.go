// Package entry owns the in-progress entry grid of a shift: spoken input
// parsing, fuzzy name resolution, amount computation and saving.
package entry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository"
)

// ErrRowIndexOutOfRange is returned for edits of a row that does not exist.
var ErrRowIndexOutOfRange = errors.New("row index out of range")

// RateReader provides the freshest rate.
type RateReader interface {
	Get(ctx context.Context) (models.Rate, error)
	RequireBuying(ctx context.Context) (models.Rate, error)
}

// SpokenResult reports what ProcessSpokenInput did.
type SpokenResult struct {
	Applied bool            `json:"applied"`
	Created bool            `json:"created"`
	Index   int             `json:"index"`
	Row     models.RowState `json:"row"`
}

// Engine is the row grid of the current shift. It is safe for concurrent use;
// every mutation recomputes the touched row and stores the draft.
type Engine struct {
	mu              sync.Mutex
	rows            []models.RowState
	initFromMembers bool

	rates   RateReader
	members repository.MemberStore
	drafts  repository.DraftStore
	saver   *Saver
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

// NewEngine wires an engine. loc decides the shift of saved sessions.
func NewEngine(rateReader RateReader, members repository.MemberStore, drafts repository.DraftStore, saver *Saver, loc *time.Location, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		rates:   rateReader,
		members: members,
		drafts:  drafts,
		saver:   saver,
		loc:     loc,
		now:     time.Now,
		logger:  logger,
	}
}

// Restore loads the stored draft. Without one the grid is initialized from
// all members.
func (e *Engine) Restore(ctx context.Context) error {
	rows, err := e.drafts.Load(ctx)
	if err != nil {
		e.logger.Warn("failed to load draft, starting from members", zap.Error(err))
		rows = nil
	}
	if len(rows) > 0 {
		e.mu.Lock()
		e.rows = rows
		e.mu.Unlock()
		e.logger.Info("draft restored", zap.Int("rows", len(rows)))
		return nil
	}
	_, err = e.InitializeFromStore(ctx)
	return err
}

// InitializeFromStore replaces the grid with one row per stored member.
func (e *Engine) InitializeFromStore(ctx context.Context) (models.RowSnapshot, error) {
	members, err := e.members.All(ctx)
	if err != nil {
		return models.RowSnapshot{}, fmt.Errorf("load members: %w", err)
	}
	return e.InitializeFromMembers(ctx, members), nil
}

// InitializeFromMembers replaces the grid with one blank row per member, in
// the given order.
func (e *Engine) InitializeFromMembers(ctx context.Context, members []models.Member) models.RowSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	rows := make([]models.RowState, len(members))
	for i, m := range members {
		rows[i] = models.RowState{SerialNo: i + 1, Name: m.Name}
	}
	e.rows = rows
	e.initFromMembers = true
	e.persistLocked(ctx)
	return e.snapshotLocked(ctx)
}

// AddEmptyRow appends a blank row.
func (e *Engine) AddEmptyRow(ctx context.Context) models.RowState {
	e.mu.Lock()
	defer e.mu.Unlock()

	row := models.RowState{SerialNo: len(e.rows) + 1}
	e.rows = append(e.rows, row)
	e.persistLocked(ctx)
	return row
}

// UpdateRow applies mutate to the row at index and recomputes its amount with
// the current buying fat rate.
func (e *Engine) UpdateRow(ctx context.Context, index int, mutate func(models.RowState) models.RowState) (models.RowState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.rows) {
		return models.RowState{}, ErrRowIndexOutOfRange
	}
	row := e.recompute(ctx, mutate(e.rows[index]))
	e.rows[index] = row
	e.persistLocked(ctx)
	return row, nil
}

// ProcessSpokenInput applies a line such as "ramesh 12, 5.6" to the grid. The
// named row is overwritten when the name resolves, otherwise a new row is
// appended. A line without a name is ignored.
func (e *Engine) ProcessSpokenInput(ctx context.Context, raw string) SpokenResult {
	parsed := ParseSpoken(raw)
	if parsed.Name == "" {
		return SpokenResult{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if index, ok := Resolve(parsed.Name, rowCandidates(e.rows)); ok {
		row := e.rows[index]
		if parsed.Milk != "" {
			row.MilkQty = parsed.Milk
		}
		if parsed.Fat != "" {
			row.FatRate = parsed.Fat
		}
		row = e.recompute(ctx, row)
		e.rows[index] = row
		e.persistLocked(ctx)
		return SpokenResult{Applied: true, Index: index, Row: row}
	}

	row := e.recompute(ctx, models.RowState{
		SerialNo: len(e.rows) + 1,
		Name:     parsed.Name,
		FatRate:  parsed.Fat,
		MilkQty:  parsed.Milk,
	})
	e.rows = append(e.rows, row)
	e.persistLocked(ctx)
	return SpokenResult{Applied: true, Created: true, Index: len(e.rows) - 1, Row: row}
}

// Snapshot returns a copy of the grid with its totals.
func (e *Engine) Snapshot(ctx context.Context) models.RowSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(ctx)
}

// Totals aggregates the current grid.
func (e *Engine) Totals() models.RowTotals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return computeTotals(e.rows)
}

// Discard drops all rows and the stored draft.
func (e *Engine) Discard(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rows = nil
	e.initFromMembers = false
	if err := e.drafts.Clear(ctx); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// Save persists the grid with the freshest rate. The shift is night from noon
// onwards in the engine location. The grid and the draft are cleared once the
// batch has been processed.
func (e *Engine) Save(ctx context.Context) (SaveResult, error) {
	rate, err := e.rates.RequireBuying(ctx)
	if err != nil {
		return SaveResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	at := e.now().In(e.loc)
	rows := append([]models.RowState(nil), e.rows...)
	result := e.saver.SaveAll(ctx, rows, rate, IsNightShift(at), at)

	e.rows = nil
	e.initFromMembers = false
	if err := e.drafts.Clear(ctx); err != nil {
		e.logger.Error("failed to clear draft", zap.Error(err))
	}
	return result, nil
}

// IsNightShift reports whether t falls in the night shift (noon or later).
func IsNightShift(t time.Time) bool {
	return t.Hour() >= 12
}

func (e *Engine) recompute(ctx context.Context, row models.RowState) models.RowState {
	buying := 0.0
	if rate, err := e.rates.Get(ctx); err != nil {
		e.logger.Warn("failed to read rate, amount set to zero", zap.Error(err))
	} else {
		buying = rate.BuyingFatRate
	}
	row.Amount = ComputeAmount(ParseDecimal(row.FatRate), buying, ParseDecimal(row.MilkQty))
	return row
}

func (e *Engine) persistLocked(ctx context.Context) {
	if err := e.drafts.Save(ctx, e.rows); err != nil {
		e.logger.Error("failed to store draft", zap.Int("rows", len(e.rows)), zap.Error(err))
	}
}

func (e *Engine) snapshotLocked(ctx context.Context) models.RowSnapshot {
	configured := false
	if rate, err := e.rates.Get(ctx); err == nil {
		configured = rate.BuyingConfigured()
	}
	return models.RowSnapshot{
		Rows:            append([]models.RowState{}, e.rows...),
		Totals:          computeTotals(e.rows),
		InitFromMembers: e.initFromMembers,
		RateConfigured:  configured,
	}
}

func computeTotals(rows []models.RowState) models.RowTotals {
	var totals models.RowTotals
	var fatSum float64
	var fatCount int
	for _, row := range rows {
		totals.TotalMilk += ParseDecimal(row.MilkQty)
		totals.TotalAmount += row.Amount
		if fat, ok := parseOptional(row.FatRate); ok {
			fatSum += fat
			fatCount++
		}
	}
	if fatCount > 0 {
		totals.AvgFat = fatSum / float64(fatCount)
	}
	return totals
}

// SpokenEntry is the structured form of a spoken entry line.
type SpokenEntry struct {
	Name string
	Milk string
	Fat  string
}

var keywordTokens = map[string]bool{"milk": true, "fat": true, "name": true}

// ParseSpoken normalizes raw and splits it at the first comma. Before the
// comma the first number is the milk quantity and the other words form the
// name. The text after the comma, up to the next comma, is the fat value.
func ParseSpoken(raw string) SpokenEntry {
	head, tail, hasFat := strings.Cut(Normalize(raw), ",")

	var entry SpokenEntry
	var nameParts []string
	for _, token := range mergeDecimals(strings.Fields(head)) {
		if keywordTokens[token] {
			continue
		}
		if _, ok := parseOptional(token); ok {
			if entry.Milk == "" {
				entry.Milk = token
			}
			continue
		}
		nameParts = append(nameParts, token)
	}
	entry.Name = strings.Join(nameParts, " ")

	if hasFat {
		segment, _, _ := strings.Cut(tail, ",")
		var fat strings.Builder
		for _, token := range strings.Fields(segment) {
			if !keywordTokens[token] {
				fat.WriteString(token)
			}
		}
		entry.Fat = fat.String()
	}
	return entry
}

// mergeDecimals joins "12 . 5" into "12.5".
func mergeDecimals(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if i+2 < len(tokens) && tokens[i+1] == "." && isNumber(tokens[i]) && isNumber(tokens[i+2]) {
			out = append(out, tokens[i]+"."+tokens[i+2])
			i += 2
			continue
		}
		out = append(out, tokens[i])
	}
	return out
}

func isNumber(token string) bool {
	_, ok := parseOptional(token)
	return ok
}
