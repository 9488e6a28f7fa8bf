package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository"
	"github.com/mamadbah2/dairy/internal/service/entry"
	"github.com/mamadbah2/dairy/internal/service/rates"
	"github.com/mamadbah2/dairy/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const shortIDLength = 8

const helpText = `Commands:
ramesh 12, 5.6 (name milk, fat) adds or updates a row
/rows shows the current rows
/save saves the rows as a session
/discard drops the rows
/rates <buying> <selling> <resale> sets all rates
/report [session id] shows the production report
/summary shows today's sessions`

// EntryEngine is the part of the row engine driven by commands.
type EntryEngine interface {
	ProcessSpokenInput(ctx context.Context, raw string) entry.SpokenResult
	Snapshot(ctx context.Context) models.RowSnapshot
	Save(ctx context.Context) (entry.SaveResult, error)
	Discard(ctx context.Context) error
}

// RateSetter replaces all rates at once.
type RateSetter interface {
	Set(ctx context.Context, rate models.Rate) (models.Rate, error)
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	FindSession(ctx context.Context, prefix string) (models.CollectionSession, error)
	ReportFor(ctx context.Context, session models.CollectionSession) (models.ProductionReport, error)
	FormatSessionSummary(session models.CollectionSession) string
	DailySummary(ctx context.Context, day time.Time) (string, error)
}

// Translator rewrites free text into a canonical entry line.
type Translator interface {
	TranslateToEntry(ctx context.Context, input string) (string, error)
}

// Dispatcher executes parsed commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	engine     EntryEngine
	rates      RateSetter
	reporting  ReportingAdapter
	translator Translator
	senders    *SenderState
	logger     *zap.Logger
	now        func() time.Time
}

// NewService constructs a command dispatcher. translator may be nil.
func NewService(engine EntryEngine, rateSetter RateSetter, reportingAdapter ReportingAdapter, translator Translator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:     engine,
		rates:      rateSetter,
		reporting:  reportingAdapter,
		translator: translator,
		senders:    NewSenderState(),
		logger:     logger,
		now:        time.Now,
	}
}

// HandleCommand runs the command and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Any("args", cmd.Args))

	switch cmd.Type {
	case models.CommandEntry:
		return s.handleEntry(ctx, cmd)
	case models.CommandRows:
		return formatRows(s.engine.Snapshot(ctx)), nil
	case models.CommandSave:
		return s.handleSave(ctx, sender)
	case models.CommandDiscard:
		if err := s.engine.Discard(ctx); err != nil {
			return "", err
		}
		return "Rows discarded.", nil
	case models.CommandRates:
		return s.handleRates(ctx, cmd)
	case models.CommandReport:
		return s.handleReport(ctx, cmd, sender)
	case models.CommandSummary:
		return s.reporting.DailySummary(ctx, s.now())
	case models.CommandHelp:
		return helpText, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) handleEntry(ctx context.Context, cmd models.Command) (string, error) {
	line := strings.TrimSpace(cmd.Body)
	if line == "" {
		return "", ErrInvalidArguments
	}

	res := s.engine.ProcessSpokenInput(ctx, line)
	if !res.Applied && s.translator != nil {
		translated, err := s.translator.TranslateToEntry(ctx, line)
		if err != nil {
			s.logger.Debug("entry translation failed", zap.String("text", line), zap.Error(err))
		} else {
			res = s.engine.ProcessSpokenInput(ctx, translated)
		}
	}
	if !res.Applied {
		return "", ErrInvalidArguments
	}

	verb := "updated"
	if res.Created {
		verb = "added"
	}
	return fmt.Sprintf("Row %d %s: %s", res.Row.SerialNo, verb, formatRow(res.Row)), nil
}

func (s *Service) handleSave(ctx context.Context, sender string) (string, error) {
	result, err := s.engine.Save(ctx)
	if err != nil {
		return "", err
	}
	if result.Session == nil {
		return "Nothing to save.", nil
	}

	message := fmt.Sprintf("Saved %d entries", result.Saved)
	if result.Failed > 0 {
		message += fmt.Sprintf(", %d failed", result.Failed)
	}
	if !result.SessionStored {
		return message + ". The session could not be stored.", nil
	}

	s.senders.Remember(sender, result.Session.ID)
	message += fmt.Sprintf(". Session %s.\n%s", shortID(result.Session.ID), s.reporting.FormatSessionSummary(*result.Session))
	return message, nil
}

func (s *Service) handleRates(ctx context.Context, cmd models.Command) (string, error) {
	if len(cmd.Args) != 3 {
		return "", ErrInvalidArguments
	}
	values := make([]float64, 3)
	for i, arg := range cmd.Args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return "", ErrInvalidArguments
		}
		values[i] = v
	}

	rate, err := s.rates.Set(ctx, models.Rate{BuyingFatRate: values[0], SellingFatRate: values[1], MilkResaleRate: values[2]})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Rates set: buying %.2f, selling %.2f, resale %.2f per litre.", rate.BuyingFatRate, rate.SellingFatRate, rate.MilkResaleRate), nil
}

func (s *Service) handleReport(ctx context.Context, cmd models.Command, sender string) (string, error) {
	var prefix string
	if len(cmd.Args) > 0 {
		prefix = cmd.Args[0]
	} else if id, ok := s.senders.LastSession(sender); ok {
		prefix = id
	} else {
		return "", ErrInvalidArguments
	}

	session, err := s.reporting.FindSession(ctx, prefix)
	if err != nil {
		return "", err
	}
	report, err := s.reporting.ReportFor(ctx, session)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\n%s", s.reporting.FormatSessionSummary(session), reporting.FormatReport(report)), nil
}

// ReplyForError turns a command error into a message for the operator.
func ReplyForError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArguments):
		return "Could not read that. Send: name milk, fat (for example ramesh 12, 5.6) or /help."
	case errors.Is(err, ErrUnsupportedCommand):
		return "Unknown command.\n" + helpText
	case errors.Is(err, rates.ErrRateNotConfigured):
		return "Rates are not set. Send /rates <buying> <selling> <resale>."
	case errors.Is(err, rates.ErrInvalidRate):
		return "Rates must not be negative."
	case errors.Is(err, reporting.ErrReportPending):
		return "Report pending: the factory entry of this session is missing."
	case errors.Is(err, reporting.ErrAmbiguousSession):
		return "Several sessions match that id. Send more characters."
	case errors.Is(err, repository.ErrNotFound):
		return "Session not found."
	default:
		return "Something went wrong, please try again."
	}
}

func formatRows(snap models.RowSnapshot) string {
	if len(snap.Rows) == 0 {
		return "No rows yet."
	}
	var b strings.Builder
	for _, row := range snap.Rows {
		fmt.Fprintf(&b, "%d. %s\n", row.SerialNo, formatRow(row))
	}
	fmt.Fprintf(&b, "Total %.2f L, avg fat %.2f, Rs %.2f", snap.Totals.TotalMilk, snap.Totals.AvgFat, snap.Totals.TotalAmount)
	if !snap.RateConfigured {
		b.WriteString("\nRates are not set, amounts are zero.")
	}
	return b.String()
}

func formatRow(row models.RowState) string {
	name := row.Name
	if name == "" {
		name = "-"
	}
	return fmt.Sprintf("%s milk %s fat %s Rs %.2f", name, orDash(row.MilkQty), orDash(row.FatRate), row.Amount)
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}
