package models

import "strings"

// CommandType enumerates supported operator command categories.
type CommandType string

const (
	CommandEntry   CommandType = "entry"
	CommandRows    CommandType = "rows"
	CommandSave    CommandType = "save"
	CommandDiscard CommandType = "discard"
	CommandRates   CommandType = "rates"
	CommandReport  CommandType = "report"
	CommandSummary CommandType = "summary"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed operator instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
	// Body is the text after the command word with its punctuation intact.
	Body string
}

// ParseCommand derives a Command instance from free-form text messages.
// Text without a leading slash is a spoken style entry line.
func ParseCommand(message string) Command {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return Command{Type: CommandUnknown, Raw: message}
	}

	if !strings.HasPrefix(trimmed, "/") {
		return Command{
			Type: CommandEntry,
			Raw:  message,
			Args: strings.Fields(strings.ToLower(trimmed)),
			Body: trimmed,
		}
	}

	tokens := strings.Fields(strings.ToLower(trimmed))
	cmd := Command{Raw: message}

	head := strings.TrimPrefix(tokens[0], "/")
	switch CommandType(head) {
	case CommandEntry, CommandRows, CommandSave, CommandDiscard,
		CommandRates, CommandReport, CommandSummary, CommandHelp:
		cmd.Type = CommandType(head)
	default:
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	if idx := strings.IndexFunc(trimmed, isSpace); idx >= 0 {
		cmd.Body = strings.TrimSpace(trimmed[idx:])
	}

	return cmd
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
