package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/config"
	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/service/commands"
	client "github.com/mamadbah2/dairy/pkg/clients/whatsapp"
)

const (
	sendTimeout    = 10 * time.Second
	voiceNoteReply = "Voice notes are not supported yet. Type the entry instead, for example: ramesh 12, 5.6"
)

// ErrNoRecipient is returned when neither a recipient nor an operator is known.
var ErrNoRecipient = errors.New("no recipient and no operator configured")

// entryButtons follow every accepted entry line.
var entryButtons = []client.Button{
	{ID: "/rows", Title: "Rows"},
	{ID: "/save", Title: "Save"},
	{ID: "/discard", Title: "Discard"},
}

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	SendToOperator(ctx context.Context, to, message string) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads. Delivery statuses are
// ignored.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	if msg.Audio != nil {
		return s.sendText(ctx, msg.From, voiceNoteReply)
	}

	text := extractMessageText(msg)
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type), zap.String("message_id", msg.ID))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Any("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		s.logger.Warn("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		return s.sendText(ctx, msg.From, commands.ReplyForError(err))
	}

	if cmd.Type == models.CommandEntry {
		ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		_, err := s.client.SendButtons(ctxWithTimeout, client.SendButtonsRequest{To: msg.From, Body: reply, Buttons: entryButtons})
		return err
	}
	return s.sendText(ctx, msg.From, reply)
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         req.To,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	return err
}

// SendToOperator sends message to the given number, or to the configured
// operator when to is empty.
func (s *MetaWhatsAppService) SendToOperator(ctx context.Context, to, message string) error {
	if to == "" {
		to = s.cfg.OperatorID
	}
	if to == "" {
		return ErrNoRecipient
	}
	return s.sendText(ctx, to, message)
}

func (s *MetaWhatsAppService) sendText(ctx context.Context, to, body string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{To: to, Body: body})
	return err
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}

	if msg.Interactive != nil && msg.Interactive.ButtonReply != nil {
		return msg.Interactive.ButtonReply.ID
	}

	return ""
}
