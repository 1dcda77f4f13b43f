package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mamadbah2/ranch/internal/config"
	"github.com/mamadbah2/ranch/internal/domain/models"
	"github.com/mamadbah2/ranch/internal/service/commands"
	client "github.com/mamadbah2/ranch/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// MessagingService describes the operations the HTTP layer and the scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	SendReport(ctx context.Context, to, text string) error
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

// HandleWebhook processes inbound webhook payloads.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error
	for _, msg := range payload.Messages() {
		if err := s.handleInboundMessage(ctx, msg); err != nil {
			s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := msg.CommandText()
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("message_id", msg.ID), zap.String("type", msg.Type))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		reply = replyForError(err)
		if reply == "" {
			s.logger.Error("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
			reply = "Sorry, something went wrong. Please try again later."
		}
	}

	return s.SendReport(ctx, msg.From, reply)
}

// replyForError turns expected command failures into a user-facing message.
// It returns "" for unexpected errors.
func replyForError(err error) string {
	switch {
	case errors.Is(err, commands.ErrUnsupportedCommand):
		return "Unknown command.\n" + commands.HelpText
	case errors.Is(err, commands.ErrInvalidArguments):
		return fmt.Sprintf("Could not read that: %v.\n%s", err, commands.HelpText)
	case errors.Is(err, models.ErrNotFound):
		return fmt.Sprintf("No animal found: %v.", err)
	case errors.Is(err, models.ErrInvalidRecord):
		return fmt.Sprintf("Not saved: %v.", err)
	default:
		return ""
	}
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

// SendReport sends text to a recipient, split into several messages when it
// exceeds the API body limit.
func (s *MetaWhatsAppService) SendReport(ctx context.Context, to, text string) error {
	for _, part := range splitMessage(text, client.MaxBodyLength) {
		ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
		_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{To: to, Body: part})
		cancel()
		if err != nil {
			return err
		}
	}
	return nil
}

// splitMessage cuts text into chunks of at most limit bytes, on line
// boundaries where possible and never inside a UTF-8 sequence.
func splitMessage(text string, limit int) []string {
	var parts []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				_, cut = utf8.DecodeRuneInString(text)
			}
		}
		parts = append(parts, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	if text != "" || len(parts) == 0 {
		parts = append(parts, text)
	}
	return parts
}
