package services

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/gembotdev/gembot/internal/models"
	"github.com/gembotdev/gembot/internal/providers/llm"
	mongorepo "github.com/gembotdev/gembot/internal/repositories/mongo"
	pgrepo "github.com/gembotdev/gembot/internal/repositories/postgres"
	"github.com/gembotdev/gembot/internal/storage"
	"github.com/gembotdev/gembot/internal/tokens"
	"github.com/gembotdev/gembot/internal/utils"
)

// Fixed user-facing replies for upstream failures. Raw error detail
// goes to the durable log, never to the end user.
const (
	MsgRateLimited = "The assistant is handling too many requests right now. Please try again in a moment."
	MsgUnavailable = "The assistant is temporarily unavailable. Please try again shortly."
	MsgNetwork     = "Could not reach the assistant. Please check the connection and try again."
	MsgTimeout     = "The assistant took too long to answer. Please try again."
	MsgAPI         = "The assistant could not process that message. Please try rephrasing it."
	MsgGeneric     = "Something went wrong. Please try again."
)

type ChatService interface {
	// ProcessMessage runs one conversational turn and returns the text
	// to show the user. Upstream failures come back as a displayable
	// string with a nil error; only validation and configuration
	// problems surface as errors.
	ProcessMessage(ctx context.Context, userID, message string) (string, error)
	ClearHistory(ctx context.Context, userID string) error
	Export(ctx context.Context, userID, format string, upload bool) (*ExportResult, error)
}

type chatService struct {
	history  HistoryService
	logs     pgrepo.ChatLogRepo
	settings mongorepo.SettingRepository
	provider llm.Provider
	uploader storage.Uploader // nil disables export upload
	maxTurns int
	log      *logrus.Logger
	now      func() time.Time
}

func NewChatService(
	history HistoryService,
	logs pgrepo.ChatLogRepo,
	settings mongorepo.SettingRepository,
	provider llm.Provider,
	uploader storage.Uploader,
	maxTurns int,
	log *logrus.Logger,
) ChatService {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &chatService{
		history:  history,
		logs:     logs,
		settings: settings,
		provider: provider,
		uploader: uploader,
		maxTurns: maxTurns,
		log:      log,
		now:      time.Now,
	}
}

func (s *chatService) ProcessMessage(ctx context.Context, userID, message string) (string, error) {
	const op = "ChatService.ProcessMessage"

	if userID == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if strings.TrimSpace(message) == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "message is required", nil)
	}

	prompt, err := s.systemPrompt(ctx)
	if err != nil {
		return "", err
	}

	store := s.history.Load(ctx, userID)
	conv := append(store[userID], models.Turn{Role: models.RoleUser, Text: message})

	s.appendLog(ctx, userID, models.RoleUser, message, nil)

	conv = conv.Tail(s.maxTurns)

	start := s.now()
	reply, err := s.provider.Complete(ctx, prompt, conv)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("model call failed")
		s.appendLog(ctx, userID, models.RoleSystem, err.Error(), map[string]any{
			"status_code": statusCodeOf(err),
			"latency_ms":  s.now().Sub(start).Milliseconds(),
		})
		return userFacingMessage(err), nil
	}

	conv = append(conv, models.Turn{Role: models.RoleModel, Text: reply})
	s.appendLog(ctx, userID, models.RoleModel, reply, map[string]any{
		"latency_ms": s.now().Sub(start).Milliseconds(),
	})

	store[userID] = conv.Tail(s.maxTurns)
	if err := s.history.Save(ctx, store); err != nil {
		s.log.WithError(err).Warn("failed to persist history")
	}
	return reply, nil
}

func (s *chatService) ClearHistory(ctx context.Context, userID string) error {
	const op = "ChatService.ClearHistory"

	if err := s.history.Clear(ctx, userID); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to clear history", err)
	}
	return nil
}

func (s *chatService) systemPrompt(ctx context.Context) (string, error) {
	const op = "ChatService.systemPrompt"

	setting, err := s.settings.Get(ctx, models.SettingSystemPrompt)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", utils.E(utils.CodeConfig, op, "system prompt is not configured", err)
		}
		return "", utils.E(utils.CodeInternal, op, "failed to read system prompt", err)
	}
	if strings.TrimSpace(setting.Value) == "" {
		return "", utils.E(utils.CodeConfig, op, "system prompt is empty", nil)
	}
	return setting.Value, nil
}

// appendLog writes one durable log row. Log writes never fail the chat
// turn; a lost row costs audit detail, not the reply.
func (s *chatService) appendLog(ctx context.Context, userID, role, text string, meta map[string]any) {
	row := &models.ChatLog{
		ID:         uuid.NewString(),
		UserID:     userID,
		Role:       role,
		Text:       text,
		TokenCount: tokens.Estimate(text),
		Timestamp:  s.now().UTC(),
	}
	if meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			row.Metadata = datatypes.JSON(b)
		}
	}
	if err := s.logs.Insert(ctx, row); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("chat log insert failed")
	}
}

func statusCodeOf(err error) int {
	var re *llm.RetriesExhaustedError
	if errors.As(err, &re) {
		err = re.Last
	}
	var ae *llm.APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}

// userFacingMessage maps a model-call failure onto one of the fixed
// displayable strings.
func userFacingMessage(err error) string {
	var re *llm.RetriesExhaustedError
	if errors.As(err, &re) {
		err = re.Last
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return MsgTimeout
	}
	if errors.Is(err, llm.ErrNoResponse) {
		return MsgAPI
	}

	var ae *llm.APIError
	if errors.As(err, &ae) {
		switch {
		case ae.StatusCode == http.StatusTooManyRequests:
			return MsgRateLimited
		case ae.StatusCode == http.StatusServiceUnavailable:
			return MsgUnavailable
		case ae.StatusCode != 0:
			return MsgAPI
		}
		var ne net.Error
		if errors.As(ae.Err, &ne) && ne.Timeout() {
			return MsgTimeout
		}
		if errors.Is(ae.Err, context.DeadlineExceeded) {
			return MsgTimeout
		}
		return MsgNetwork
	}
	return MsgGeneric
}
