package handlers

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gembotdev/gembot/internal/services"
	"github.com/gembotdev/gembot/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	reply      string
	processErr error
	clearErr   error
}

func (s *stubChatService) ProcessMessage(ctx context.Context, userID, message string) (string, error) {
	if s.processErr != nil {
		return "", s.processErr
	}
	return s.reply, nil
}

func (s *stubChatService) ClearHistory(ctx context.Context, userID string) error {
	return s.clearErr
}

func (s *stubChatService) Export(ctx context.Context, userID, format string, upload bool) (*services.ExportResult, error) {
	return nil, errors.New("not implemented")
}

func dialChatWS(t *testing.T, chat services.ChatService) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", "user-1") })
	r.GET("/ws/chat", NewWSHandler(chat).ChatWS)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestChatWSReply(t *testing.T) {
	conn := dialChatWS(t, &stubChatService{reply: "hello there"})

	require.NoError(t, conn.WriteJSON(wsClientMsg{Type: "message", Message: "hi"}))

	var got wsServerMsg
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "reply", got.Type)
	assert.Equal(t, "hello there", got.Reply)
}

func TestChatWSErrorCarriesCodeAndSafeMessage(t *testing.T) {
	perr := utils.E(utils.CodeConfig, "ChatService.systemPrompt",
		"system prompt is not configured", errors.New("mongo: no documents in result"))
	conn := dialChatWS(t, &stubChatService{processErr: perr})

	require.NoError(t, conn.WriteJSON(wsClientMsg{Type: "message", Message: "hi"}))

	var got wsServerMsg
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "error", got.Type)
	assert.Equal(t, string(utils.CodeConfig), got.Code)
	assert.Equal(t, "system prompt is not configured", got.Message)
	assert.NotContains(t, got.Message, "ChatService")
	assert.NotContains(t, got.Message, "mongo")
}

func TestChatWSClearErrorKeepsRealCode(t *testing.T) {
	cerr := utils.E(utils.CodeUnavailable, "HistoryService.Clear",
		"failed to clear history", errors.New("redis: connection refused"))
	conn := dialChatWS(t, &stubChatService{clearErr: cerr})

	require.NoError(t, conn.WriteJSON(wsClientMsg{Type: "clear"}))

	var got wsServerMsg
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "error", got.Type)
	assert.Equal(t, string(utils.CodeUnavailable), got.Code)
	assert.Equal(t, "failed to clear history", got.Message)
	assert.NotContains(t, got.Message, "redis")
}

func TestChatWSBareErrorFallsBackToInternal(t *testing.T) {
	conn := dialChatWS(t, &stubChatService{processErr: errors.New("pq: deadlock detected")})

	require.NoError(t, conn.WriteJSON(wsClientMsg{Type: "message", Message: "hi"}))

	var got wsServerMsg
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, string(utils.CodeInternal), got.Code)
	assert.Equal(t, "internal error", got.Message)
}
