package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gembotdev/gembot/internal/services"
	"github.com/gembotdev/gembot/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSHandler runs a chat conversation over one websocket: each incoming
// message is one conversational turn, the reply is written back on the
// same socket.
type WSHandler struct {
	chat     services.ChatService
	upgrader websocket.Upgrader
}

func NewWSHandler(chat services.ChatService) *WSHandler {
	return &WSHandler{
		chat: chat,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type    string `json:"type"` // "message" | "clear"
	Message string `json:"message"`
}

type wsServerMsg struct {
	Type    string `json:"type"` // "reply" | "cleared" | "error"
	Reply   string `json:"reply,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteJSON(v)
}

// wsError is writeError's websocket counterpart: only the AppError code
// and its user-safe message cross the wire, never the wrapped cause.
func wsError(err error) wsServerMsg {
	var ae *utils.AppError
	if errors.As(err, &ae) {
		return wsServerMsg{Type: "error", Code: string(ae.Code), Message: ae.Message}
	}
	return wsServerMsg{Type: "error", Code: string(utils.CodeInternal), Message: "internal error"}
}

func (h *WSHandler) ChatWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx := c.Request.Context()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		return nil
	})

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.writeJSON(wsServerMsg{Type: "error", Code: string(utils.CodeInvalidArgument), Message: "invalid json"})
			continue
		}

		switch msg.Type {
		case "message":
			reply, perr := h.chat.ProcessMessage(ctx, userID, msg.Message)
			if perr != nil {
				// validation/config errors; upstream failures already
				// come back as a displayable reply string
				_ = wc.writeJSON(wsError(perr))
				continue
			}
			_ = wc.writeJSON(wsServerMsg{Type: "reply", Reply: reply})

		case "clear":
			if cerr := h.chat.ClearHistory(ctx, userID); cerr != nil {
				_ = wc.writeJSON(wsError(cerr))
				continue
			}
			_ = wc.writeJSON(wsServerMsg{Type: "cleared"})

		default:
			_ = wc.writeJSON(wsServerMsg{Type: "error", Code: string(utils.CodeInvalidArgument), Message: "unknown message type"})
		}
	}
}
