package handlers

import (
	"net/http"

	"github.com/gembotdev/gembot/internal/services"
	"github.com/gembotdev/gembot/internal/utils"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	svc services.ChatService
}

func NewChatHandler(svc services.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type messageRequest struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Reply string `json:"reply"`
}

func (h *ChatHandler) Message(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ChatHandler.Message", "invalid json body", err))
		return
	}

	reply, err := h.svc.ProcessMessage(c.Request.Context(), userID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Reply: reply})
}

// ClearHistory drops the caller's cached conversation.
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.ClearHistory(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": userID})
}

// ClearAllHistory drops every user's cached conversation. Admin only.
func (h *ChatHandler) ClearAllHistory(c *gin.Context) {
	if err := h.svc.ClearHistory(c.Request.Context(), ""); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": "all"})
}

func (h *ChatHandler) Export(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "json")
	upload := c.Query("upload") == "true"

	res, err := h.svc.Export(c.Request.Context(), userID, format, upload)
	if err != nil {
		writeError(c, err)
		return
	}

	if upload {
		c.JSON(http.StatusOK, res)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	c.Data(http.StatusOK, res.ContentType, res.Data)
}
