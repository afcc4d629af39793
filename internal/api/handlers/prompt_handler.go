package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gembotdev/gembot/internal/models"
	mongorepo "github.com/gembotdev/gembot/internal/repositories/mongo"
	"github.com/gembotdev/gembot/internal/utils"
	"github.com/gin-gonic/gin"
)

// PromptHandler exposes the system prompt setting to operators. The
// chat path reads the prompt fresh on every request, so updates here
// take effect immediately.
type PromptHandler struct {
	settings mongorepo.SettingRepository
}

func NewPromptHandler(settings mongorepo.SettingRepository) *PromptHandler {
	return &PromptHandler{settings: settings}
}

func (h *PromptHandler) Get(c *gin.Context) {
	setting, err := h.settings.Get(c.Request.Context(), models.SettingSystemPrompt)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			writeError(c, utils.E(utils.CodeNotFound, "PromptHandler.Get", "system prompt is not configured", err))
			return
		}
		writeError(c, utils.E(utils.CodeInternal, "PromptHandler.Get", "failed to read system prompt", err))
		return
	}
	c.JSON(http.StatusOK, setting)
}

type promptUpdateRequest struct {
	Value string `json:"value"`
}

func (h *PromptHandler) Update(c *gin.Context) {
	var req promptUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Value) == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "PromptHandler.Update", "value is required", err))
		return
	}

	if err := h.settings.Set(c.Request.Context(), models.SettingSystemPrompt, req.Value); err != nil {
		writeError(c, utils.E(utils.CodeInternal, "PromptHandler.Update", "failed to update system prompt", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": models.SettingSystemPrompt})
}
