package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openagora/opinion-engine/internal/http/response"
	"github.com/openagora/opinion-engine/internal/services"
)

type ScatterHandler struct {
	projectionService services.ProjectionService
}

func NewScatterHandler(projectionService services.ProjectionService) *ScatterHandler {
	return &ScatterHandler{projectionService: projectionService}
}

// GET /api/conversations/:conversation_id/scatter?method=pca&seed=42
func (sh *ScatterHandler) ProjectScatter(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("conversation_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	var seed int64
	if raw := c.Query("seed"); raw != "" {
		seed, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_seed", err)
			return
		}
	}

	scatter, err := sh.projectionService.Scatter(c.Request.Context(), conversationID, c.Query("method"), seed)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, scatter)
}
