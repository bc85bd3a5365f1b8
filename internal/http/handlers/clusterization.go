package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openagora/opinion-engine/internal/http/response"
	"github.com/openagora/opinion-engine/internal/services"
)

type ClusterizationHandler struct {
	clusterizationService services.ClusterizationService
	shapeService          services.ShapeService
}

func NewClusterizationHandler(
	clusterizationService services.ClusterizationService,
	shapeService services.ShapeService,
) *ClusterizationHandler {
	return &ClusterizationHandler{
		clusterizationService: clusterizationService,
		shapeService:          shapeService,
	}
}

// POST /api/conversations/:conversation_id/clusterize?force=true
func (ch *ClusterizationHandler) Clusterize(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("conversation_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	force := c.Query("force") == "true"

	cz, err := ch.clusterizationService.Update(c.Request.Context(), conversationID, force)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"clusterization": cz})
}

// PATCH /api/clusterizations/:clusterization_id/status
// body: { "status": "pending_data" | "active" | "disabled" }
func (ch *ClusterizationHandler) SetStatus(c *gin.Context) {
	clusterizationID, err := uuid.Parse(c.Param("clusterization_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_clusterization_id", err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := ch.clusterizationService.SetStatus(c.Request.Context(), clusterizationID, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/clusterizations/:clusterization_id/shape?user_id=...
func (ch *ClusterizationHandler) GetShape(c *gin.Context) {
	clusterizationID, err := uuid.Parse(c.Param("clusterization_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_clusterization_id", err)
		return
	}
	viewerID := uuid.Nil
	if raw := c.Query("user_id"); raw != "" {
		viewerID, err = uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
			return
		}
	}

	shape, err := ch.shapeService.GetShapeData(c.Request.Context(), clusterizationID, viewerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, shape)
}
