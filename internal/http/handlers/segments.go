package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/http/response"
	"github.com/openagora/opinion-engine/internal/services"
)

type SegmentHandler struct {
	segmentService services.SegmentService
}

func NewSegmentHandler(segmentService services.SegmentService) *SegmentHandler {
	return &SegmentHandler{segmentService: segmentService}
}

// POST /api/conversations/:conversation_id/segments
// body: { "clusters": [...], "engagement_level": 0-100, "comments": {...} }
func (sh *SegmentHandler) Create(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("conversation_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	var req struct {
		Clusters        datatypes.JSON `json:"clusters"`
		EngagementLevel int            `json:"engagement_level"`
		Comments        datatypes.JSON `json:"comments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	filter, err := sh.segmentService.Create(c.Request.Context(), &types.SegmentFilter{
		ConversationID:  conversationID,
		Clusters:        req.Clusters,
		EngagementLevel: req.EngagementLevel,
		Comments:        req.Comments,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"segment_filter": filter})
}

// GET /api/conversations/:conversation_id/segments
func (sh *SegmentHandler) List(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("conversation_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	filters, err := sh.segmentService.List(c.Request.Context(), conversationID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"segment_filters": filters})
}

// DELETE /api/segments/:filter_id
func (sh *SegmentHandler) Delete(c *gin.Context) {
	filterID, err := uuid.Parse(c.Param("filter_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_filter_id", err)
		return
	}
	if err := sh.segmentService.Delete(c.Request.Context(), filterID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/segments/:filter_id/toggle
// body: { "comment_id": "...", "choice": "agree" | "disagree" | "skip" }
func (sh *SegmentHandler) Toggle(c *gin.Context) {
	filterID, err := uuid.Parse(c.Param("filter_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_filter_id", err)
		return
	}
	var req struct {
		CommentID uuid.UUID `json:"comment_id"`
		Choice    string    `json:"choice"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	filter, err := sh.segmentService.Toggle(c.Request.Context(), filterID, req.CommentID, req.Choice)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"segment_filter": filter})
}

// GET /api/segments/:filter_id/participants
func (sh *SegmentHandler) Participants(c *gin.Context) {
	filterID, err := uuid.Parse(c.Param("filter_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_filter_id", err)
		return
	}
	filter, err := sh.segmentService.Get(c.Request.Context(), filterID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	participants, err := sh.segmentService.FilterParticipants(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if participants == nil {
		participants = []uuid.UUID{}
	}
	response.RespondOK(c, gin.H{"participants": participants})
}
