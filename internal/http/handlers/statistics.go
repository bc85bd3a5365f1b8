package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openagora/opinion-engine/internal/http/response"
	"github.com/openagora/opinion-engine/internal/math/stats"
	"github.com/openagora/opinion-engine/internal/services"
)

type StatisticsHandler struct {
	statisticsService services.StatisticsService
}

func NewStatisticsHandler(statisticsService services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func parseStatsQuery(c *gin.Context) (conversationID uuid.UUID, clusterID *uuid.UUID, norm float64, ok bool) {
	conversationID, err := uuid.Parse(c.Param("conversation_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return uuid.Nil, nil, 0, false
	}
	if raw := c.Query("cluster_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_cluster_id", err)
			return uuid.Nil, nil, 0, false
		}
		clusterID = &id
	}
	norm = 1.0
	if raw := c.Query("normalisation"); raw != "" {
		norm, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_normalisation", err)
			return uuid.Nil, nil, 0, false
		}
	}
	return conversationID, clusterID, norm, true
}

func parseOrder(c *gin.Context) (stats.OrderBy, bool) {
	switch c.Query("order_by") {
	case "", "agree":
		return stats.ByAgree, c.Query("descending") != "false"
	case "disagree":
		return stats.ByDisagree, c.Query("descending") != "false"
	case "convergence":
		return stats.ByConvergence, c.Query("descending") != "false"
	case "participation":
		return stats.ByParticipation, c.Query("descending") != "false"
	default:
		return stats.ByAgree, true
	}
}

// GET /api/conversations/:conversation_id/statistics/comments
func (sh *StatisticsHandler) CommentStatistics(c *gin.Context) {
	conversationID, clusterID, norm, ok := parseStatsQuery(c)
	if !ok {
		return
	}
	orderBy, descending := parseOrder(c)

	rows, err := sh.statisticsService.CommentStatistics(c.Request.Context(), conversationID, clusterID, norm, orderBy, descending)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"comments": rows})
}

// GET /api/conversations/:conversation_id/statistics/users
func (sh *StatisticsHandler) UserStatistics(c *gin.Context) {
	conversationID, clusterID, norm, ok := parseStatsQuery(c)
	if !ok {
		return
	}

	rows, err := sh.statisticsService.UserStatistics(c.Request.Context(), conversationID, clusterID, norm)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": rows})
}
