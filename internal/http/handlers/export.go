package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openagora/opinion-engine/internal/export"
	"github.com/openagora/opinion-engine/internal/http/response"
	"github.com/openagora/opinion-engine/internal/services"
)

type ExportHandler struct {
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func parseExportQuery(c *gin.Context) (conversationID uuid.UUID, clusterID *uuid.UUID, norm float64, asJSON bool, ok bool) {
	conversationID, err := uuid.Parse(c.Param("conversation_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return uuid.Nil, nil, 0, false, false
	}
	if raw := c.Query("cluster_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_cluster_id", err)
			return uuid.Nil, nil, 0, false, false
		}
		clusterID = &id
	}
	norm = 1.0
	if raw := c.Query("normalisation"); raw != "" {
		norm, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_normalisation", err)
			return uuid.Nil, nil, 0, false, false
		}
	}
	switch c.Query("format") {
	case "", "csv":
		return conversationID, clusterID, norm, false, true
	case "json":
		return conversationID, clusterID, norm, true, true
	default:
		response.RespondError(c, http.StatusBadRequest, "invalid_format", fmt.Errorf("unknown export format %q", c.Query("format")))
		return uuid.Nil, nil, 0, false, false
	}
}

func exportHeaders(c *gin.Context, name string, asJSON bool) {
	if asJSON {
		c.Header("Content-Type", "application/json; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".json"))
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
}

// GET /api/conversations/:conversation_id/export/comments?format=csv|json
func (eh *ExportHandler) Comments(c *gin.Context) {
	conversationID, clusterID, norm, asJSON, ok := parseExportQuery(c)
	if !ok {
		return
	}
	rows, err := eh.exportService.Comments(c.Request.Context(), conversationID, clusterID, norm)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	exportHeaders(c, "comments", asJSON)
	c.Status(http.StatusOK)
	if asJSON {
		err = export.WriteCommentsJSON(c.Writer, rows)
	} else {
		err = export.WriteCommentsCSV(c.Writer, rows, nil)
	}
	if err != nil {
		_ = c.Error(err)
	}
}

// GET /api/conversations/:conversation_id/export/participants?format=csv|json
func (eh *ExportHandler) Participants(c *gin.Context) {
	conversationID, clusterID, norm, asJSON, ok := parseExportQuery(c)
	if !ok {
		return
	}
	rows, err := eh.exportService.Participants(c.Request.Context(), conversationID, clusterID, norm)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	exportHeaders(c, "participants", asJSON)
	c.Status(http.StatusOK)
	if asJSON {
		err = export.WriteParticipantsJSON(c.Writer, rows)
	} else {
		err = export.WriteParticipantsCSV(c.Writer, rows, nil)
	}
	if err != nil {
		_ = c.Error(err)
	}
}

// GET /api/conversations/:conversation_id/export/votes?format=csv|json
func (eh *ExportHandler) Votes(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("conversation_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_conversation_id", err)
		return
	}
	asJSON := c.Query("format") == "json"
	if f := c.Query("format"); f != "" && f != "csv" && f != "json" {
		response.RespondError(c, http.StatusBadRequest, "invalid_format", fmt.Errorf("unknown export format %q", f))
		return
	}

	rows, err := eh.exportService.Votes(c.Request.Context(), conversationID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	exportHeaders(c, "votes", asJSON)
	c.Status(http.StatusOK)
	if asJSON {
		err = export.WriteVotesJSON(c.Writer, rows)
	} else {
		err = export.WriteVotesCSV(c.Writer, rows, nil)
	}
	if err != nil {
		_ = c.Error(err)
	}
}
