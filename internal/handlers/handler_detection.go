package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookcheck-dev/bookcheck/internal/apperrors"
	portssvc "github.com/bookcheck-dev/bookcheck/internal/core/ports/services"
	"github.com/bookcheck-dev/bookcheck/internal/dto"
	"github.com/bookcheck-dev/bookcheck/internal/middleware"
)

// detectionHandler exposes the error detection engine and its findings log.
type detectionHandler struct {
	journalSvc    portssvc.JournalSvcFacade
	detectionSvc  portssvc.DetectionSvcFacade
	suggestionSvc portssvc.SuggestionSvcFacade
	findingSvc    portssvc.FindingSvcFacade
}

func newDetectionHandler(journalSvc portssvc.JournalSvcFacade, detectionSvc portssvc.DetectionSvcFacade, suggestionSvc portssvc.SuggestionSvcFacade, findingSvc portssvc.FindingSvcFacade) *detectionHandler {
	return &detectionHandler{
		journalSvc:    journalSvc,
		detectionSvc:  detectionSvc,
		suggestionSvc: suggestionSvc,
		findingSvc:    findingSvc,
	}
}

// detectErrors runs every detection rule against one entry. Findings are
// persisted before the response is written. Pass ?suggestions=true to get
// correction suggestions grouped by error type alongside the findings.
func (h *detectionHandler) detectErrors(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	entry, err := h.journalSvc.GetEntry(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
			return
		}
		logger.Error("Failed to load entry for detection", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entry"})
		return
	}

	findings, err := h.detectionSvc.DetectAllErrors(c.Request.Context(), entry)
	if err != nil {
		logger.Error("Detection run failed", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Detection run failed"})
		return
	}

	resp := dto.DetectionResponse{
		EntryID:  entryID,
		Findings: dto.ToFindingResponses(findings),
	}

	if c.Query("suggestions") == "true" && len(findings) > 0 {
		suggestions, err := h.suggestionSvc.SuggestCorrections(c.Request.Context(), entry, findings)
		if err != nil {
			logger.Error("Suggestion generation failed", slog.String("error", err.Error()), slog.String("entry_id", entryID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Suggestion generation failed"})
			return
		}
		resp.Suggestions = suggestions
	}

	c.JSON(http.StatusOK, resp)
}

func (h *detectionHandler) getEntryFindings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	findings, err := h.findingSvc.GetFindingsForEntry(c.Request.Context(), entryID)
	if err != nil {
		logger.Error("Failed to list entry findings", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list findings"})
		return
	}

	c.JSON(http.StatusOK, dto.ToFindingResponses(findings))
}

func (h *detectionHandler) listUnresolvedFindings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	findings, err := h.findingSvc.ListUnresolvedFindings(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list unresolved findings", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list findings"})
		return
	}

	c.JSON(http.StatusOK, dto.ToFindingResponses(findings))
}

func (h *detectionHandler) resolveFinding(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	findingID := c.Param("findingID")

	var req dto.ResolveFindingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for resolveFinding", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	err := h.findingSvc.ResolveFinding(c.Request.Context(), findingID, req.ResolvedBy, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Finding not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to resolve finding", slog.String("error", err.Error()), slog.String("finding_id", findingID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve finding"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"findingID": findingID, "isResolved": true})
}
