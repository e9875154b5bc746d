package dto

import (
	"time"

	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
)

// FindingResponse defines the data returned for one detection finding.
type FindingResponse struct {
	ErrorID             string     `json:"errorID"`
	EntryID             string     `json:"entryID"`
	LineID              string     `json:"lineID,omitempty"`
	ErrorType           string     `json:"errorType"`
	ErrorSeverity       string     `json:"errorSeverity"`
	ErrorDescription    string     `json:"errorDescription"`
	SuggestedCorrection string     `json:"suggestedCorrection"`
	DetectedAt          time.Time  `json:"detectedAt"`
	IsResolved          bool       `json:"isResolved"`
	ResolvedBy          string     `json:"resolvedBy,omitempty"`
	ResolutionNotes     string     `json:"resolutionNotes,omitempty"`
	ResolvedAt          *time.Time `json:"resolvedAt,omitempty"`
}

// DetectionResponse is the result of running detection against one entry.
type DetectionResponse struct {
	EntryID     string              `json:"entryID"`
	Findings    []FindingResponse   `json:"findings"`
	Suggestions map[string][]string `json:"suggestions,omitempty"`
}

// ResolveFindingRequest defines the payload for resolving a logged finding.
type ResolveFindingRequest struct {
	ResolvedBy string `json:"resolvedBy" binding:"required"`
	Notes      string `json:"notes"`
}

// ToFindingResponse converts a domain.DetectionResult to FindingResponse.
func ToFindingResponse(f *domain.DetectionResult) FindingResponse {
	return FindingResponse{
		ErrorID:             f.ErrorID,
		EntryID:             f.EntryID,
		LineID:              f.LineID,
		ErrorType:           string(f.ErrorType),
		ErrorSeverity:       string(f.ErrorSeverity),
		ErrorDescription:    f.ErrorDescription,
		SuggestedCorrection: f.SuggestedCorrection,
		DetectedAt:          f.DetectedAt,
		IsResolved:          f.IsResolved,
		ResolvedBy:          f.ResolvedBy,
		ResolutionNotes:     f.ResolutionNotes,
		ResolvedAt:          f.ResolvedAt,
	}
}

// ToFindingResponses converts a slice of domain.DetectionResult to []FindingResponse.
func ToFindingResponses(findings []domain.DetectionResult) []FindingResponse {
	responses := make([]FindingResponse, len(findings))
	for i := range findings {
		responses[i] = ToFindingResponse(&findings[i])
	}
	return responses
}
