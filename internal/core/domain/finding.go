package domain

import "time"

// ErrorSeverity ranks how urgently a finding needs review.
type ErrorSeverity string

const (
	SeverityHigh   ErrorSeverity = "HIGH"
	SeverityMedium ErrorSeverity = "MEDIUM"
	SeverityLow    ErrorSeverity = "LOW"
)

// ErrorType classifies a detected posting issue. The set is closed; checks
// never emit anything outside it.
type ErrorType string

const (
	UnbalancedEntry     ErrorType = "UNBALANCED_ENTRY"
	AccountTypeMismatch ErrorType = "ACCOUNT_TYPE_MISMATCH"
	DuplicateEntry      ErrorType = "DUPLICATE_ENTRY"
	UnusualAmount       ErrorType = "UNUSUAL_AMOUNT"
	InvalidAccount      ErrorType = "INVALID_ACCOUNT"
	NegativeAmount      ErrorType = "NEGATIVE_AMOUNT"
	ZeroAmount          ErrorType = "ZERO_AMOUNT"
	MissingDescription  ErrorType = "MISSING_DESCRIPTION"
	InvalidDate         ErrorType = "INVALID_DATE"
	// CircularReference is reserved; no check currently produces it.
	CircularReference ErrorType = "CIRCULAR_REFERENCE"
)

// DetectionResult is one detected issue with an entry or line. Findings are
// immutable once logged except for the resolution fields, which are set only
// through the resolve operation.
type DetectionResult struct {
	ErrorID             string        `json:"errorID"`
	EntryID             string        `json:"entryID"`
	LineID              string        `json:"lineID,omitempty"` // empty = entry-level finding
	ErrorType           ErrorType     `json:"errorType"`
	ErrorSeverity       ErrorSeverity `json:"errorSeverity"`
	ErrorDescription    string        `json:"errorDescription"`
	SuggestedCorrection string        `json:"suggestedCorrection"`
	DetectedAt          time.Time     `json:"detectedAt"`
	IsResolved          bool          `json:"isResolved"`
	ResolvedBy          string        `json:"resolvedBy,omitempty"`
	ResolutionNotes     string        `json:"resolutionNotes,omitempty"`
	ResolvedAt          *time.Time    `json:"resolvedAt,omitempty"`
}
