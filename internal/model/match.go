package model

import "time"

// MatchTier classifies the confidence of a match candidate.
type MatchTier string

const (
	TierExact  MatchTier = "exact"
	TierHigh   MatchTier = "high"
	TierMedium MatchTier = "medium"
	TierLow    MatchTier = "low"
	TierNone   MatchTier = "none"
)

// MatchAction is the recommended operator action for a match candidate.
type MatchAction string

const (
	ActionUpdate MatchAction = "update"
	ActionReview MatchAction = "review"
	ActionSkip   MatchAction = "skip"
)

// ExtractedRecord is a club-like entity parsed from an untrusted payload.
// Name is always non-empty after normalization; records that fail that
// invariant never leave the extractor.
type ExtractedRecord struct {
	Name           string `json:"name"`
	Address        string `json:"address,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	Website        string `json:"website,omitempty"`
	LogoURL        string `json:"logo_url,omitempty"`
	ContactPerson  string `json:"contact_person,omitempty"`
	ContactRole    string `json:"contact_role,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// SkippedRow records a payload element dropped during extraction.
type SkippedRow struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// MatchCandidate pairs one extracted record with its best-scoring club.
// Tier and action are derived from the score, never set independently.
type MatchCandidate struct {
	ExistingID        string          `json:"existing_id"`
	ExistingName      string          `json:"existing_name"`
	Extracted         ExtractedRecord `json:"extracted"`
	ConfidenceScore   float64         `json:"confidence_score"`
	MatchTier         MatchTier       `json:"match_tier"`
	RecommendedAction MatchAction     `json:"recommended_action"`
}

// ReconciliationSummary aggregates counts over one reconciliation run.
// AppliedCount and SkippedCount are only populated in apply mode.
type ReconciliationSummary struct {
	TotalExtracted int          `json:"total_extracted"`
	ExactCount     int          `json:"exact_count"`
	HighCount      int          `json:"high_count"`
	MediumCount    int          `json:"medium_count"`
	LowCount       int          `json:"low_count"`
	NoneCount      int          `json:"none_count"`
	SkippedRows    []SkippedRow `json:"skipped_rows,omitempty"`
	AppliedCount   int          `json:"applied_count,omitempty"`
	SkippedCount   int          `json:"skipped_count,omitempty"`
}

// RunMode distinguishes read-only previews from applying runs.
type RunMode string

const (
	ModePreview RunMode = "preview"
	ModeApply   RunMode = "apply"
)

// ReconcileRun is the stored record of one preview or apply invocation.
type ReconcileRun struct {
	ID             string    `json:"id"`
	Mode           RunMode   `json:"mode"`
	TotalExtracted int       `json:"total_extracted"`
	ExactCount     int       `json:"exact_count"`
	HighCount      int       `json:"high_count"`
	MediumCount    int       `json:"medium_count"`
	LowCount       int       `json:"low_count"`
	NoneCount      int       `json:"none_count"`
	AppliedCount   int       `json:"applied_count"`
	SkippedCount   int       `json:"skipped_count"`
	CreatedAt      time.Time `json:"created_at"`
}
