package types

import (
	"encoding/json"
	"time"
)

// NewsIssue is one filtered news item together with its RAG enrichment.
// Rows are replaced wholesale on every pipeline run.
type NewsIssue struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	IssueNumber         int       `json:"issue_number"`
	Title               string    `gorm:"size:512" json:"title"`
	Content             string    `gorm:"type:text" json:"content"`
	Category            string    `gorm:"size:128" json:"category"`
	ExtractedAt         time.Time `json:"extracted_at"`
	StockRelevanceScore float64   `json:"stock_relevance_score"`
	Ranking             int       `json:"ranking"`

	ConsistencyScore   float64 `json:"consistency_score"`
	PeakRelevanceScore float64 `json:"peak_relevance_score"`
	ErrorNote          string  `gorm:"type:text" json:"error_note,omitempty"`

	RelatedIndustries []RelatedIndustry  `gorm:"foreignKey:NewsIssueID;constraint:OnDelete:CASCADE" json:"related_industries"`
	RelatedPastIssues []RelatedPastIssue `gorm:"foreignKey:NewsIssueID;constraint:OnDelete:CASCADE" json:"related_past_issues"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RelatedIndustry is one scored industry candidate attached to an issue.
type RelatedIndustry struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	NewsIssueID uint   `gorm:"index" json:"-"`
	Name        string `gorm:"size:256" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	VectorScore float64 `json:"vector_score"`
	AIScore     float64 `json:"ai_score"`
	AIReason    string  `gorm:"type:text" json:"ai_reason"`
	FinalScore  float64 `json:"final_score"`

	Verified         bool   `json:"-"`
	IsGrounded       bool   `json:"-"`
	SupportingQuote  string `gorm:"type:text" json:"-"`
	UnverifiedReason string `gorm:"type:text" json:"-"`
}

// RelatedPastIssue is one scored past-event candidate attached to an issue.
type RelatedPastIssue struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	NewsIssueID uint   `gorm:"index" json:"-"`
	Name        string `gorm:"size:256" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Period      string `gorm:"size:128" json:"period"`

	VectorScore float64 `json:"vector_score"`
	AIScore     float64 `json:"ai_score"`
	AIReason    string  `gorm:"type:text" json:"ai_reason"`
	FinalScore  float64 `json:"final_score"`

	Verified         bool   `json:"-"`
	IsGrounded       bool   `json:"-"`
	SupportingQuote  string `gorm:"type:text" json:"-"`
	UnverifiedReason string `gorm:"type:text" json:"-"`
}

// CandidateVerification is the serialized verdict of a checked candidate.
// Flat Verified/IsGrounded columns stay gorm-only; JSON carries the verdict
// as one nested object, present only for candidates that were checked.
type CandidateVerification struct {
	IsGrounded       bool   `json:"is_grounded"`
	SupportingQuote  string `json:"supporting_quote"`
	UnverifiedReason string `json:"unverified_reason"`
}

func (r RelatedIndustry) MarshalJSON() ([]byte, error) {
	type alias RelatedIndustry
	payload := struct {
		alias
		Verification *CandidateVerification `json:"verification,omitempty"`
	}{alias: alias(r)}
	if r.Verified {
		payload.Verification = &CandidateVerification{
			IsGrounded:       r.IsGrounded,
			SupportingQuote:  r.SupportingQuote,
			UnverifiedReason: r.UnverifiedReason,
		}
	}
	return json.Marshal(payload)
}

func (r *RelatedIndustry) UnmarshalJSON(data []byte) error {
	type alias RelatedIndustry
	payload := struct {
		*alias
		Verification *CandidateVerification `json:"verification"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	if payload.Verification != nil {
		r.Verified = true
		r.IsGrounded = payload.Verification.IsGrounded
		r.SupportingQuote = payload.Verification.SupportingQuote
		r.UnverifiedReason = payload.Verification.UnverifiedReason
	}
	return nil
}

func (r RelatedPastIssue) MarshalJSON() ([]byte, error) {
	type alias RelatedPastIssue
	payload := struct {
		alias
		Verification *CandidateVerification `json:"verification,omitempty"`
	}{alias: alias(r)}
	if r.Verified {
		payload.Verification = &CandidateVerification{
			IsGrounded:       r.IsGrounded,
			SupportingQuote:  r.SupportingQuote,
			UnverifiedReason: r.UnverifiedReason,
		}
	}
	return json.Marshal(payload)
}

func (r *RelatedPastIssue) UnmarshalJSON(data []byte) error {
	type alias RelatedPastIssue
	payload := struct {
		*alias
		Verification *CandidateVerification `json:"verification"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	if payload.Verification != nil {
		r.Verified = true
		r.IsGrounded = payload.Verification.IsGrounded
		r.SupportingQuote = payload.Verification.SupportingQuote
		r.UnverifiedReason = payload.Verification.UnverifiedReason
	}
	return nil
}

// PipelineRun records one execution of the enrichment pipeline.
type PipelineRun struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	RunID             string     `gorm:"size:64;uniqueIndex" json:"run_id"`
	Status            string     `gorm:"size:32" json:"status"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	IssueCount        int        `json:"issue_count"`
	AverageConfidence float64    `json:"average_confidence"`
	ErrorNote         string     `gorm:"type:text" json:"error_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)
