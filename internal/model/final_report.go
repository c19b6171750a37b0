package model

import (
	"time"
)

// Render pipeline states for a FinalReport.
const (
	ReportStatusNotStarted = "not_started"
	ReportStatusQueued     = "queued"
	ReportStatusRendering  = "rendering"
	ReportStatusCompleted  = "completed"
	ReportStatusFailed     = "failed"
)

// FinalReport is the generated PDF artifact for one assessment. A non-empty
// S3Key is the single source of truth for "report ready"; an empty key with a
// populated RenderJobID means the render is still in flight.
type FinalReport struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	AssessmentID    uint       `json:"assessment_id" gorm:"not null;uniqueIndex"`
	S3Key           string     `json:"s3_key" gorm:"size:512"`
	SizeBytes       *int64     `json:"size_bytes,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	PaymentIntentID string     `json:"payment_intent_id,omitempty" gorm:"size:64;index"`
	RenderJobID     string     `json:"render_job_id,omitempty" gorm:"size:64"`
	Status          string     `json:"status" gorm:"not null;default:'not_started';size:16"`
	FailureMessage  string     `json:"failure_message,omitempty" gorm:"type:text"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Ready reports whether the rendered PDF has been persisted to object storage.
func (r *FinalReport) Ready() bool {
	return r != nil && r.S3Key != ""
}
