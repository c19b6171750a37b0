package dto

import "time"

// ReportStatusDTO is the poll response for the render pipeline.
type ReportStatusDTO struct {
	Status      string `json:"status"` // not_started | queued | rendering | completed | failed
	DownloadURL string `json:"download_url,omitempty"`
	Message     string `json:"message,omitempty"`
}

type ReportSummaryDTO struct {
	ID           uint      `json:"id"`
	AssessmentID uint      `json:"assessment_id"`
	TeamName     string    `json:"team_name"`
	Deadline     time.Time `json:"deadline"`
	SizeBytes    *int64    `json:"size_bytes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type ReportDownloadDTO struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
