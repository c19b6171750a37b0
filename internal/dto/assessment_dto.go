package dto

import "time"

// AssessmentDraftDTO stages a new assessment. Nothing is persisted until the
// draft is confirmed.
type AssessmentDraftDTO struct {
	TeamID   uint   `json:"team_id" binding:"required"`
	Deadline string `json:"deadline" binding:"required"` // YYYY-MM-DD
}

type AssessmentDraftResponseDTO struct {
	DraftToken string                  `json:"draft_token"`
	TeamID     uint                    `json:"team_id"`
	TeamName   string                  `json:"team_name"`
	Deadline   string                  `json:"deadline"`
	Members    []TeamMemberResponseDTO `json:"members"`
	ExpiresAt  time.Time               `json:"expires_at"`
}

type AssessmentLaunchDTO struct {
	DraftToken string `json:"draft_token" binding:"required"`
}

type ParticipantResponseDTO struct {
	ID            uint       `json:"id"`
	MemberName    string     `json:"member_name"`
	MemberEmail   string     `json:"member_email"`
	HasSubmitted  bool       `json:"has_submitted"`
	LastInvitedAt *time.Time `json:"last_invited_at,omitempty"`
}

type AssessmentResponseDTO struct {
	ID           uint                     `json:"id"`
	TeamID       uint                     `json:"team_id"`
	TeamName     string                   `json:"team_name"`
	Deadline     time.Time                `json:"deadline"`
	LaunchedAt   *time.Time               `json:"launched_at,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	Participants []ParticipantResponseDTO `json:"participants,omitempty"`
}

// AssessmentSummaryDTO lists one assessment with submission progress.
type AssessmentSummaryDTO struct {
	ID             uint       `json:"id"`
	TeamID         uint       `json:"team_id"`
	TeamName       string     `json:"team_name"`
	Deadline       time.Time  `json:"deadline"`
	LaunchedAt     *time.Time `json:"launched_at,omitempty"`
	TotalInvited   int        `json:"total_invited"`
	TotalSubmitted int        `json:"total_submitted"`
	ReportStatus   string     `json:"report_status"`
}
