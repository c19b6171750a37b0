package model

import (
	"time"
)

type Assessment struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	TeamID     uint       `json:"team_id" gorm:"not null;index"`
	Team       Team       `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	Deadline   time.Time  `json:"deadline" gorm:"not null"`
	LaunchedAt *time.Time `json:"launched_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:AssessmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FinalReport  *FinalReport  `json:"final_report,omitempty" gorm:"foreignKey:AssessmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Participant snapshots one team member's invitation to one assessment run.
// MemberName/MemberEmail are copied at launch so later edits or deletion of
// the TeamMember never corrupt historical assessment data.
type Participant struct {
	ID            uint        `gorm:"primarykey" json:"id"`
	AssessmentID  uint        `json:"assessment_id" gorm:"not null;index"`
	TeamMemberID  *uint       `json:"team_member_id,omitempty" gorm:"index;constraint:OnDelete:SET NULL"`
	TeamMember    *TeamMember `json:"-" gorm:"foreignKey:TeamMemberID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	MemberName    string      `json:"member_name" gorm:"not null;size:200"`
	MemberEmail   string      `json:"member_email" gorm:"not null;size:254"`
	AccessToken   string      `json:"-" gorm:"not null;uniqueIndex;size:36"`
	HasSubmitted  bool        `json:"has_submitted" gorm:"not null;default:false"`
	LastInvitedAt *time.Time  `json:"last_invited_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:ParticipantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Answer records one rating (0..3) for one question by one participant.
// Immutable after creation; uniqueness per (participant, question) is enforced
// at the database level.
type Answer struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	ParticipantID uint      `json:"participant_id" gorm:"not null;uniqueIndex:idx_participant_question"`
	QuestionID    uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_participant_question"`
	Question      Question  `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	Value         int       `json:"value" gorm:"not null"`
	SubmittedAt   time.Time `json:"submitted_at" gorm:"autoCreateTime"`
}

// Rating scale labels, low to high.
var RatingLabels = []string{
	"Consistently Untrue",
	"Somewhat Untrue",
	"Somewhat True",
	"Consistently True",
}
