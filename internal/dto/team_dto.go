package dto

import "time"

type TeamCreateDTO struct {
	Name string `json:"name" binding:"required,max=100"`
}

type TeamRenameDTO struct {
	Name string `json:"name" binding:"required,max=100"`
}

type TeamMemberDTO struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"required,email"`
}

type TeamMemberResponseDTO struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TeamResponseDTO struct {
	ID        uint                    `json:"id"`
	Name      string                  `json:"name"`
	CreatedAt time.Time               `json:"created_at"`
	Members   []TeamMemberResponseDTO `json:"members,omitempty"`
}

type TeamSummaryDTO struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}
