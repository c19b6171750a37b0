package dto

// SurveyQuestionDTO is one survey item shown to a participant.
type SurveyQuestionDTO struct {
	ID       uint   `json:"id"`
	PeakCode string `json:"peak_code"`
	PeakName string `json:"peak_name"`
	Text     string `json:"text"`
	Order    int    `json:"order"`
}

// SurveyViewDTO is the token-gated question list for one participant.
type SurveyViewDTO struct {
	MemberName   string              `json:"member_name"`
	TeamName     string              `json:"team_name"`
	Deadline     string              `json:"deadline"`
	HasSubmitted bool                `json:"has_submitted"`
	RatingLabels []string            `json:"rating_labels"`
	Questions    []SurveyQuestionDTO `json:"questions,omitempty"`
}

// SurveyAnswerDTO is one rating keyed by question id.
type SurveyAnswerDTO struct {
	QuestionID uint `json:"question_id" binding:"required"`
	Value      int  `json:"value" binding:"min=0,max=3"`
}

type SurveySubmitDTO struct {
	Answers []SurveyAnswerDTO `json:"answers" binding:"required,dive"`
}

// SurveySubmitResponseDTO is returned for both first submissions and the
// idempotent already-submitted case.
type SurveySubmitResponseDTO struct {
	MemberName       string `json:"member_name"`
	AlreadySubmitted bool   `json:"already_submitted"`
	Message          string `json:"message"`
}
