package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrSurveyNotFound = errors.New("survey link is not valid")
	ErrSurveyClosed   = errors.New("this assessment's deadline has passed")
	ErrNoAnswers      = errors.New("submission contains no answers for this survey")
)

const thanksMessage = "Thanks for completing your assessment. Your input has been recorded."

// SurveyService is the public, token-gated submission path. No authentication
// beyond possession of the participant's opaque access token.
type SurveyService interface {
	GetSurvey(token string) (*dto.SurveyViewDTO, error)
	Submit(token string, req dto.SurveySubmitDTO) (*dto.SurveySubmitResponseDTO, error)
}

type surveyService struct {
	participantRepo repository.ParticipantRepository
	assessmentRepo  repository.AssessmentRepository
	questionRepo    repository.QuestionRepository
	answerRepo      repository.AnswerRepository
	userRepo        repository.UserRepository
	mailer          Mailer
	db              *gorm.DB
}

func NewSurveyService(
	participantRepo repository.ParticipantRepository,
	assessmentRepo repository.AssessmentRepository,
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	userRepo repository.UserRepository,
	mailer Mailer,
	db *gorm.DB,
) SurveyService {
	return &surveyService{
		participantRepo: participantRepo,
		assessmentRepo:  assessmentRepo,
		questionRepo:    questionRepo,
		answerRepo:      answerRepo,
		userRepo:        userRepo,
		mailer:          mailer,
		db:              db,
	}
}

func (s *surveyService) resolve(token string) (*model.Participant, *model.Assessment, error) {
	participant, err := s.participantRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSurveyNotFound
		}
		return nil, nil, fmt.Errorf("error resolving survey token: %w", err)
	}

	assessment, err := s.assessmentRepo.FindByID(participant.AssessmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("assessment not found for participant: %w", err)
	}
	return participant, assessment, nil
}

func (s *surveyService) GetSurvey(token string) (*dto.SurveyViewDTO, error) {
	participant, assessment, err := s.resolve(token)
	if err != nil {
		return nil, err
	}

	view := &dto.SurveyViewDTO{
		MemberName:   participant.MemberName,
		TeamName:     assessment.Team.Name,
		Deadline:     assessment.Deadline.Format(deadlineLayout),
		HasSubmitted: participant.HasSubmitted,
		RatingLabels: model.RatingLabels,
	}
	if participant.HasSubmitted {
		return view, nil
	}
	if assessment.Deadline.Before(truncateToDay(time.Now())) {
		return nil, ErrSurveyClosed
	}

	questions, err := s.questionRepo.FindAllOrdered()
	if err != nil {
		return nil, fmt.Errorf("error fetching questions: %w", err)
	}
	for _, q := range questions {
		view.Questions = append(view.Questions, dto.SurveyQuestionDTO{
			ID:       q.ID,
			PeakCode: q.Peak.Code,
			PeakName: q.Peak.Name,
			Text:     q.Text,
			Order:    q.Order,
		})
	}
	return view, nil
}

// Submit records one rating per answered question and flips the submission
// flag. A second submission for the same token is an idempotent no-op
// returning the same thanks view; it creates no Answer rows.
func (s *surveyService) Submit(token string, req dto.SurveySubmitDTO) (*dto.SurveySubmitResponseDTO, error) {
	participant, assessment, err := s.resolve(token)
	if err != nil {
		return nil, err
	}

	if participant.HasSubmitted {
		return &dto.SurveySubmitResponseDTO{
			MemberName:       participant.MemberName,
			AlreadySubmitted: true,
			Message:          thanksMessage,
		}, nil
	}
	if assessment.Deadline.Before(truncateToDay(time.Now())) {
		return nil, ErrSurveyClosed
	}

	questions, err := s.questionRepo.FindAllOrdered()
	if err != nil {
		return nil, fmt.Errorf("error fetching questions: %w", err)
	}
	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	var answers []model.Answer
	for _, a := range req.Answers {
		if !known[a.QuestionID] {
			log.Warn().Uint("questionID", a.QuestionID).Msg("Submit: answer for unknown question, skipping")
			continue
		}
		if a.Value < 0 || a.Value > 3 {
			continue
		}
		answers = append(answers, model.Answer{
			ParticipantID: participant.ID,
			QuestionID:    a.QuestionID,
			Value:         a.Value,
		})
	}
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&answers).Error; err != nil {
			return fmt.Errorf("failed to persist answers: %w", err)
		}
		participant.HasSubmitted = true
		return tx.Save(participant).Error
	})
	if err != nil {
		log.Error().Err(err).Uint("participantID", participant.ID).Msg("Submit: transaction failed")
		return nil, err
	}

	// Notifications are best-effort; the recorded submission stands either way.
	s.notifySubmission(participant, assessment)

	return &dto.SurveySubmitResponseDTO{
		MemberName: participant.MemberName,
		Message:    thanksMessage,
	}, nil
}

func (s *surveyService) notifySubmission(participant *model.Participant, assessment *model.Assessment) {
	if err := s.mailer.SendSubmitThanks(participant); err != nil {
		log.Warn().Err(err).Str("email", participant.MemberEmail).Msg("Submit: thanks email failed")
	}

	admin, err := s.userRepo.FindByID(assessment.Team.AdminID)
	if err != nil {
		log.Warn().Err(err).Uint("adminID", assessment.Team.AdminID).Msg("Submit: could not load admin for progress alert")
		return
	}
	total, err := s.participantRepo.CountByAssessment(assessment.ID)
	if err != nil {
		log.Warn().Err(err).Msg("Submit: progress count failed")
		return
	}
	submitted, err := s.participantRepo.CountSubmittedByAssessment(assessment.ID)
	if err != nil {
		log.Warn().Err(err).Msg("Submit: progress count failed")
		return
	}
	if err := s.mailer.SendAdminAlert(admin.Email, participant.MemberName, assessment.Team.Name, submitted, total, assessment); err != nil {
		log.Warn().Err(err).Str("email", admin.Email).Msg("Submit: admin alert failed")
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
