package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const deadlineLayout = "2006-01-02"

var ErrDeadlineInPast = errors.New("deadline must be in the future")

// AssessmentService drives the draft → launch lifecycle. Drafts live in the
// draft store only; the assessment row and its participant snapshots are
// created atomically at launch.
type AssessmentService interface {
	CreateDraft(ctx context.Context, adminID uint, req dto.AssessmentDraftDTO) (*dto.AssessmentDraftResponseDTO, error)
	Launch(ctx context.Context, adminID uint, req dto.AssessmentLaunchDTO) (*dto.AssessmentResponseDTO, error)
	ResendInvite(ctx context.Context, adminID, participantID uint) error
	Delete(adminID, assessmentID uint) error
	Get(adminID, assessmentID uint) (*dto.AssessmentResponseDTO, error)
	Overview(adminID uint) ([]dto.AssessmentSummaryDTO, error)
}

type assessmentService struct {
	draftStore      DraftStore
	teamRepo        repository.TeamRepository
	memberRepo      repository.TeamMemberRepository
	assessmentRepo  repository.AssessmentRepository
	participantRepo repository.ParticipantRepository
	mailer          Mailer
	db              *gorm.DB
}

func NewAssessmentService(
	draftStore DraftStore,
	teamRepo repository.TeamRepository,
	memberRepo repository.TeamMemberRepository,
	assessmentRepo repository.AssessmentRepository,
	participantRepo repository.ParticipantRepository,
	mailer Mailer,
	db *gorm.DB,
) AssessmentService {
	return &assessmentService{
		draftStore:      draftStore,
		teamRepo:        teamRepo,
		memberRepo:      memberRepo,
		assessmentRepo:  assessmentRepo,
		participantRepo: participantRepo,
		mailer:          mailer,
		db:              db,
	}
}

func (s *assessmentService) CreateDraft(ctx context.Context, adminID uint, req dto.AssessmentDraftDTO) (*dto.AssessmentDraftResponseDTO, error) {
	team, err := s.teamRepo.FindByIDForAdmin(req.TeamID, adminID)
	if err != nil {
		return nil, fmt.Errorf("team not found with ID %d: %w", req.TeamID, err)
	}

	deadline, err := time.Parse(deadlineLayout, req.Deadline)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline %q, expected YYYY-MM-DD: %w", req.Deadline, err)
	}
	if !deadline.After(time.Now()) {
		return nil, ErrDeadlineInPast
	}

	members, err := s.memberRepo.FindAllByTeam(team.ID)
	if err != nil {
		return nil, fmt.Errorf("error fetching team members: %w", err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("team %q has no members to invite", team.Name)
	}

	token, expiresAt, err := s.draftStore.Save(ctx, &AssessmentDraft{
		TeamID:    team.ID,
		TeamName:  team.Name,
		Deadline:  req.Deadline,
		CreatedBy: adminID,
	})
	if err != nil {
		log.Error().Err(err).Uint("teamID", team.ID).Msg("CreateDraft: failed to stage draft")
		return nil, err
	}

	memberDTOs := make([]dto.TeamMemberResponseDTO, 0, len(members))
	for _, m := range members {
		memberDTOs = append(memberDTOs, dto.TeamMemberResponseDTO{ID: m.ID, Name: m.Name, Email: m.Email})
	}

	return &dto.AssessmentDraftResponseDTO{
		DraftToken: token,
		TeamID:     team.ID,
		TeamName:   team.Name,
		Deadline:   req.Deadline,
		Members:    memberDTOs,
		ExpiresAt:  expiresAt,
	}, nil
}

func (s *assessmentService) Launch(ctx context.Context, adminID uint, req dto.AssessmentLaunchDTO) (*dto.AssessmentResponseDTO, error) {
	draft, err := s.draftStore.Get(ctx, req.DraftToken)
	if err != nil {
		return nil, err
	}
	if draft.CreatedBy != adminID {
		// Behave like an expired draft rather than leaking its existence.
		return nil, ErrDraftNotFound
	}

	team, err := s.teamRepo.FindByIDForAdmin(draft.TeamID, adminID)
	if err != nil {
		return nil, fmt.Errorf("team not found with ID %d: %w", draft.TeamID, err)
	}
	deadline, err := time.Parse(deadlineLayout, draft.Deadline)
	if err != nil {
		return nil, fmt.Errorf("draft has invalid deadline %q: %w", draft.Deadline, err)
	}

	// Re-launching the same team+deadline returns the existing run instead of
	// duplicating it.
	existing, err := s.assessmentRepo.FindByTeamAndDeadline(team.ID, deadline)
	if err == nil {
		log.Info().Uint("assessmentID", existing.ID).Msg("Launch: assessment already exists for team and deadline")
		_ = s.draftStore.Delete(ctx, req.DraftToken)
		return s.Get(adminID, existing.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error checking for existing assessment: %w", err)
	}

	members, err := s.memberRepo.FindAllByTeam(team.ID)
	if err != nil {
		return nil, fmt.Errorf("error fetching team members: %w", err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("team %q has no members to invite", team.Name)
	}

	now := time.Now()
	assessment := model.Assessment{
		TeamID:     team.ID,
		Deadline:   deadline,
		LaunchedAt: &now,
	}
	for _, m := range members {
		memberID := m.ID
		assessment.Participants = append(assessment.Participants, model.Participant{
			TeamMemberID: &memberID,
			MemberName:   m.Name,
			MemberEmail:  m.Email,
			AccessToken:  uuid.NewString(),
		})
	}

	// Single transaction: assessment row plus one participant per member.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&assessment).Error
	})
	if err != nil {
		log.Error().Err(err).Uint("teamID", team.ID).Msg("Launch: failed to create assessment")
		return nil, fmt.Errorf("failed to launch assessment: %w", err)
	}

	// Invites are best-effort: a failed send is logged and never unwinds the
	// launch.
	for i := range assessment.Participants {
		p := &assessment.Participants[i]
		if err := s.mailer.SendInvite(p, &assessment, team.Name); err != nil {
			log.Warn().Err(err).Str("email", p.MemberEmail).Uint("assessmentID", assessment.ID).Msg("Launch: invite send failed")
			continue
		}
		sent := time.Now()
		p.LastInvitedAt = &sent
		if err := s.participantRepo.Update(p); err != nil {
			log.Warn().Err(err).Uint("participantID", p.ID).Msg("Launch: failed to stamp invite time")
		}
	}

	if err := s.draftStore.Delete(ctx, req.DraftToken); err != nil {
		log.Warn().Err(err).Msg("Launch: failed to delete consumed draft")
	}

	log.Info().Uint("assessmentID", assessment.ID).Str("team", team.Name).Int("participants", len(assessment.Participants)).Msg("Assessment launched")
	return s.Get(adminID, assessment.ID)
}

func (s *assessmentService) ResendInvite(ctx context.Context, adminID, participantID uint) error {
	participant, err := s.participantRepo.FindByIDForAdmin(participantID, adminID)
	if err != nil {
		return fmt.Errorf("participant not found with ID %d: %w", participantID, err)
	}

	assessment, err := s.assessmentRepo.FindByID(participant.AssessmentID)
	if err != nil {
		return fmt.Errorf("assessment not found for participant %d: %w", participantID, err)
	}

	if err := s.mailer.SendInvite(participant, assessment, assessment.Team.Name); err != nil {
		return fmt.Errorf("failed to resend invite: %w", err)
	}

	sent := time.Now()
	participant.LastInvitedAt = &sent
	if err := s.participantRepo.Update(participant); err != nil {
		log.Warn().Err(err).Uint("participantID", participant.ID).Msg("ResendInvite: failed to stamp invite time")
	}
	return nil
}

func (s *assessmentService) Delete(adminID, assessmentID uint) error {
	assessment, err := s.assessmentRepo.FindByIDForAdmin(assessmentID, adminID)
	if err != nil {
		return fmt.Errorf("assessment not found with ID %d: %w", assessmentID, err)
	}
	// Participants, answers and the report row follow via FK cascade.
	if err := s.assessmentRepo.Delete(assessment.ID); err != nil {
		log.Error().Err(err).Uint("assessmentID", assessmentID).Msg("Delete: repository error")
		return fmt.Errorf("failed to delete assessment: %w", err)
	}
	return nil
}

func (s *assessmentService) Get(adminID, assessmentID uint) (*dto.AssessmentResponseDTO, error) {
	assessment, err := s.assessmentRepo.FindByIDWithParticipants(assessmentID, adminID)
	if err != nil {
		return nil, fmt.Errorf("assessment not found with ID %d: %w", assessmentID, err)
	}

	var resp dto.AssessmentResponseDTO
	if err := copier.Copy(&resp, assessment); err != nil {
		return nil, fmt.Errorf("error preparing assessment response: %w", err)
	}
	resp.TeamName = assessment.Team.Name
	return &resp, nil
}

func (s *assessmentService) Overview(adminID uint) ([]dto.AssessmentSummaryDTO, error) {
	assessments, err := s.assessmentRepo.FindAllByAdmin(adminID)
	if err != nil {
		log.Error().Err(err).Uint("adminID", adminID).Msg("Overview: repository error")
		return nil, fmt.Errorf("error fetching assessments: %w", err)
	}

	dtos := make([]dto.AssessmentSummaryDTO, 0, len(assessments))
	for _, a := range assessments {
		submitted := 0
		for _, p := range a.Participants {
			if p.HasSubmitted {
				submitted++
			}
		}
		reportStatus := model.ReportStatusNotStarted
		if a.FinalReport != nil {
			reportStatus = a.FinalReport.Status
		}
		dtos = append(dtos, dto.AssessmentSummaryDTO{
			ID:             a.ID,
			TeamID:         a.TeamID,
			TeamName:       a.Team.Name,
			Deadline:       a.Deadline,
			LaunchedAt:     a.LaunchedAt,
			TotalInvited:   len(a.Participants),
			TotalSubmitted: submitted,
			ReportStatus:   reportStatus,
		})
	}
	return dtos, nil
}
