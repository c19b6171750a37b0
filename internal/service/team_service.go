package service

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"github.com/rs/zerolog/log"
)

// TeamService covers admin-facing team and member management. Every lookup is
// scoped to the requesting admin; a non-owned id behaves like a missing one.
type TeamService interface {
	CreateTeam(adminID uint, req dto.TeamCreateDTO) (*dto.TeamResponseDTO, error)
	ListTeams(adminID uint) ([]dto.TeamSummaryDTO, error)
	GetTeam(adminID, teamID uint) (*dto.TeamResponseDTO, error)
	RenameTeam(adminID, teamID uint, req dto.TeamRenameDTO) (*dto.TeamResponseDTO, error)
	DeleteTeam(adminID, teamID uint) error
	AddMember(adminID, teamID uint, req dto.TeamMemberDTO) (*dto.TeamMemberResponseDTO, error)
	UpdateMember(adminID, memberID uint, req dto.TeamMemberDTO) (*dto.TeamMemberResponseDTO, error)
	DeleteMember(adminID, memberID uint) error
}

type teamService struct {
	teamRepo   repository.TeamRepository
	memberRepo repository.TeamMemberRepository
}

func NewTeamService(teamRepo repository.TeamRepository, memberRepo repository.TeamMemberRepository) TeamService {
	return &teamService{teamRepo: teamRepo, memberRepo: memberRepo}
}

func (s *teamService) CreateTeam(adminID uint, req dto.TeamCreateDTO) (*dto.TeamResponseDTO, error) {
	team := model.Team{
		Name:    req.Name,
		AdminID: adminID,
	}
	if err := s.teamRepo.Create(&team); err != nil {
		log.Error().Err(err).Uint("adminID", adminID).Msg("CreateTeam: repository error")
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	var resp dto.TeamResponseDTO
	if err := copier.Copy(&resp, &team); err != nil {
		return nil, fmt.Errorf("error preparing team response: %w", err)
	}
	return &resp, nil
}

func (s *teamService) ListTeams(adminID uint) ([]dto.TeamSummaryDTO, error) {
	teamsWithCount, err := s.teamRepo.FindAllWithMemberCount(adminID)
	if err != nil {
		log.Error().Err(err).Uint("adminID", adminID).Msg("ListTeams: repository error")
		return nil, fmt.Errorf("error fetching teams: %w", err)
	}

	dtos := make([]dto.TeamSummaryDTO, 0, len(teamsWithCount))
	for _, twc := range teamsWithCount {
		dtos = append(dtos, dto.TeamSummaryDTO{
			ID:          twc.Team.ID,
			Name:        twc.Team.Name,
			MemberCount: twc.MemberCount,
			CreatedAt:   twc.Team.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *teamService) GetTeam(adminID, teamID uint) (*dto.TeamResponseDTO, error) {
	team, err := s.teamRepo.FindByIDWithMembers(teamID, adminID)
	if err != nil {
		return nil, fmt.Errorf("team not found with ID %d: %w", teamID, err)
	}

	var resp dto.TeamResponseDTO
	if err := copier.Copy(&resp, team); err != nil {
		return nil, fmt.Errorf("error preparing team response: %w", err)
	}
	return &resp, nil
}

func (s *teamService) RenameTeam(adminID, teamID uint, req dto.TeamRenameDTO) (*dto.TeamResponseDTO, error) {
	team, err := s.teamRepo.FindByIDForAdmin(teamID, adminID)
	if err != nil {
		return nil, fmt.Errorf("team not found with ID %d: %w", teamID, err)
	}
	team.Name = req.Name
	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to rename team: %w", err)
	}

	var resp dto.TeamResponseDTO
	if err := copier.Copy(&resp, team); err != nil {
		return nil, fmt.Errorf("error preparing team response: %w", err)
	}
	return &resp, nil
}

func (s *teamService) DeleteTeam(adminID, teamID uint) error {
	team, err := s.teamRepo.FindByIDForAdmin(teamID, adminID)
	if err != nil {
		return fmt.Errorf("team not found with ID %d: %w", teamID, err)
	}
	if err := s.teamRepo.Delete(team.ID); err != nil {
		log.Error().Err(err).Uint("teamID", teamID).Msg("DeleteTeam: repository error")
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

func (s *teamService) AddMember(adminID, teamID uint, req dto.TeamMemberDTO) (*dto.TeamMemberResponseDTO, error) {
	team, err := s.teamRepo.FindByIDForAdmin(teamID, adminID)
	if err != nil {
		return nil, fmt.Errorf("team not found with ID %d: %w", teamID, err)
	}

	member := model.TeamMember{
		TeamID: team.ID,
		Name:   req.Name,
		Email:  req.Email,
	}
	if err := s.memberRepo.Create(&member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	var resp dto.TeamMemberResponseDTO
	if err := copier.Copy(&resp, &member); err != nil {
		return nil, fmt.Errorf("error preparing member response: %w", err)
	}
	return &resp, nil
}

func (s *teamService) UpdateMember(adminID, memberID uint, req dto.TeamMemberDTO) (*dto.TeamMemberResponseDTO, error) {
	member, err := s.memberRepo.FindByIDForAdmin(memberID, adminID)
	if err != nil {
		return nil, fmt.Errorf("member not found with ID %d: %w", memberID, err)
	}
	member.Name = req.Name
	member.Email = req.Email
	if err := s.memberRepo.Update(member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	var resp dto.TeamMemberResponseDTO
	if err := copier.Copy(&resp, member); err != nil {
		return nil, fmt.Errorf("error preparing member response: %w", err)
	}
	return &resp, nil
}

func (s *teamService) DeleteMember(adminID, memberID uint) error {
	member, err := s.memberRepo.FindByIDForAdmin(memberID, adminID)
	if err != nil {
		return fmt.Errorf("member not found with ID %d: %w", memberID, err)
	}
	// Participant snapshots from past launches survive this.
	if err := s.memberRepo.Delete(member.ID); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}
