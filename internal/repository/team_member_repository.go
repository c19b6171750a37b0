package repository

import (
	"github.com/orghealth/ascent/internal/model"
	"gorm.io/gorm"
)

type TeamMemberRepository interface {
	Create(member *model.TeamMember) error
	FindByIDForAdmin(id, adminID uint) (*model.TeamMember, error)
	FindAllByTeam(teamID uint) ([]model.TeamMember, error)
	Update(member *model.TeamMember) error
	Delete(id uint) error
}

type teamMemberRepository struct {
	db *gorm.DB
}

func NewTeamMemberRepository(db *gorm.DB) TeamMemberRepository {
	return &teamMemberRepository{db: db}
}

func (r *teamMemberRepository) Create(member *model.TeamMember) error {
	return r.db.Create(member).Error
}

func (r *teamMemberRepository) FindByIDForAdmin(id, adminID uint) (*model.TeamMember, error) {
	var member model.TeamMember
	err := r.db.Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("team_members.id = ? AND teams.admin_id = ?", id, adminID).
		First(&member).Error
	return &member, err
}

func (r *teamMemberRepository) FindAllByTeam(teamID uint) ([]model.TeamMember, error) {
	var members []model.TeamMember
	err := r.db.Where("team_id = ?", teamID).Order("created_at ASC").Find(&members).Error
	return members, err
}

func (r *teamMemberRepository) Update(member *model.TeamMember) error {
	return r.db.Save(member).Error
}

func (r *teamMemberRepository) Delete(id uint) error {
	// Historical participants keep their snapshot; the FK nulls out.
	return r.db.Delete(&model.TeamMember{}, id).Error
}
