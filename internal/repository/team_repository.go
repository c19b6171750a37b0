package repository

import (
	"github.com/orghealth/ascent/internal/model"
	"gorm.io/gorm"
)

type TeamRepository interface {
	Create(team *model.Team) error
	FindByIDForAdmin(id, adminID uint) (*model.Team, error)
	FindByIDWithMembers(id, adminID uint) (*model.Team, error)
	FindAllWithMemberCount(adminID uint) ([]struct {
		model.Team
		MemberCount int
	}, error)
	Update(team *model.Team) error
	Delete(id uint) error
}

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(team *model.Team) error {
	return r.db.Create(team).Error
}

func (r *teamRepository) FindByIDForAdmin(id, adminID uint) (*model.Team, error) {
	var team model.Team
	err := r.db.Where("id = ? AND admin_id = ?", id, adminID).First(&team).Error
	return &team, err
}

func (r *teamRepository) FindByIDWithMembers(id, adminID uint) (*model.Team, error) {
	var team model.Team
	err := r.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("team_members.created_at ASC")
	}).Where("id = ? AND admin_id = ?", id, adminID).First(&team).Error
	return &team, err
}

func (r *teamRepository) FindAllWithMemberCount(adminID uint) ([]struct {
	model.Team
	MemberCount int
}, error) {
	var results []struct {
		model.Team
		MemberCount int
	}
	err := r.db.Model(&model.Team{}).
		Select("teams.*, (SELECT COUNT(*) FROM team_members WHERE team_members.team_id = teams.id) as member_count").
		Where("teams.admin_id = ?", adminID).
		Order("teams.created_at DESC").
		Scan(&results).Error
	return results, err
}

func (r *teamRepository) Update(team *model.Team) error {
	return r.db.Save(team).Error
}

func (r *teamRepository) Delete(id uint) error {
	// Assessments, participants, answers and reports follow via FK cascade.
	return r.db.Delete(&model.Team{}, id).Error
}
