package repository

import (
	"time"

	"github.com/orghealth/ascent/internal/model"
	"gorm.io/gorm"
)

type AssessmentRepository interface {
	Create(assessment *model.Assessment) error
	FindByID(id uint) (*model.Assessment, error)
	FindByIDForAdmin(id, adminID uint) (*model.Assessment, error)
	FindByIDWithParticipants(id, adminID uint) (*model.Assessment, error)
	FindByTeamAndDeadline(teamID uint, deadline time.Time) (*model.Assessment, error)
	FindAllByAdmin(adminID uint) ([]model.Assessment, error)
	Delete(id uint) error
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(assessment *model.Assessment) error {
	// Creates participants in the same insert when populated.
	return r.db.Create(assessment).Error
}

func (r *assessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.db.Preload("Team").First(&assessment, id).Error
	return &assessment, err
}

func (r *assessmentRepository) FindByIDForAdmin(id, adminID uint) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.db.Preload("Team").
		Joins("JOIN teams ON teams.id = assessments.team_id").
		Where("assessments.id = ? AND teams.admin_id = ?", id, adminID).
		First(&assessment).Error
	return &assessment, err
}

func (r *assessmentRepository) FindByIDWithParticipants(id, adminID uint) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.db.Preload("Team").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("participants.member_name ASC")
		}).
		Preload("FinalReport").
		Joins("JOIN teams ON teams.id = assessments.team_id").
		Where("assessments.id = ? AND teams.admin_id = ?", id, adminID).
		First(&assessment).Error
	return &assessment, err
}

func (r *assessmentRepository) FindByTeamAndDeadline(teamID uint, deadline time.Time) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.db.Where("team_id = ? AND deadline = ?", teamID, deadline).First(&assessment).Error
	return &assessment, err
}

func (r *assessmentRepository) FindAllByAdmin(adminID uint) ([]model.Assessment, error) {
	var assessments []model.Assessment
	err := r.db.Preload("Team").
		Preload("Participants").
		Preload("FinalReport").
		Joins("JOIN teams ON teams.id = assessments.team_id").
		Where("teams.admin_id = ?", adminID).
		Order("assessments.created_at DESC").
		Find(&assessments).Error
	return assessments, err
}

func (r *assessmentRepository) Delete(id uint) error {
	return r.db.Delete(&model.Assessment{}, id).Error
}
