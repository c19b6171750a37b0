package repository

import (
	"github.com/orghealth/ascent/internal/model"
	"gorm.io/gorm"
)

type ParticipantRepository interface {
	FindByToken(token string) (*model.Participant, error)
	FindByIDForAdmin(id, adminID uint) (*model.Participant, error)
	Update(participant *model.Participant) error
	CountByAssessment(assessmentID uint) (int64, error)
	CountSubmittedByAssessment(assessmentID uint) (int64, error)
}

type participantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) FindByToken(token string) (*model.Participant, error) {
	var participant model.Participant
	err := r.db.Preload("Answers").
		Where("access_token = ?", token).
		First(&participant).Error
	return &participant, err
}

func (r *participantRepository) FindByIDForAdmin(id, adminID uint) (*model.Participant, error) {
	var participant model.Participant
	err := r.db.Joins("JOIN assessments ON assessments.id = participants.assessment_id").
		Joins("JOIN teams ON teams.id = assessments.team_id").
		Where("participants.id = ? AND teams.admin_id = ?", id, adminID).
		First(&participant).Error
	return &participant, err
}

func (r *participantRepository) Update(participant *model.Participant) error {
	return r.db.Save(participant).Error
}

func (r *participantRepository) CountByAssessment(assessmentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Participant{}).
		Where("assessment_id = ?", assessmentID).
		Count(&count).Error
	return count, err
}

func (r *participantRepository) CountSubmittedByAssessment(assessmentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Participant{}).
		Where("assessment_id = ? AND has_submitted = ?", assessmentID, true).
		Count(&count).Error
	return count, err
}
