package repository

import (
	"github.com/orghealth/ascent/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	FindAllOrdered() ([]model.Question, error)
	FindByPeakCode(peakCode string) ([]model.Question, error)
	FindAllPeaks() ([]model.Peak, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindAllOrdered() ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Preload("Peak").
		Joins("JOIN peaks ON peaks.id = questions.peak_id").
		Order("peaks.code ASC, questions.display_order ASC").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindByPeakCode(peakCode string) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Joins("JOIN peaks ON peaks.id = questions.peak_id").
		Where("peaks.code = ?", peakCode).
		Order("questions.display_order ASC").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindAllPeaks() ([]model.Peak, error) {
	var peaks []model.Peak
	err := r.db.Order("code ASC").Find(&peaks).Error
	return peaks, err
}
