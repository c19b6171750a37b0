package repository

import (
	"github.com/orghealth/ascent/internal/model"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	CreateBatch(answers []model.Answer) error
	CountsByPeak(assessmentID uint, peakCode string) ([4]int64, error)
	CountsByQuestion(assessmentID, questionID uint) ([4]int64, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) CreateBatch(answers []model.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.Create(&answers).Error
}

type valueCount struct {
	Value int
	Cnt   int64
}

// CountsByPeak aggregates answer counts per rating bucket (0..3) across all
// questions of one peak for one assessment.
func (r *answerRepository) CountsByPeak(assessmentID uint, peakCode string) ([4]int64, error) {
	var rows []valueCount
	err := r.db.Model(&model.Answer{}).
		Select("answers.value as value, COUNT(*) as cnt").
		Joins("JOIN participants ON participants.id = answers.participant_id").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Joins("JOIN peaks ON peaks.id = questions.peak_id").
		Where("participants.assessment_id = ? AND peaks.code = ?", assessmentID, peakCode).
		Group("answers.value").
		Scan(&rows).Error

	return bucketCounts(rows), err
}

// CountsByQuestion aggregates answer counts per rating bucket (0..3) for a
// single question within one assessment.
func (r *answerRepository) CountsByQuestion(assessmentID, questionID uint) ([4]int64, error) {
	var rows []valueCount
	err := r.db.Model(&model.Answer{}).
		Select("answers.value as value, COUNT(*) as cnt").
		Joins("JOIN participants ON participants.id = answers.participant_id").
		Where("participants.assessment_id = ? AND answers.question_id = ?", assessmentID, questionID).
		Group("answers.value").
		Scan(&rows).Error

	return bucketCounts(rows), err
}

func bucketCounts(rows []valueCount) [4]int64 {
	var counts [4]int64
	for _, row := range rows {
		if row.Value >= 0 && row.Value <= 3 {
			counts[row.Value] = row.Cnt
		}
	}
	return counts
}
