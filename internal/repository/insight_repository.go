package repository

import (
	"github.com/orghealth/ascent/internal/model"
	"gorm.io/gorm"
)

// InsightRepository reads the canned narrative reference tables. Lookups that
// miss return gorm.ErrRecordNotFound; callers substitute placeholder text.
type InsightRepository interface {
	FindInsight(peakCode, rangeLabel string) (*model.PeakInsight, error)
	FindAction(peakCode, rangeLabel string) (*model.PeakAction, error)
	FindSummary(highPeak, lowPeak string) (*model.ResultsSummary, error)
	FindUniformSummary(rangeLabel string) (*model.UniformRangeSummary, error)
}

type insightRepository struct {
	db *gorm.DB
}

func NewInsightRepository(db *gorm.DB) InsightRepository {
	return &insightRepository{db: db}
}

func (r *insightRepository) FindInsight(peakCode, rangeLabel string) (*model.PeakInsight, error) {
	var insight model.PeakInsight
	err := r.db.Where("peak_code = ? AND range_label = ?", peakCode, rangeLabel).First(&insight).Error
	return &insight, err
}

func (r *insightRepository) FindAction(peakCode, rangeLabel string) (*model.PeakAction, error) {
	var action model.PeakAction
	err := r.db.Where("peak_code = ? AND range_label = ?", peakCode, rangeLabel).First(&action).Error
	return &action, err
}

func (r *insightRepository) FindSummary(highPeak, lowPeak string) (*model.ResultsSummary, error) {
	var summary model.ResultsSummary
	err := r.db.Where("high_peak = ? AND low_peak = ?", highPeak, lowPeak).First(&summary).Error
	return &summary, err
}

func (r *insightRepository) FindUniformSummary(rangeLabel string) (*model.UniformRangeSummary, error) {
	var summary model.UniformRangeSummary
	err := r.db.Where("range_label = ?", rangeLabel).First(&summary).Error
	return &summary, err
}
