package repository

import (
	"errors"

	"github.com/orghealth/ascent/internal/model"
	"gorm.io/gorm"
)

type FinalReportRepository interface {
	GetOrCreate(assessmentID uint) (*model.FinalReport, error)
	FindByAssessmentID(assessmentID uint) (*model.FinalReport, error)
	FindByIDForAdmin(id, adminID uint) (*model.FinalReport, error)
	FindAllReadyByAdmin(adminID uint) ([]model.FinalReport, error)
	Update(report *model.FinalReport) error
}

type finalReportRepository struct {
	db *gorm.DB
}

func NewFinalReportRepository(db *gorm.DB) FinalReportRepository {
	return &finalReportRepository{db: db}
}

func (r *finalReportRepository) GetOrCreate(assessmentID uint) (*model.FinalReport, error) {
	var report model.FinalReport
	err := r.db.Where("assessment_id = ?", assessmentID).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		report = model.FinalReport{
			AssessmentID: assessmentID,
			Status:       model.ReportStatusNotStarted,
		}
		err = r.db.Create(&report).Error
	}
	return &report, err
}

func (r *finalReportRepository) FindByAssessmentID(assessmentID uint) (*model.FinalReport, error) {
	var report model.FinalReport
	err := r.db.Where("assessment_id = ?", assessmentID).First(&report).Error
	return &report, err
}

func (r *finalReportRepository) FindByIDForAdmin(id, adminID uint) (*model.FinalReport, error) {
	var report model.FinalReport
	err := r.db.Joins("JOIN assessments ON assessments.id = final_reports.assessment_id").
		Joins("JOIN teams ON teams.id = assessments.team_id").
		Where("final_reports.id = ? AND teams.admin_id = ?", id, adminID).
		First(&report).Error
	return &report, err
}

func (r *finalReportRepository) FindAllReadyByAdmin(adminID uint) ([]model.FinalReport, error) {
	var reports []model.FinalReport
	err := r.db.Joins("JOIN assessments ON assessments.id = final_reports.assessment_id").
		Joins("JOIN teams ON teams.id = assessments.team_id").
		Where("teams.admin_id = ? AND final_reports.s3_key <> ''", adminID).
		Order("final_reports.created_at DESC").
		Find(&reports).Error
	return reports, err
}

func (r *finalReportRepository) Update(report *model.FinalReport) error {
	return r.db.Save(report).Error
}
