package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const downloadLinkTTL = 5 * time.Minute

var (
	ErrReportNotFound = errors.New("report not found")
	ErrReportNotPaid  = errors.New("report has not been purchased")
	ErrReportNotReady = errors.New("report is not ready for download")
)

// ReportService drives the async render pipeline: kick off a render after
// payment, poll the render job, finalize the PDF into object storage, and
// serve time-limited download links.
type ReportService interface {
	Kickoff(ctx context.Context, assessmentID uint) error
	PollStatus(ctx context.Context, assessmentID, adminID uint) (*dto.ReportStatusDTO, error)
	Download(ctx context.Context, assessmentID, adminID uint) (*dto.ReportDownloadDTO, error)
	ListReports(adminID uint) ([]dto.ReportSummaryDTO, error)
}

type reportService struct {
	assessmentRepo repository.AssessmentRepository
	reportRepo     repository.FinalReportRepository
	builder        ReportBuilder
	renderer       DocRaptorClient
	storage        StorageService

	// finalizeMu serializes completion handling per assessment so two
	// concurrent pollers cannot both upload the finished PDF.
	finalizeMu sync.Map // assessmentID -> *sync.Mutex
}

func NewReportService(
	assessmentRepo repository.AssessmentRepository,
	reportRepo repository.FinalReportRepository,
	builder ReportBuilder,
	renderer DocRaptorClient,
	storage StorageService,
) ReportService {
	return &reportService{
		assessmentRepo: assessmentRepo,
		reportRepo:     reportRepo,
		builder:        builder,
		renderer:       renderer,
		storage:        storage,
	}
}

// Kickoff builds the report HTML and submits the async render job. It is a
// no-op when the PDF already exists or a render is already in flight, so
// calling it from both payment confirmation and the webhook is safe.
func (s *reportService) Kickoff(ctx context.Context, assessmentID uint) error {
	report, err := s.reportRepo.GetOrCreate(assessmentID)
	if err != nil {
		return fmt.Errorf("failed to load final report: %w", err)
	}
	if report.Ready() {
		return nil
	}
	if report.RenderJobID != "" && report.Status != model.ReportStatusFailed {
		return nil
	}

	assessment, err := s.assessmentRepo.FindByID(assessmentID)
	if err != nil {
		return fmt.Errorf("failed to load assessment %d: %w", assessmentID, err)
	}

	html, err := s.builder.BuildHTML(assessment)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	name := fmt.Sprintf("%s-%s.pdf", slugify(assessment.Team.Name), assessment.Deadline.Format("2006-01"))
	jobID, err := s.renderer.CreateAsync(ctx, name, html)
	if err != nil {
		report.Status = model.ReportStatusFailed
		report.FailureMessage = err.Error()
		if updateErr := s.reportRepo.Update(report); updateErr != nil {
			log.Error().Err(updateErr).Uint("assessment_id", assessmentID).Msg("Failed to persist render failure")
		}
		return fmt.Errorf("failed to submit render job: %w", err)
	}

	report.RenderJobID = jobID
	report.Status = model.ReportStatusQueued
	report.FailureMessage = ""
	if err := s.reportRepo.Update(report); err != nil {
		return fmt.Errorf("failed to persist render job id: %w", err)
	}

	log.Info().Uint("assessment_id", assessmentID).Str("job_id", jobID).Msg("Report render queued")
	return nil
}

// PollStatus reports render progress for the owning admin. On completion it
// downloads the PDF and persists it to object storage exactly once.
func (s *reportService) PollStatus(ctx context.Context, assessmentID, adminID uint) (*dto.ReportStatusDTO, error) {
	if _, err := s.assessmentRepo.FindByIDForAdmin(assessmentID, adminID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}

	report, err := s.reportRepo.FindByAssessmentID(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.ReportStatusDTO{Status: model.ReportStatusNotStarted}, nil
		}
		return nil, fmt.Errorf("failed to load final report: %w", err)
	}

	if report.Ready() {
		return &dto.ReportStatusDTO{Status: model.ReportStatusCompleted}, nil
	}
	if report.RenderJobID == "" {
		return &dto.ReportStatusDTO{Status: report.Status, Message: report.FailureMessage}, nil
	}

	status, err := s.renderer.Status(ctx, report.RenderJobID)
	if err != nil {
		if errors.Is(err, ErrRenderTransient) {
			// Keep the client polling; the job is still alive server-side.
			return &dto.ReportStatusDTO{Status: model.ReportStatusRendering}, nil
		}
		return nil, fmt.Errorf("failed to query render status: %w", err)
	}

	switch status.Status {
	case "queued":
		return &dto.ReportStatusDTO{Status: model.ReportStatusQueued}, nil
	case "working":
		if report.Status != model.ReportStatusRendering {
			report.Status = model.ReportStatusRendering
			if err := s.reportRepo.Update(report); err != nil {
				log.Warn().Err(err).Uint("assessment_id", assessmentID).Msg("Failed to persist rendering status")
			}
		}
		return &dto.ReportStatusDTO{Status: model.ReportStatusRendering}, nil
	case "completed":
		if err := s.finalize(ctx, assessmentID, status.DownloadURL); err != nil {
			return nil, err
		}
		return &dto.ReportStatusDTO{Status: model.ReportStatusCompleted}, nil
	case "failed":
		report.Status = model.ReportStatusFailed
		report.FailureMessage = status.Message
		if err := s.reportRepo.Update(report); err != nil {
			log.Warn().Err(err).Uint("assessment_id", assessmentID).Msg("Failed to persist render failure")
		}
		return &dto.ReportStatusDTO{Status: model.ReportStatusFailed, Message: status.Message}, nil
	default:
		return &dto.ReportStatusDTO{Status: model.ReportStatusRendering}, nil
	}
}

// finalize downloads the rendered PDF and stores it. The per-assessment mutex
// plus the Ready re-check under the lock guarantee a single upload even when
// multiple pollers observe completion simultaneously.
func (s *reportService) finalize(ctx context.Context, assessmentID uint, downloadURL string) error {
	muAny, _ := s.finalizeMu.LoadOrStore(assessmentID, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	report, err := s.reportRepo.FindByAssessmentID(assessmentID)
	if err != nil {
		return fmt.Errorf("failed to load final report: %w", err)
	}
	if report.Ready() {
		return nil
	}

	assessment, err := s.assessmentRepo.FindByID(assessmentID)
	if err != nil {
		return fmt.Errorf("failed to load assessment %d: %w", assessmentID, err)
	}

	pdf, err := s.renderer.Download(ctx, downloadURL)
	if err != nil {
		return fmt.Errorf("failed to download rendered report: %w", err)
	}

	key := fmt.Sprintf("reports/%d/%s-%s.pdf", assessmentID, slugify(assessment.Team.Name), assessment.Deadline.Format("2006-01"))
	size, err := s.storage.UploadBytes(ctx, key, pdf, "application/pdf")
	if err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}

	report.S3Key = key
	report.SizeBytes = &size
	report.Status = model.ReportStatusCompleted
	report.FailureMessage = ""
	if err := s.reportRepo.Update(report); err != nil {
		return fmt.Errorf("failed to persist stored report: %w", err)
	}

	log.Info().Uint("assessment_id", assessmentID).Str("key", key).Int64("size", size).Msg("Report stored")
	return nil
}

func (s *reportService) Download(ctx context.Context, assessmentID, adminID uint) (*dto.ReportDownloadDTO, error) {
	assessment, err := s.assessmentRepo.FindByIDForAdmin(assessmentID, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}

	report, err := s.reportRepo.FindByAssessmentID(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotReady
		}
		return nil, fmt.Errorf("failed to load final report: %w", err)
	}
	if report.PaidAt == nil {
		return nil, ErrReportNotPaid
	}
	if !report.Ready() {
		return nil, ErrReportNotReady
	}

	filename := fmt.Sprintf("%s-team-report.pdf", slugify(assessment.Team.Name))
	url, err := s.storage.PresignGet(ctx, report.S3Key, filename, downloadLinkTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign report download: %w", err)
	}

	return &dto.ReportDownloadDTO{URL: url, ExpiresAt: time.Now().Add(downloadLinkTTL)}, nil
}

func (s *reportService) ListReports(adminID uint) ([]dto.ReportSummaryDTO, error) {
	reports, err := s.reportRepo.FindAllReadyByAdmin(adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	summaries := make([]dto.ReportSummaryDTO, 0, len(reports))
	for _, report := range reports {
		assessment, err := s.assessmentRepo.FindByID(report.AssessmentID)
		if err != nil {
			log.Warn().Err(err).Uint("report_id", report.ID).Msg("Skipping report with missing assessment")
			continue
		}
		summaries = append(summaries, dto.ReportSummaryDTO{
			ID:           report.ID,
			AssessmentID: report.AssessmentID,
			TeamName:     assessment.Team.Name,
			Deadline:     assessment.Deadline,
			SizeBytes:    report.SizeBytes,
			CreatedAt:    report.CreatedAt,
		})
	}
	return summaries, nil
}

// slugify lowercases a name and collapses non-alphanumerics to hyphens for
// use in storage keys and filenames.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return "team"
	}
	return slug
}
