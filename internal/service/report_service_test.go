package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"gorm.io/gorm"
)

type fakeRenderer struct {
	createCalls int32
	status      *DocRaptorStatus
	statusErr   error
	pdf         []byte
}

func (r *fakeRenderer) CreateAsync(ctx context.Context, name, htmlContent string) (string, error) {
	atomic.AddInt32(&r.createCalls, 1)
	return "job-1", nil
}

func (r *fakeRenderer) Status(ctx context.Context, statusID string) (*DocRaptorStatus, error) {
	if r.statusErr != nil {
		return nil, r.statusErr
	}
	return r.status, nil
}

func (r *fakeRenderer) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	return r.pdf, nil
}

type fakeStorage struct {
	uploads int32
	lastKey string
	mu      sync.Mutex
}

func (s *fakeStorage) UploadBytes(ctx context.Context, key string, data []byte, contentType string) (int64, error) {
	atomic.AddInt32(&s.uploads, 1)
	s.mu.Lock()
	s.lastKey = key
	s.mu.Unlock()
	return int64(len(data)), nil
}

func (s *fakeStorage) PresignGet(ctx context.Context, key, prettyFilename string, expires time.Duration) (string, error) {
	return "https://bucket.example.com/" + key + "?signed", nil
}

type fakeBuilder struct{}

func (b *fakeBuilder) BuildHTML(assessment *model.Assessment) (string, error) {
	return "<html><body>report</body></html>", nil
}

func newReportFixture(t *testing.T, renderer *fakeRenderer, storage *fakeStorage) (*gorm.DB, ReportService, model.User, model.Assessment) {
	t.Helper()
	db := newTestDB(t)
	admin, team, _ := seedAdminAndTeam(t, db, 2)

	assessment := model.Assessment{TeamID: team.ID, Deadline: mustDate(t, "2026-10-01")}
	if err := db.Create(&assessment).Error; err != nil {
		t.Fatalf("create assessment: %v", err)
	}

	svc := NewReportService(
		repository.NewAssessmentRepository(db),
		repository.NewFinalReportRepository(db),
		&fakeBuilder{},
		renderer,
		storage,
	)
	return db, svc, admin, assessment
}

func TestKickoffQueuesRenderOnce(t *testing.T) {
	renderer := &fakeRenderer{}
	db, svc, _, assessment := newReportFixture(t, renderer, &fakeStorage{})
	ctx := context.Background()

	if err := svc.Kickoff(ctx, assessment.ID); err != nil {
		t.Fatalf("Kickoff: %v", err)
	}

	var report model.FinalReport
	if err := db.Where("assessment_id = ?", assessment.ID).First(&report).Error; err != nil {
		t.Fatalf("load report: %v", err)
	}
	if report.RenderJobID != "job-1" {
		t.Errorf("render job id = %q", report.RenderJobID)
	}
	if report.Status != model.ReportStatusQueued {
		t.Errorf("status = %q, want queued", report.Status)
	}

	// A second kickoff sees the in-flight job and submits nothing.
	if err := svc.Kickoff(ctx, assessment.ID); err != nil {
		t.Fatalf("second Kickoff: %v", err)
	}
	if n := atomic.LoadInt32(&renderer.createCalls); n != 1 {
		t.Errorf("render jobs submitted = %d, want 1", n)
	}
}

func TestKickoffRetriesAfterFailure(t *testing.T) {
	renderer := &fakeRenderer{}
	db, svc, _, assessment := newReportFixture(t, renderer, &fakeStorage{})
	ctx := context.Background()

	report := model.FinalReport{
		AssessmentID: assessment.ID,
		RenderJobID:  "job-0",
		Status:       model.ReportStatusFailed,
	}
	if err := db.Create(&report).Error; err != nil {
		t.Fatalf("seed failed report: %v", err)
	}

	if err := svc.Kickoff(ctx, assessment.ID); err != nil {
		t.Fatalf("Kickoff: %v", err)
	}
	if n := atomic.LoadInt32(&renderer.createCalls); n != 1 {
		t.Errorf("render jobs submitted = %d, want 1", n)
	}
}

func TestConcurrentPollersUploadOnce(t *testing.T) {
	renderer := &fakeRenderer{
		status: &DocRaptorStatus{Status: "completed", DownloadURL: "https://docraptor.example.com/job-1.pdf"},
		pdf:    []byte("%PDF-1.7 fake"),
	}
	storage := &fakeStorage{}
	db, svc, admin, assessment := newReportFixture(t, renderer, storage)
	ctx := context.Background()

	now := time.Now()
	report := model.FinalReport{
		AssessmentID: assessment.ID,
		RenderJobID:  "job-1",
		Status:       model.ReportStatusRendering,
		PaidAt:       &now,
	}
	if err := db.Create(&report).Error; err != nil {
		t.Fatalf("seed report: %v", err)
	}

	const pollers = 8
	var wg sync.WaitGroup
	errs := make([]error, pollers)
	for i := 0; i < pollers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status, err := svc.PollStatus(ctx, assessment.ID, admin.ID)
			if err == nil && status.Status != model.ReportStatusCompleted {
				err = errors.New("status = " + status.Status)
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("poller %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&storage.uploads); n != 1 {
		t.Errorf("uploads = %d, want exactly 1", n)
	}

	var stored model.FinalReport
	if err := db.Where("assessment_id = ?", assessment.ID).First(&stored).Error; err != nil {
		t.Fatalf("load report: %v", err)
	}
	if !stored.Ready() {
		t.Error("report not marked ready")
	}
	storage.mu.Lock()
	key := storage.lastKey
	storage.mu.Unlock()
	if key != stored.S3Key {
		t.Errorf("stored key %q != uploaded key %q", stored.S3Key, key)
	}
}

func TestPollStatusTransientRendererError(t *testing.T) {
	renderer := &fakeRenderer{statusErr: ErrRenderTransient}
	db, svc, admin, assessment := newReportFixture(t, renderer, &fakeStorage{})

	report := model.FinalReport{
		AssessmentID: assessment.ID,
		RenderJobID:  "job-1",
		Status:       model.ReportStatusQueued,
	}
	if err := db.Create(&report).Error; err != nil {
		t.Fatalf("seed report: %v", err)
	}

	status, err := svc.PollStatus(context.Background(), assessment.ID, admin.ID)
	if err != nil {
		t.Fatalf("PollStatus: %v", err)
	}
	if status.Status != model.ReportStatusRendering {
		t.Errorf("status = %q, want rendering so the client keeps polling", status.Status)
	}
}

func TestPollStatusForeignAdmin(t *testing.T) {
	db, svc, _, assessment := newReportFixture(t, &fakeRenderer{}, &fakeStorage{})

	other := model.User{Username: "other-" + t.Name(), Email: "other@example.com", PasswordHash: "x"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed other admin: %v", err)
	}

	if _, err := svc.PollStatus(context.Background(), assessment.ID, other.ID); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("err = %v, want ErrReportNotFound", err)
	}
}

func TestDownloadGating(t *testing.T) {
	db, svc, admin, assessment := newReportFixture(t, &fakeRenderer{}, &fakeStorage{})
	ctx := context.Background()

	// No report row yet.
	if _, err := svc.Download(ctx, assessment.ID, admin.ID); !errors.Is(err, ErrReportNotReady) {
		t.Errorf("err = %v, want ErrReportNotReady", err)
	}

	report := model.FinalReport{AssessmentID: assessment.ID, Status: model.ReportStatusRendering}
	if err := db.Create(&report).Error; err != nil {
		t.Fatalf("seed report: %v", err)
	}

	// Unpaid report.
	if _, err := svc.Download(ctx, assessment.ID, admin.ID); !errors.Is(err, ErrReportNotPaid) {
		t.Errorf("err = %v, want ErrReportNotPaid", err)
	}

	now := time.Now()
	report.PaidAt = &now
	if err := db.Save(&report).Error; err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	// Paid but still rendering.
	if _, err := svc.Download(ctx, assessment.ID, admin.ID); !errors.Is(err, ErrReportNotReady) {
		t.Errorf("err = %v, want ErrReportNotReady", err)
	}

	report.S3Key = "reports/1/product-2026-10.pdf"
	report.Status = model.ReportStatusCompleted
	if err := db.Save(&report).Error; err != nil {
		t.Fatalf("mark ready: %v", err)
	}

	dl, err := svc.Download(ctx, assessment.ID, admin.ID)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if dl.URL == "" {
		t.Error("empty download URL")
	}
	if !dl.ExpiresAt.After(time.Now()) {
		t.Error("expiry not in the future")
	}
}
