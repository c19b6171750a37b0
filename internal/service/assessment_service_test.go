package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"gorm.io/gorm"
)

func newAssessmentFixture(t *testing.T, memberCount int) (*gorm.DB, AssessmentService, model.User, model.Team, *memDraftStore, *fakeMailer) {
	t.Helper()
	db := newTestDB(t)
	admin, team, _ := seedAdminAndTeam(t, db, memberCount)

	drafts := newMemDraftStore()
	mailer := &fakeMailer{}
	svc := NewAssessmentService(
		drafts,
		repository.NewTeamRepository(db),
		repository.NewTeamMemberRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewParticipantRepository(db),
		mailer,
		db,
	)
	return db, svc, admin, team, drafts, mailer
}

func futureDeadline() string {
	return time.Now().AddDate(0, 1, 0).Format("2006-01-02")
}

func TestCreateDraft(t *testing.T) {
	_, svc, admin, team, drafts, _ := newAssessmentFixture(t, 3)

	resp, err := svc.CreateDraft(context.Background(), admin.ID, dto.AssessmentDraftDTO{
		TeamID:   team.ID,
		Deadline: futureDeadline(),
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if resp.DraftToken == "" {
		t.Error("empty draft token")
	}
	if len(resp.Members) != 3 {
		t.Errorf("members = %d, want 3", len(resp.Members))
	}
	if _, err := drafts.Get(context.Background(), resp.DraftToken); err != nil {
		t.Errorf("draft not staged: %v", err)
	}
}

func TestCreateDraftRejectsPastDeadline(t *testing.T) {
	_, svc, admin, team, _, _ := newAssessmentFixture(t, 2)

	_, err := svc.CreateDraft(context.Background(), admin.ID, dto.AssessmentDraftDTO{
		TeamID:   team.ID,
		Deadline: "2020-01-01",
	})
	if !errors.Is(err, ErrDeadlineInPast) {
		t.Errorf("err = %v, want ErrDeadlineInPast", err)
	}
}

func TestCreateDraftRejectsEmptyTeam(t *testing.T) {
	_, svc, admin, team, _, _ := newAssessmentFixture(t, 0)

	_, err := svc.CreateDraft(context.Background(), admin.ID, dto.AssessmentDraftDTO{
		TeamID:   team.ID,
		Deadline: futureDeadline(),
	})
	if err == nil {
		t.Fatal("expected error for team with no members")
	}
}

func TestCreateDraftForeignTeam(t *testing.T) {
	db, svc, _, team, _, _ := newAssessmentFixture(t, 2)

	other := model.User{Username: "other-" + t.Name(), Email: "other@example.com", PasswordHash: "x"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed other admin: %v", err)
	}

	_, err := svc.CreateDraft(context.Background(), other.ID, dto.AssessmentDraftDTO{
		TeamID:   team.ID,
		Deadline: futureDeadline(),
	})
	if err == nil {
		t.Fatal("expected ownership error")
	}
}

func TestLaunchSnapshotsMembers(t *testing.T) {
	db, svc, admin, team, drafts, mailer := newAssessmentFixture(t, 3)
	ctx := context.Background()

	draft, err := svc.CreateDraft(ctx, admin.ID, dto.AssessmentDraftDTO{TeamID: team.ID, Deadline: futureDeadline()})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	resp, err := svc.Launch(ctx, admin.ID, dto.AssessmentLaunchDTO{DraftToken: draft.DraftToken})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if len(resp.Participants) != 3 {
		t.Fatalf("participants = %d, want 3", len(resp.Participants))
	}
	if resp.LaunchedAt == nil {
		t.Error("LaunchedAt not set")
	}
	if len(mailer.invites) != 3 {
		t.Errorf("invites sent = %d, want 3", len(mailer.invites))
	}

	var participants []model.Participant
	if err := db.Where("assessment_id = ?", resp.ID).Find(&participants).Error; err != nil {
		t.Fatalf("load participants: %v", err)
	}
	seen := map[string]bool{}
	for _, p := range participants {
		if p.AccessToken == "" {
			t.Errorf("participant %d has empty access token", p.ID)
		}
		if seen[p.AccessToken] {
			t.Errorf("duplicate access token %q", p.AccessToken)
		}
		seen[p.AccessToken] = true
		if p.LastInvitedAt == nil {
			t.Errorf("participant %d not stamped with invite time", p.ID)
		}
	}

	// The consumed draft is gone.
	if _, err := drafts.Get(ctx, draft.DraftToken); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("consumed draft still present, err = %v", err)
	}
}

func TestLaunchIdempotentForSameTeamAndDeadline(t *testing.T) {
	db, svc, admin, team, _, _ := newAssessmentFixture(t, 2)
	ctx := context.Background()
	deadline := futureDeadline()

	first, err := svc.CreateDraft(ctx, admin.ID, dto.AssessmentDraftDTO{TeamID: team.ID, Deadline: deadline})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	launched, err := svc.Launch(ctx, admin.ID, dto.AssessmentLaunchDTO{DraftToken: first.DraftToken})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	second, err := svc.CreateDraft(ctx, admin.ID, dto.AssessmentDraftDTO{TeamID: team.ID, Deadline: deadline})
	if err != nil {
		t.Fatalf("second CreateDraft: %v", err)
	}
	relaunched, err := svc.Launch(ctx, admin.ID, dto.AssessmentLaunchDTO{DraftToken: second.DraftToken})
	if err != nil {
		t.Fatalf("second Launch: %v", err)
	}
	if relaunched.ID != launched.ID {
		t.Errorf("re-launch created assessment %d, want existing %d", relaunched.ID, launched.ID)
	}

	var count int64
	if err := db.Model(&model.Assessment{}).Where("team_id = ?", team.ID).Count(&count).Error; err != nil {
		t.Fatalf("count assessments: %v", err)
	}
	if count != 1 {
		t.Errorf("assessments = %d, want 1", count)
	}
}

func TestLaunchForeignDraft(t *testing.T) {
	db, svc, admin, team, _, _ := newAssessmentFixture(t, 2)
	ctx := context.Background()

	draft, err := svc.CreateDraft(ctx, admin.ID, dto.AssessmentDraftDTO{TeamID: team.ID, Deadline: futureDeadline()})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	other := model.User{Username: "intruder-" + t.Name(), Email: "intruder@example.com", PasswordHash: "x"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed other admin: %v", err)
	}

	_, err = svc.Launch(ctx, other.ID, dto.AssessmentLaunchDTO{DraftToken: draft.DraftToken})
	if !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("err = %v, want ErrDraftNotFound", err)
	}
}

func TestLaunchUnknownDraft(t *testing.T) {
	_, svc, admin, _, _, _ := newAssessmentFixture(t, 2)

	_, err := svc.Launch(context.Background(), admin.ID, dto.AssessmentLaunchDTO{DraftToken: "missing"})
	if !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("err = %v, want ErrDraftNotFound", err)
	}
}

func TestResendInvite(t *testing.T) {
	_, svc, admin, team, _, mailer := newAssessmentFixture(t, 1)
	ctx := context.Background()

	d, err := svc.CreateDraft(ctx, admin.ID, dto.AssessmentDraftDTO{TeamID: team.ID, Deadline: futureDeadline()})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	resp, err := svc.Launch(ctx, admin.ID, dto.AssessmentLaunchDTO{DraftToken: d.DraftToken})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	before := len(mailer.invites)
	if err := svc.ResendInvite(ctx, admin.ID, resp.Participants[0].ID); err != nil {
		t.Fatalf("ResendInvite: %v", err)
	}
	if len(mailer.invites) != before+1 {
		t.Errorf("invites = %d, want %d", len(mailer.invites), before+1)
	}
}

func TestOverviewProgress(t *testing.T) {
	db, svc, admin, team, _, _ := newAssessmentFixture(t, 2)
	ctx := context.Background()

	d, err := svc.CreateDraft(ctx, admin.ID, dto.AssessmentDraftDTO{TeamID: team.ID, Deadline: futureDeadline()})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	launched, err := svc.Launch(ctx, admin.ID, dto.AssessmentLaunchDTO{DraftToken: d.DraftToken})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	if err := db.Model(&model.Participant{}).
		Where("id = ?", launched.Participants[0].ID).
		Update("has_submitted", true).Error; err != nil {
		t.Fatalf("mark submitted: %v", err)
	}

	summaries, err := svc.Overview(admin.ID)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}
	s := summaries[0]
	if s.TotalInvited != 2 || s.TotalSubmitted != 1 {
		t.Errorf("progress = %d/%d, want 1/2", s.TotalSubmitted, s.TotalInvited)
	}
}

func TestDeleteAssessment(t *testing.T) {
	db, svc, admin, team, _, _ := newAssessmentFixture(t, 2)
	ctx := context.Background()

	d, err := svc.CreateDraft(ctx, admin.ID, dto.AssessmentDraftDTO{TeamID: team.ID, Deadline: futureDeadline()})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	launched, err := svc.Launch(ctx, admin.ID, dto.AssessmentLaunchDTO{DraftToken: d.DraftToken})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	if err := svc.Delete(admin.ID, launched.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var count int64
	if err := db.Model(&model.Assessment{}).Where("id = ?", launched.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Error("assessment still present after delete")
	}
}
