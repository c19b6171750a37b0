package service

import (
	"testing"

	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"gorm.io/gorm"
)

func newTeamService(db *gorm.DB) TeamService {
	return NewTeamService(repository.NewTeamRepository(db), repository.NewTeamMemberRepository(db))
}

func TestTeamCRUD(t *testing.T) {
	db := newTestDB(t)
	admin, _, _ := seedAdminAndTeam(t, db, 0)
	svc := newTeamService(db)

	created, err := svc.CreateTeam(admin.ID, dto.TeamCreateDTO{Name: "Platform"})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}

	member, err := svc.AddMember(admin.ID, created.ID, dto.TeamMemberDTO{Name: "Sam", Email: "sam@example.com"})
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	renamed, err := svc.RenameTeam(admin.ID, created.ID, dto.TeamRenameDTO{Name: "Platform Eng"})
	if err != nil {
		t.Fatalf("RenameTeam: %v", err)
	}
	if renamed.Name != "Platform Eng" {
		t.Errorf("name = %q", renamed.Name)
	}

	updated, err := svc.UpdateMember(admin.ID, member.ID, dto.TeamMemberDTO{Name: "Sam R", Email: "sam.r@example.com"})
	if err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}
	if updated.Email != "sam.r@example.com" {
		t.Errorf("email = %q", updated.Email)
	}

	got, err := svc.GetTeam(admin.ID, created.ID)
	if err != nil {
		t.Fatalf("GetTeam: %v", err)
	}
	if len(got.Members) != 1 {
		t.Errorf("members = %d, want 1", len(got.Members))
	}

	summaries, err := svc.ListTeams(admin.ID)
	if err != nil {
		t.Fatalf("ListTeams: %v", err)
	}
	// The seeded team plus the one created here.
	if len(summaries) != 2 {
		t.Errorf("teams = %d, want 2", len(summaries))
	}
}

func TestTeamOwnershipChecks(t *testing.T) {
	db := newTestDB(t)
	_, team, _ := seedAdminAndTeam(t, db, 1)
	svc := newTeamService(db)

	other := model.User{Username: "other-" + t.Name(), Email: "other@example.com", PasswordHash: "x"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed other admin: %v", err)
	}

	if _, err := svc.GetTeam(other.ID, team.ID); err == nil {
		t.Error("foreign GetTeam succeeded")
	}
	if err := svc.DeleteTeam(other.ID, team.ID); err == nil {
		t.Error("foreign DeleteTeam succeeded")
	}
	if _, err := svc.AddMember(other.ID, team.ID, dto.TeamMemberDTO{Name: "X", Email: "x@example.com"}); err == nil {
		t.Error("foreign AddMember succeeded")
	}
}

func TestDeleteTeamCascades(t *testing.T) {
	db := newTestDB(t)
	questions := seedPeaks(t, db)
	admin, team, members := seedAdminAndTeam(t, db, 2)
	svc := newTeamService(db)

	// Two launched assessments with participants and answers each.
	for _, day := range []string{"2026-10-01", "2026-11-01"} {
		assessment := model.Assessment{TeamID: team.ID, Deadline: mustDate(t, day)}
		if err := db.Create(&assessment).Error; err != nil {
			t.Fatalf("create assessment: %v", err)
		}
		for i, m := range members {
			memberID := m.ID
			p := model.Participant{
				AssessmentID: assessment.ID,
				TeamMemberID: &memberID,
				MemberName:   m.Name,
				MemberEmail:  m.Email,
				AccessToken:  "tok-" + day + "-" + m.Email,
			}
			if err := db.Create(&p).Error; err != nil {
				t.Fatalf("create participant: %v", err)
			}
			answer := model.Answer{
				ParticipantID: p.ID,
				QuestionID:    questions[model.CanonicalPeakOrder[i%len(model.CanonicalPeakOrder)]].ID,
				Value:         2,
			}
			if err := db.Create(&answer).Error; err != nil {
				t.Fatalf("create answer: %v", err)
			}
		}
	}

	if err := svc.DeleteTeam(admin.ID, team.ID); err != nil {
		t.Fatalf("DeleteTeam: %v", err)
	}

	for _, probe := range []struct {
		name  string
		model interface{}
	}{
		{"assessments", &model.Assessment{}},
		{"participants", &model.Participant{}},
		{"answers", &model.Answer{}},
		{"members", &model.TeamMember{}},
	} {
		var count int64
		if err := db.Model(probe.model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", probe.name, err)
		}
		if count != 0 {
			t.Errorf("%s remaining after team delete = %d, want 0", probe.name, count)
		}
	}
}

func TestDeleteMemberPreservesParticipantSnapshot(t *testing.T) {
	db := newTestDB(t)
	admin, team, members := seedAdminAndTeam(t, db, 1)
	svc := newTeamService(db)

	assessment := model.Assessment{TeamID: team.ID, Deadline: mustDate(t, "2026-10-01")}
	if err := db.Create(&assessment).Error; err != nil {
		t.Fatalf("create assessment: %v", err)
	}
	memberID := members[0].ID
	p := model.Participant{
		AssessmentID: assessment.ID,
		TeamMemberID: &memberID,
		MemberName:   members[0].Name,
		MemberEmail:  members[0].Email,
		AccessToken:  "tok-" + t.Name(),
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create participant: %v", err)
	}

	if err := svc.DeleteMember(admin.ID, memberID); err != nil {
		t.Fatalf("DeleteMember: %v", err)
	}

	var survived model.Participant
	if err := db.First(&survived, p.ID).Error; err != nil {
		t.Fatalf("participant gone after member delete: %v", err)
	}
	if survived.TeamMemberID != nil {
		t.Error("member link not nullified")
	}
	if survived.MemberName != members[0].Name || survived.MemberEmail != members[0].Email {
		t.Error("snapshot fields lost")
	}
}
