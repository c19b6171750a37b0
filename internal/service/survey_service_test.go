package service

import (
	"errors"
	"testing"
	"time"

	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"gorm.io/gorm"
)

func newSurveyFixture(t *testing.T, deadline time.Time) (*gorm.DB, SurveyService, model.Participant, map[string]model.Question, *fakeMailer) {
	t.Helper()
	db := newTestDB(t)
	questions := seedPeaks(t, db)
	_, team, _ := seedAdminAndTeam(t, db, 0)

	assessment := model.Assessment{TeamID: team.ID, Deadline: deadline}
	if err := db.Create(&assessment).Error; err != nil {
		t.Fatalf("create assessment: %v", err)
	}
	participant := model.Participant{
		AssessmentID: assessment.ID,
		MemberName:   "Robin",
		MemberEmail:  "robin@example.com",
		AccessToken:  "token-" + t.Name(),
	}
	if err := db.Create(&participant).Error; err != nil {
		t.Fatalf("create participant: %v", err)
	}

	mailer := &fakeMailer{}
	svc := NewSurveyService(
		repository.NewParticipantRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewAnswerRepository(db),
		repository.NewUserRepository(db),
		mailer,
		db,
	)
	return db, svc, participant, questions, mailer
}

func TestGetSurvey(t *testing.T) {
	_, svc, participant, _, _ := newSurveyFixture(t, time.Now().AddDate(0, 0, 7))

	view, err := svc.GetSurvey(participant.AccessToken)
	if err != nil {
		t.Fatalf("GetSurvey: %v", err)
	}
	if view.MemberName != "Robin" {
		t.Errorf("member name = %q", view.MemberName)
	}
	if len(view.Questions) != 4 {
		t.Errorf("questions = %d, want 4", len(view.Questions))
	}
	if len(view.RatingLabels) != 4 {
		t.Errorf("rating labels = %d, want 4", len(view.RatingLabels))
	}
}

func TestGetSurveyUnknownToken(t *testing.T) {
	_, svc, _, _, _ := newSurveyFixture(t, time.Now().AddDate(0, 0, 7))

	if _, err := svc.GetSurvey("no-such-token"); !errors.Is(err, ErrSurveyNotFound) {
		t.Errorf("err = %v, want ErrSurveyNotFound", err)
	}
}

func TestGetSurveyPastDeadline(t *testing.T) {
	_, svc, participant, _, _ := newSurveyFixture(t, time.Now().AddDate(0, 0, -3))

	if _, err := svc.GetSurvey(participant.AccessToken); !errors.Is(err, ErrSurveyClosed) {
		t.Errorf("err = %v, want ErrSurveyClosed", err)
	}
}

func TestSubmitRecordsAnswersOnce(t *testing.T) {
	db, svc, participant, questions, mailer := newSurveyFixture(t, time.Now().AddDate(0, 0, 7))

	req := dto.SurveySubmitDTO{Answers: []dto.SurveyAnswerDTO{
		{QuestionID: questions[model.PeakCollaborativeCulture].ID, Value: 3},
		{QuestionID: questions[model.PeakLeadershipAccountability].ID, Value: 2},
	}}

	resp, err := svc.Submit(participant.AccessToken, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.AlreadySubmitted {
		t.Error("first submission flagged as repeat")
	}

	var count int64
	if err := db.Model(&model.Answer{}).Where("participant_id = ?", participant.ID).Count(&count).Error; err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if count != 2 {
		t.Errorf("answers = %d, want 2", count)
	}
	if len(mailer.thanks) != 1 || len(mailer.alerts) != 1 {
		t.Errorf("thanks=%d alerts=%d, want 1 each", len(mailer.thanks), len(mailer.alerts))
	}

	// Second submission with different values is acknowledged but changes nothing.
	resp2, err := svc.Submit(participant.AccessToken, dto.SurveySubmitDTO{Answers: []dto.SurveyAnswerDTO{
		{QuestionID: questions[model.PeakCollaborativeCulture].ID, Value: 0},
	}})
	if err != nil {
		t.Fatalf("repeat Submit: %v", err)
	}
	if !resp2.AlreadySubmitted {
		t.Error("repeat submission not flagged")
	}
	if err := db.Model(&model.Answer{}).Where("participant_id = ?", participant.ID).Count(&count).Error; err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if count != 2 {
		t.Errorf("answers after repeat = %d, want 2", count)
	}
	var stored model.Answer
	if err := db.Where("participant_id = ? AND question_id = ?", participant.ID, questions[model.PeakCollaborativeCulture].ID).First(&stored).Error; err != nil {
		t.Fatalf("load answer: %v", err)
	}
	if stored.Value != 3 {
		t.Errorf("stored value = %d, repeat submission must not overwrite", stored.Value)
	}
}

func TestSubmitFiltersInvalidAnswers(t *testing.T) {
	db, svc, participant, questions, _ := newSurveyFixture(t, time.Now().AddDate(0, 0, 7))

	req := dto.SurveySubmitDTO{Answers: []dto.SurveyAnswerDTO{
		{QuestionID: questions[model.PeakStrategicMomentum].ID, Value: 1},
		{QuestionID: 99999, Value: 2},                                   // unknown question
		{QuestionID: questions[model.PeakTalentMagnetism].ID, Value: 7}, // out of range
	}}

	if _, err := svc.Submit(participant.AccessToken, req); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var count int64
	if err := db.Model(&model.Answer{}).Where("participant_id = ?", participant.ID).Count(&count).Error; err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if count != 1 {
		t.Errorf("answers = %d, want only the valid one", count)
	}
}

func TestSubmitNoValidAnswers(t *testing.T) {
	_, svc, participant, _, _ := newSurveyFixture(t, time.Now().AddDate(0, 0, 7))

	_, err := svc.Submit(participant.AccessToken, dto.SurveySubmitDTO{Answers: []dto.SurveyAnswerDTO{
		{QuestionID: 99999, Value: 2},
	}})
	if !errors.Is(err, ErrNoAnswers) {
		t.Errorf("err = %v, want ErrNoAnswers", err)
	}
}

func TestSubmitPastDeadline(t *testing.T) {
	_, svc, participant, questions, _ := newSurveyFixture(t, time.Now().AddDate(0, 0, -1))

	_, err := svc.Submit(participant.AccessToken, dto.SurveySubmitDTO{Answers: []dto.SurveyAnswerDTO{
		{QuestionID: questions[model.PeakCollaborativeCulture].ID, Value: 2},
	}})
	if !errors.Is(err, ErrSurveyClosed) {
		t.Errorf("err = %v, want ErrSurveyClosed", err)
	}
}
