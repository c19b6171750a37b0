package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/orghealth/ascent/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Shared-cache sqlite returns SQLITE_LOCKED under concurrent connections;
	// a single connection keeps concurrent-caller tests deterministic.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	err = db.AutoMigrate(
		&model.User{},
		&model.Team{},
		&model.TeamMember{},
		&model.Peak{},
		&model.Question{},
		&model.Assessment{},
		&model.Participant{},
		&model.Answer{},
		&model.FinalReport{},
		&model.PromoCode{},
		&model.Redemption{},
		&model.PeakInsight{},
		&model.PeakAction{},
		&model.ResultsSummary{},
		&model.UniformRangeSummary{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedPeaks inserts the four peaks with one question each and returns the
// questions keyed by peak code.
func seedPeaks(t *testing.T, db *gorm.DB) map[string]model.Question {
	t.Helper()
	questions := make(map[string]model.Question, 4)
	names := map[string]string{
		model.PeakCollaborativeCulture:     "Collaborative Culture",
		model.PeakLeadershipAccountability: "Leadership Accountability",
		model.PeakStrategicMomentum:        "Strategic Momentum",
		model.PeakTalentMagnetism:          "Talent Magnetism",
	}
	for _, code := range model.CanonicalPeakOrder {
		peak := model.Peak{Code: code, Name: names[code]}
		if err := db.Create(&peak).Error; err != nil {
			t.Fatalf("seed peak %s: %v", code, err)
		}
		q := model.Question{PeakID: peak.ID, Text: "Question for " + code, Order: 1}
		if err := db.Create(&q).Error; err != nil {
			t.Fatalf("seed question for %s: %v", code, err)
		}
		questions[code] = q
	}
	return questions
}

func seedAdminAndTeam(t *testing.T, db *gorm.DB, memberCount int) (model.User, model.Team, []model.TeamMember) {
	t.Helper()
	admin := model.User{Username: "admin-" + t.Name(), Email: "admin@example.com", PasswordHash: "x"}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	team := model.Team{Name: "Product", AdminID: admin.ID}
	if err := db.Create(&team).Error; err != nil {
		t.Fatalf("seed team: %v", err)
	}
	members := make([]model.TeamMember, 0, memberCount)
	for i := 0; i < memberCount; i++ {
		m := model.TeamMember{
			TeamID: team.ID,
			Name:   fmt.Sprintf("Member %d", i+1),
			Email:  fmt.Sprintf("member%d@example.com", i+1),
		}
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("seed member: %v", err)
		}
		members = append(members, m)
	}
	return admin, team, members
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return d
}

// fakeMailer records sends instead of talking to SendGrid.
type fakeMailer struct {
	mu      sync.Mutex
	invites []string
	thanks  []string
	alerts  []string
}

func (m *fakeMailer) SendInvite(participant *model.Participant, assessment *model.Assessment, teamName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invites = append(m.invites, participant.MemberEmail)
	return nil
}

func (m *fakeMailer) SendSubmitThanks(participant *model.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thanks = append(m.thanks, participant.MemberEmail)
	return nil
}

func (m *fakeMailer) SendAdminAlert(adminEmail, memberName, teamName string, submitted, total int64, assessment *model.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, fmt.Sprintf("%s:%d/%d", adminEmail, submitted, total))
	return nil
}

func (m *fakeMailer) SendReceipt(email string, teamName string, amountMinor int64, currency string) error {
	return nil
}

// memDraftStore is an in-process DraftStore for tests; no redis required.
type memDraftStore struct {
	mu     sync.Mutex
	drafts map[string]*AssessmentDraft
	next   int
}

func newMemDraftStore() *memDraftStore {
	return &memDraftStore{drafts: make(map[string]*AssessmentDraft)}
}

func (s *memDraftStore) Save(ctx context.Context, draft *AssessmentDraft) (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	token := fmt.Sprintf("draft-%d", s.next)
	s.drafts[token] = draft
	return token, time.Now().Add(draftTTL), nil
}

func (s *memDraftStore) Get(ctx context.Context, token string) (*AssessmentDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[token]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

func (s *memDraftStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, token)
	return nil
}
