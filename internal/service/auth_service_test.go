package service

import (
	"errors"
	"testing"

	"github.com/orghealth/ascent/config"
	"github.com/orghealth/ascent/internal/dto"
	"github.com/orghealth/ascent/internal/model"
	"github.com/orghealth/ascent/internal/repository"
	"gorm.io/gorm"
)

func newAuthFixture(t *testing.T) (*gorm.DB, AuthService) {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTLHours = 24
	return db, NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestSignupAndLogin(t *testing.T) {
	db, svc := newAuthFixture(t)

	signup, err := svc.Signup(dto.SignupDTO{Username: "casey", Email: "casey@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if signup.Token == "" {
		t.Error("signup issued no token")
	}

	var stored model.User
	if err := db.Where("username = ?", "casey").First(&stored).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.PasswordHash == "hunter2hunter2" {
		t.Error("password stored in plaintext")
	}

	login, err := svc.Login(dto.LoginDTO{Username: "casey", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := svc.ParseToken(login.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != stored.ID {
		t.Errorf("claims user id = %d, want %d", claims.UserID, stored.ID)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	_, svc := newAuthFixture(t)

	if _, err := svc.Signup(dto.SignupDTO{Username: "casey", Email: "casey@example.com", Password: "hunter2hunter2"}); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	if _, err := svc.Login(dto.LoginDTO{Username: "casey", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(dto.LoginDTO{Username: "nobody", Password: "hunter2hunter2"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
}

func TestParseTokenRejectsTampered(t *testing.T) {
	_, svc := newAuthFixture(t)

	signup, err := svc.Signup(dto.SignupDTO{Username: "casey", Email: "casey@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	if _, err := svc.ParseToken(signup.Token + "x"); err == nil {
		t.Error("tampered token accepted")
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	db, svc := newAuthFixture(t)

	signup, err := svc.Signup(dto.SignupDTO{Username: "casey", Email: "casey@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	team := model.Team{Name: "Product", AdminID: signup.User.ID}
	if err := db.Create(&team).Error; err != nil {
		t.Fatalf("seed team: %v", err)
	}

	if err := svc.DeleteAccount(signup.User.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	var teams int64
	if err := db.Model(&model.Team{}).Where("admin_id = ?", signup.User.ID).Count(&teams).Error; err != nil {
		t.Fatalf("count teams: %v", err)
	}
	if teams != 0 {
		t.Errorf("teams remaining = %d, want 0", teams)
	}
}
