package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orghealth/ascent/config"
	"github.com/redis/go-redis/v9"
)

// Draft TTL: an unconfirmed assessment setup evaporates after an hour.
const draftTTL = time.Hour

var ErrDraftNotFound = errors.New("assessment draft not found or expired")

// AssessmentDraft is the staged setup data held server-side until the admin
// confirms the launch. No database rows exist for it.
type AssessmentDraft struct {
	TeamID    uint   `json:"team_id"`
	TeamName  string `json:"team_name"`
	Deadline  string `json:"deadline"` // YYYY-MM-DD
	CreatedBy uint   `json:"created_by"`
}

type DraftStore interface {
	Save(ctx context.Context, draft *AssessmentDraft) (token string, expiresAt time.Time, err error)
	Get(ctx context.Context, token string) (*AssessmentDraft, error)
	Delete(ctx context.Context, token string) error
}

type redisDraftStore struct {
	client *redis.Client
}

func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func NewDraftStore(client *redis.Client) DraftStore {
	return &redisDraftStore{client: client}
}

func draftKey(token string) string {
	return "assessment:draft:" + token
}

func (s *redisDraftStore) Save(ctx context.Context, draft *AssessmentDraft) (string, time.Time, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to marshal draft: %w", err)
	}
	token := uuid.NewString()
	expiresAt := time.Now().Add(draftTTL)
	if err := s.client.Set(ctx, draftKey(token), payload, draftTTL).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store draft: %w", err)
	}
	return token, expiresAt, nil
}

func (s *redisDraftStore) Get(ctx context.Context, token string) (*AssessmentDraft, error) {
	payload, err := s.client.Get(ctx, draftKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch draft: %w", err)
	}
	var draft AssessmentDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}

func (s *redisDraftStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, draftKey(token)).Err()
}
