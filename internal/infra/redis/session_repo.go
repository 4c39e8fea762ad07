package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-agency-bot/internal/domain"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
)

var _ repository.WizardSessionRepository = (*WizardSessionRepo)(nil)

// WizardSessionRepo keeps broadcast wizard sessions in Redis so a wizard
// survives a bot restart and works across replicas. Every Set restarts the
// TTL, so the draft expires only after the configured idle window.
type WizardSessionRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewWizardSessionRepo(client RedisClient, ttl time.Duration) *WizardSessionRepo {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &WizardSessionRepo{client: client, ttl: ttl}
}

func sessionKey(adminID, chatID int64) string {
	return fmt.Sprintf("wizard:%d:%d", adminID, chatID)
}

func (r *WizardSessionRepo) Get(ctx context.Context, adminID, chatID int64) (*model.WizardSession, error) {
	data, err := r.client.Get(ctx, sessionKey(adminID, chatID))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNoSession
		}
		return nil, err
	}
	var sess model.WizardSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *WizardSessionRepo) Set(ctx context.Context, sess *model.WizardSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(sess.AdminID, sess.ChatID), data, r.ttl)
}

func (r *WizardSessionRepo) Clear(ctx context.Context, adminID, chatID int64) error {
	return r.client.Del(ctx, sessionKey(adminID, chatID))
}
