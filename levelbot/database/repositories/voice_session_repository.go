package repositories

import (
	"context"
	"time"

	"github.com/lumen-bots/levelbot/levelbot/database/models"
	"github.com/uptrace/bun"
)

type VoiceSessionRepository interface {
	// Upsert records a member joining or moving between voice channels.
	Upsert(ctx context.Context, session *models.VoiceSession) error
	TouchAward(ctx context.Context, userID, guildID string, at time.Time) error
	Delete(ctx context.Context, userID, guildID string) error
	GetAll(ctx context.Context) ([]*models.VoiceSession, error)
	// DeleteAll clears every session, used at startup since sessions from
	// a previous process are stale.
	DeleteAll(ctx context.Context) error
}

type voiceSessionRepository struct {
	db *bun.DB
}

func NewVoiceSessionRepository(db *bun.DB) VoiceSessionRepository {
	return &voiceSessionRepository{db: db}
}

func (r *voiceSessionRepository) Upsert(ctx context.Context, session *models.VoiceSession) error {
	session.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().
		Model(session).
		On("CONFLICT (user_id, guild_id) DO UPDATE").
		Set("channel_id = EXCLUDED.channel_id").
		Set("muted = EXCLUDED.muted").
		Set("deafened = EXCLUDED.deafened").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *voiceSessionRepository) TouchAward(ctx context.Context, userID, guildID string, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*models.VoiceSession)(nil)).
		Set("last_award_time = ?", at).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	return err
}

func (r *voiceSessionRepository) Delete(ctx context.Context, userID, guildID string) error {
	_, err := r.db.NewDelete().
		Model((*models.VoiceSession)(nil)).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	return err
}

func (r *voiceSessionRepository) GetAll(ctx context.Context) ([]*models.VoiceSession, error) {
	var sessions []*models.VoiceSession
	err := r.db.NewSelect().
		Model(&sessions).
		Scan(ctx)
	return sessions, err
}

func (r *voiceSessionRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.NewDelete().
		Model((*models.VoiceSession)(nil)).
		Where("1 = 1").
		Exec(ctx)
	return err
}
