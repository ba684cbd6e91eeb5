package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lumen-bots/levelbot/levelbot/database/models"
	"github.com/uptrace/bun"
)

type DailyProgressRepository interface {
	Get(ctx context.Context, userID, guildID, effectiveDate string) (*models.DailyProgress, error)
	// AddXP atomically upserts the day row, adding the XP amounts carried
	// by delta to the total and per-source columns; cap and tier fields
	// are taken from delta as the latest resolved values. Returns the new
	// daily total.
	AddXP(ctx context.Context, delta *models.DailyProgress) (int64, error)
	// UpsertTier writes the resolved cap/tier onto the day row without
	// touching any XP column, creating a zero row when absent.
	UpsertTier(ctx context.Context, userID, guildID, effectiveDate string, cap int64, tierLevel int, tierRoleID string) error
	// DeleteBefore removes all rows with an effective date strictly before
	// the given day key and reports how many were removed.
	DeleteBefore(ctx context.Context, effectiveDate string) (int64, error)
}

type dailyProgressRepository struct {
	db *bun.DB
}

func NewDailyProgressRepository(db *bun.DB) DailyProgressRepository {
	return &dailyProgressRepository{db: db}
}

func (r *dailyProgressRepository) Get(ctx context.Context, userID, guildID, effectiveDate string) (*models.DailyProgress, error) {
	progress := new(models.DailyProgress)
	err := r.db.NewSelect().
		Model(progress).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Where("effective_date = ?", effectiveDate).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return progress, nil
}

func (r *dailyProgressRepository) AddXP(ctx context.Context, delta *models.DailyProgress) (int64, error) {
	now := time.Now()
	delta.CreatedAt = now
	delta.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(delta).
		On("CONFLICT (user_id, guild_id, effective_date) DO UPDATE").
		Set("total_xp = daily_progress.total_xp + EXCLUDED.total_xp").
		Set("message_xp = daily_progress.message_xp + EXCLUDED.message_xp").
		Set("voice_xp = daily_progress.voice_xp + EXCLUDED.voice_xp").
		Set("reaction_xp = daily_progress.reaction_xp + EXCLUDED.reaction_xp").
		Set("daily_cap = EXCLUDED.daily_cap").
		Set("tier_level = EXCLUDED.tier_level").
		Set("tier_role_id = EXCLUDED.tier_role_id").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("total_xp").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return delta.TotalXP, nil
}

func (r *dailyProgressRepository) UpsertTier(ctx context.Context, userID, guildID, effectiveDate string, cap int64, tierLevel int, tierRoleID string) error {
	now := time.Now()
	row := &models.DailyProgress{
		UserID:        userID,
		GuildID:       guildID,
		EffectiveDate: effectiveDate,
		DailyCap:      cap,
		TierLevel:     tierLevel,
		TierRoleID:    tierRoleID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id, guild_id, effective_date) DO UPDATE").
		Set("daily_cap = EXCLUDED.daily_cap").
		Set("tier_level = EXCLUDED.tier_level").
		Set("tier_role_id = EXCLUDED.tier_role_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *dailyProgressRepository) DeleteBefore(ctx context.Context, effectiveDate string) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.DailyProgress)(nil)).
		Where("effective_date < ?", effectiveDate).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
