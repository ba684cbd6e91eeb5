package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lumen-bots/levelbot/levelbot/database/models"
	"github.com/uptrace/bun"
)

type XPAccountRepository interface {
	Get(ctx context.Context, userID, guildID string) (*models.XPAccount, error)
	// AddXP atomically applies the increments carried by delta (total XP
	// plus counters), creating the account when absent, and returns the
	// row after the update. The arithmetic happens in the database so
	// concurrent awards for the same user never lose updates.
	AddXP(ctx context.Context, delta *models.XPAccount) (*models.XPAccount, error)
	// AdjustTotal adds delta (which may be negative) to the lifetime
	// total, clamped at zero, creating the account when absent.
	AdjustTotal(ctx context.Context, userID, guildID string, delta int64) (*models.XPAccount, error)
	SetLevel(ctx context.Context, userID, guildID string, level int) error
	GetTop(ctx context.Context, guildID string, limit, offset int) ([]*models.XPAccount, error)
	Delete(ctx context.Context, userID, guildID string) error
}

type xpAccountRepository struct {
	db *bun.DB
}

func NewXPAccountRepository(db *bun.DB) XPAccountRepository {
	return &xpAccountRepository{db: db}
}

func (r *xpAccountRepository) Get(ctx context.Context, userID, guildID string) (*models.XPAccount, error) {
	account := new(models.XPAccount)
	err := r.db.NewSelect().
		Model(account).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

func (r *xpAccountRepository) AddXP(ctx context.Context, delta *models.XPAccount) (*models.XPAccount, error) {
	now := time.Now()
	delta.CreatedAt = now
	delta.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(delta).
		On("CONFLICT (user_id, guild_id) DO UPDATE").
		Set("total_xp = xp_accounts.total_xp + EXCLUDED.total_xp").
		Set("message_count = xp_accounts.message_count + EXCLUDED.message_count").
		Set("reaction_count = xp_accounts.reaction_count + EXCLUDED.reaction_count").
		Set("voice_minutes = xp_accounts.voice_minutes + EXCLUDED.voice_minutes").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return delta, nil
}

func (r *xpAccountRepository) AdjustTotal(ctx context.Context, userID, guildID string, delta int64) (*models.XPAccount, error) {
	now := time.Now()
	account := &models.XPAccount{
		UserID:    userID,
		GuildID:   guildID,
		TotalXP:   max64(0, delta),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.NewInsert().
		Model(account).
		On("CONFLICT (user_id, guild_id) DO UPDATE").
		Set("total_xp = GREATEST(0, xp_accounts.total_xp + ?)", delta).
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *xpAccountRepository) SetLevel(ctx context.Context, userID, guildID string, level int) error {
	_, err := r.db.NewUpdate().
		Model((*models.XPAccount)(nil)).
		Set("level = ?", level).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	return err
}

func (r *xpAccountRepository) GetTop(ctx context.Context, guildID string, limit, offset int) ([]*models.XPAccount, error) {
	var accounts []*models.XPAccount
	err := r.db.NewSelect().
		Model(&accounts).
		Where("guild_id = ?", guildID).
		Order("total_xp DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	return accounts, err
}

func (r *xpAccountRepository) Delete(ctx context.Context, userID, guildID string) error {
	_, err := r.db.NewDelete().
		Model((*models.XPAccount)(nil)).
		Where("user_id = ?", userID).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	return err
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
