package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/lumen-bots/levelbot/levelbot/database/models"
	"github.com/uptrace/bun"
)

const guildConfigCacheSize = 2048

type GuildConfigRepository interface {
	// GetOrDefault returns the stored config for the guild, or an enabled
	// default when none exists yet. Reads go through an in-memory cache.
	GetOrDefault(ctx context.Context, guildID string) (*models.GuildConfig, error)
	Upsert(ctx context.Context, cfg *models.GuildConfig) error
}

type guildConfigRepository struct {
	db    *bun.DB
	cache *lru.Cache
}

func NewGuildConfigRepository(db *bun.DB) GuildConfigRepository {
	cache, _ := lru.New(guildConfigCacheSize)
	return &guildConfigRepository{db: db, cache: cache}
}

func defaultGuildConfig(guildID string) *models.GuildConfig {
	return &models.GuildConfig{
		GuildID:          guildID,
		LevelingEnabled:  true,
		AnnounceLevelUps: true,
	}
}

func (r *guildConfigRepository) GetOrDefault(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	if cached, ok := r.cache.Get(guildID); ok {
		return cached.(*models.GuildConfig), nil
	}

	cfg := new(models.GuildConfig)
	err := r.db.NewSelect().
		Model(cfg).
		Where("guild_id = ?", guildID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			cfg = defaultGuildConfig(guildID)
			r.cache.Add(guildID, cfg)
			return cfg, nil
		}
		return nil, err
	}

	r.cache.Add(guildID, cfg)
	return cfg, nil
}

func (r *guildConfigRepository) Upsert(ctx context.Context, cfg *models.GuildConfig) error {
	now := time.Now()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(cfg).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("leveling_enabled = EXCLUDED.leveling_enabled").
		Set("announce_level_ups = EXCLUDED.announce_level_ups").
		Set("level_up_channel_id = EXCLUDED.level_up_channel_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return err
	}

	r.cache.Remove(cfg.GuildID)
	return nil
}
