package models

import (
	"time"

	"github.com/uptrace/bun"
)

// GuildConfig holds per-guild toggles and channel routing for the
// presentation side (level-up announcements). The XP core itself only
// reads LevelingEnabled.
type GuildConfig struct {
	bun.BaseModel `bun:"table:guild_configs,alias:gc"`

	GuildID string `bun:"guild_id,pk"`

	LevelingEnabled  bool   `bun:"leveling_enabled,notnull,default:true"`
	AnnounceLevelUps bool   `bun:"announce_level_ups,notnull,default:true"`
	LevelUpChannelID string `bun:"level_up_channel_id,notnull,default:''"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
