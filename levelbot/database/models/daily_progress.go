package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DailyProgress tracks one user's XP intake for one effective day. The
// effective date key comes from the day-cycle boundary, not UTC midnight.
// Rows are created lazily on the first award of the day and wiped by the
// daily reset; rows older than the retention window are purged.
type DailyProgress struct {
	bun.BaseModel `bun:"table:daily_progress,alias:dp"`

	UserID        string `bun:"user_id,pk"`
	GuildID       string `bun:"guild_id,pk"`
	EffectiveDate string `bun:"effective_date,pk"`

	TotalXP    int64 `bun:"total_xp,notnull,default:0"`
	MessageXP  int64 `bun:"message_xp,notnull,default:0"`
	VoiceXP    int64 `bun:"voice_xp,notnull,default:0"`
	ReactionXP int64 `bun:"reaction_xp,notnull,default:0"`

	// Cap and tier in effect for this day; updated in place when the
	// member's tier roles change mid-day.
	DailyCap   int64  `bun:"daily_cap,notnull,default:0"`
	TierLevel  int    `bun:"tier_level,notnull,default:0"`
	TierRoleID string `bun:"tier_role_id,notnull,default:''"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
