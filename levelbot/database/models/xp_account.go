package models

import (
	"time"

	"github.com/uptrace/bun"
)

// XPAccount is the lifetime ledger for one user in one guild. Created on
// the first XP event, mutated only through atomic increments; level is
// derived from TotalXP and recomputed after every award.
type XPAccount struct {
	bun.BaseModel `bun:"table:xp_accounts,alias:xa"`

	UserID  string `bun:"user_id,pk"`
	GuildID string `bun:"guild_id,pk"`

	TotalXP int64 `bun:"total_xp,notnull,default:0"`
	Level   int   `bun:"level,notnull,default:0"`

	MessageCount  int64 `bun:"message_count,notnull,default:0"`
	ReactionCount int64 `bun:"reaction_count,notnull,default:0"`
	VoiceMinutes  int64 `bun:"voice_minutes,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
