package models

import (
	"time"

	"github.com/uptrace/bun"
)

// VoiceSession is ephemeral presence state for a member currently in a
// voice channel. The presence ticker walks these rows to grant voice XP.
type VoiceSession struct {
	bun.BaseModel `bun:"table:voice_sessions,alias:vs"`

	UserID  string `bun:"user_id,pk"`
	GuildID string `bun:"guild_id,pk"`

	ChannelID     string    `bun:"channel_id,notnull"`
	JoinTime      time.Time `bun:"join_time,notnull"`
	LastAwardTime time.Time `bun:"last_award_time"`
	Muted         bool      `bun:"muted,notnull,default:false"`
	Deafened      bool      `bun:"deafened,notnull,default:false"`

	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
