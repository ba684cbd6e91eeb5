package leveling

import (
	"errors"

	"github.com/disgoorg/snowflake/v2"
)

// Source identifies which kind of activity produced an XP event.
type Source string

const (
	SourceMessage  Source = "message"
	SourceReaction Source = "reaction"
	SourceVoice    Source = "voice"
)

func (s Source) Valid() bool {
	switch s {
	case SourceMessage, SourceReaction, SourceVoice:
		return true
	}
	return false
}

var (
	ErrInvalidAmount = errors.New("xp amount must be positive")
	ErrUnknownSource = errors.New("unknown xp source")
)

// Tier is a role-linked daily-cap override. The zero value means "no tier":
// rank 0, no role, base cap applies.
type Tier struct {
	Rank   int
	RoleID snowflake.ID
	Cap    int64
}

// CapSnapshot describes a user's daily-cap state at a point in time.
type CapSnapshot struct {
	Used      int64
	Cap       int64
	Remaining int64
	Tier      Tier
}

// Allowance is the result of a CanGainXP check.
type Allowance struct {
	Allowed   bool
	CurrentXP int64
	Cap       int64
	Remaining int64
	Tier      Tier
}

// AwardRequest carries everything the coordinator needs for one award.
// Roles must be the member's current role set, projected by the gateway
// adapter; the core never fetches role data itself.
type AwardRequest struct {
	UserID  snowflake.ID
	GuildID snowflake.ID
	Amount  int64
	Source  Source
	Roles   []snowflake.ID
}

// AwardResult is what the coordinator reports back to the event handlers.
type AwardResult struct {
	Awarded   int64
	TotalXP   int64
	OldLevel  int
	NewLevel  int
	LeveledUp bool
	Daily     CapSnapshot
}
