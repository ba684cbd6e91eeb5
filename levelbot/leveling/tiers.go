package leveling

import (
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
)

// MaxTierRank is the number of configurable tier slots.
const MaxTierRank = 10

// TierSlot is one configured (rank, role, cap) entry.
type TierSlot struct {
	Rank   int          `toml:"rank"`
	RoleID snowflake.ID `toml:"role_id"`
	Cap    int64        `toml:"daily_cap"`
}

// TierResolver maps a member's role set to the single tier in effect.
// Resolution walks ranks from highest to lowest; the first configured slot
// whose role the member holds wins.
type TierResolver struct {
	baseCap int64
	slots   [MaxTierRank + 1]*TierSlot // index by rank, 1..10
}

// NewTierResolver validates the configured slots against the base cap.
// A slot with a cap at or below the base cap, an out-of-range rank, or a
// missing role is a configuration problem: it is logged and the slot is
// ignored rather than failing startup.
func NewTierResolver(baseCap int64, slots []TierSlot) *TierResolver {
	r := &TierResolver{baseCap: baseCap}
	for i := range slots {
		s := slots[i]
		if s.Rank < 1 || s.Rank > MaxTierRank {
			slog.Warn("Ignoring tier with out-of-range rank",
				slog.String("type", "sys"),
				slog.Int("rank", s.Rank))
			continue
		}
		if s.RoleID == 0 || s.Cap == 0 {
			slog.Warn("Ignoring half-configured tier",
				slog.String("type", "sys"),
				slog.Int("rank", s.Rank),
				slog.String("role_id", s.RoleID.String()),
				slog.Int64("daily_cap", s.Cap))
			continue
		}
		if s.Cap <= baseCap {
			slog.Warn("Ignoring tier with cap at or below base cap",
				slog.String("type", "sys"),
				slog.Int("rank", s.Rank),
				slog.Int64("tier_cap", s.Cap),
				slog.Int64("base_cap", baseCap))
			continue
		}
		if r.slots[s.Rank] != nil {
			slog.Warn("Ignoring duplicate tier rank",
				slog.String("type", "sys"),
				slog.Int("rank", s.Rank))
			continue
		}
		slot := s
		r.slots[s.Rank] = &slot
	}
	return r
}

func (r *TierResolver) BaseCap() int64 { return r.baseCap }

// Resolve returns the highest-ranked tier whose role appears in roles.
// With no match it returns the zero tier carrying the base cap.
func (r *TierResolver) Resolve(roles []snowflake.ID) Tier {
	for rank := MaxTierRank; rank >= 1; rank-- {
		slot := r.slots[rank]
		if slot == nil {
			continue
		}
		for _, id := range roles {
			if id == slot.RoleID {
				return Tier{Rank: slot.Rank, RoleID: slot.RoleID, Cap: slot.Cap}
			}
		}
	}
	return Tier{Cap: r.baseCap}
}
