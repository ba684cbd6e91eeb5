package leveling

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/disgoorg/snowflake/v2"
	"github.com/lumen-bots/levelbot/levelbot/database/models"
	"github.com/lumen-bots/levelbot/levelbot/database/repositories"
)

// Coordinator runs one XP award end to end: scale the raw amount, record it
// in the daily ledger, apply it to the lifetime account, recompute the
// level, and report whether a level-up occurred. It is the single entry
// point the gateway adapters call. Cap admission is the caller's job via
// Ledger.CanGainXP; the coordinator records whatever amount it is given.
type Coordinator struct {
	accounts repositories.XPAccountRepository
	ledger   *Ledger
	curve    *Curve

	globalMultiplier float64
}

func NewCoordinator(accounts repositories.XPAccountRepository, ledger *Ledger, curve *Curve, globalMultiplier float64) *Coordinator {
	if globalMultiplier <= 0 {
		globalMultiplier = 1
	}
	return &Coordinator{
		accounts:         accounts,
		ledger:           ledger,
		curve:            curve,
		globalMultiplier: globalMultiplier,
	}
}

func (c *Coordinator) Curve() *Curve   { return c.curve }
func (c *Coordinator) Ledger() *Ledger { return c.ledger }

// Award grants XP for one event. Business outcomes (cap reached upstream)
// are not errors; only invalid input and storage failures come back on the
// error channel. When the account write fails, no level-up is reported.
func (c *Coordinator) Award(ctx context.Context, req AwardRequest) (AwardResult, error) {
	if req.Amount <= 0 {
		return AwardResult{}, ErrInvalidAmount
	}
	if !req.Source.Valid() {
		return AwardResult{}, ErrUnknownSource
	}

	// The global multiplier is applied exactly once, here. Per-source
	// randomized ranges are resolved by the caller.
	amount := int64(math.Round(float64(req.Amount) * c.globalMultiplier))
	if amount < 1 {
		amount = 1
	}

	dailyTotal, err := c.ledger.AddXP(ctx, req.UserID, req.GuildID, amount, req.Source, req.Roles)
	if err != nil {
		return AwardResult{}, err
	}

	delta := &models.XPAccount{
		UserID:  req.UserID.String(),
		GuildID: req.GuildID.String(),
		TotalXP: amount,
	}
	// One event is one counter increment, independent of the XP granted.
	switch req.Source {
	case SourceMessage:
		delta.MessageCount = 1
	case SourceReaction:
		delta.ReactionCount = 1
	case SourceVoice:
		delta.VoiceMinutes = 1
	}

	account, err := c.accounts.AddXP(ctx, delta)
	if err != nil {
		// The daily row already took the amount; the account did not.
		// Surface the failure instead of pretending nothing happened.
		return AwardResult{}, fmt.Errorf("failed to apply xp to account: %w", err)
	}

	oldLevel := account.Level
	newLevel := c.curve.LevelForXP(account.TotalXP)
	if newLevel != oldLevel {
		if err := c.accounts.SetLevel(ctx, delta.UserID, delta.GuildID, newLevel); err != nil {
			return AwardResult{}, fmt.Errorf("failed to persist level change: %w", err)
		}
		slog.Info("Level change",
			slog.String("type", "sys"),
			slog.String("user_id", delta.UserID),
			slog.String("guild_id", delta.GuildID),
			slog.Int("old_level", oldLevel),
			slog.Int("new_level", newLevel))
	}

	tier := c.ledger.tiers.Resolve(req.Roles)
	remaining := tier.Cap - dailyTotal
	if remaining < 0 {
		remaining = 0
	}

	return AwardResult{
		Awarded:   amount,
		TotalXP:   account.TotalXP,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		LeveledUp: newLevel > oldLevel,
		Daily: CapSnapshot{
			Used:      dailyTotal,
			Cap:       tier.Cap,
			Remaining: remaining,
			Tier:      tier,
		},
	}, nil
}

// AdminAdjust applies a direct delta to the lifetime account, bypassing the
// cooldown gate and the daily cap entirely. The total is clamped at zero
// and the level recomputed, so a negative delta can lower the level.
func (c *Coordinator) AdminAdjust(ctx context.Context, userID, guildID snowflake.ID, delta int64, reason string) (AwardResult, error) {
	if delta == 0 {
		return AwardResult{}, ErrInvalidAmount
	}

	var oldTotal int64
	existing, err := c.accounts.Get(ctx, userID.String(), guildID.String())
	if err != nil {
		return AwardResult{}, fmt.Errorf("failed to load account: %w", err)
	}
	if existing != nil {
		oldTotal = existing.TotalXP
	}

	account, err := c.accounts.AdjustTotal(ctx, userID.String(), guildID.String(), delta)
	if err != nil {
		return AwardResult{}, fmt.Errorf("failed to adjust account: %w", err)
	}

	oldLevel := account.Level
	newLevel := c.curve.LevelForXP(account.TotalXP)
	if newLevel != oldLevel {
		if err := c.accounts.SetLevel(ctx, userID.String(), guildID.String(), newLevel); err != nil {
			return AwardResult{}, fmt.Errorf("failed to persist level change: %w", err)
		}
	}

	slog.Info("Admin XP adjustment",
		slog.String("type", "cmd"),
		slog.String("user_id", userID.String()),
		slog.String("guild_id", guildID.String()),
		slog.Int64("delta", delta),
		slog.String("reason", reason),
		slog.Int("old_level", oldLevel),
		slog.Int("new_level", newLevel))

	// A large removal can clamp the total at zero, so report the change
	// that actually landed rather than the requested delta.
	return AwardResult{
		Awarded:   account.TotalXP - oldTotal,
		TotalXP:   account.TotalXP,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		LeveledUp: newLevel > oldLevel,
	}, nil
}
