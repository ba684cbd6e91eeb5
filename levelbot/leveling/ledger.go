package leveling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/lumen-bots/levelbot/levelbot/database/models"
	"github.com/lumen-bots/levelbot/levelbot/database/repositories"
)

// Ledger is the daily-cap accounting engine: per (user, guild, day) running
// totals split by source, the cap in effect for the day, and the decision
// whether a user may gain more XP today. Day boundaries come from the shared
// DayCycle. The ledger write itself never clips at the cap; admission is
// gated by CanGainXP in the caller.
type Ledger struct {
	progress repositories.DailyProgressRepository
	tiers    *TierResolver
	cycle    *DayCycle
	now      func() time.Time

	retentionDays int
}

func NewLedger(progress repositories.DailyProgressRepository, tiers *TierResolver, cycle *DayCycle, retentionDays int) *Ledger {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Ledger{
		progress:      progress,
		tiers:         tiers,
		cycle:         cycle,
		now:           time.Now,
		retentionDays: retentionDays,
	}
}

// Cycle returns the day cycle the ledger keys its rows by.
func (l *Ledger) Cycle() *DayCycle { return l.cycle }

// ResolveCap resolves the member's tier from the supplied role set and
// writes the result through to the current day's row, so cap comparisons
// later in the day see role changes.
func (l *Ledger) ResolveCap(ctx context.Context, userID, guildID snowflake.ID, roles []snowflake.ID) (Tier, error) {
	tier := l.tiers.Resolve(roles)
	day := l.cycle.EffectiveDay(l.now())
	if err := l.progress.UpsertTier(ctx, userID.String(), guildID.String(), day, tier.Cap, tier.Rank, tierRoleString(tier)); err != nil {
		return Tier{}, fmt.Errorf("failed to persist resolved tier: %w", err)
	}
	return tier, nil
}

// CanGainXP reports whether the user is still under today's cap. Absent
// rows count as zero state and are not persisted; the only write this call
// performs is tier reconciliation when the stored tier no longer matches
// the resolved one.
func (l *Ledger) CanGainXP(ctx context.Context, userID, guildID snowflake.ID, roles []snowflake.ID) (Allowance, error) {
	tier := l.tiers.Resolve(roles)
	day := l.cycle.EffectiveDay(l.now())

	row, err := l.progress.Get(ctx, userID.String(), guildID.String(), day)
	if err != nil {
		return Allowance{}, fmt.Errorf("failed to read daily progress: %w", err)
	}

	current := int64(0)
	dailyCap := tier.Cap
	if row != nil {
		current = row.TotalXP
		dailyCap = row.DailyCap
		if row.TierLevel != tier.Rank || row.DailyCap != tier.Cap {
			if err := l.progress.UpsertTier(ctx, userID.String(), guildID.String(), day, tier.Cap, tier.Rank, tierRoleString(tier)); err != nil {
				return Allowance{}, fmt.Errorf("failed to reconcile tier: %w", err)
			}
			dailyCap = tier.Cap
			slog.Debug("Reconciled daily cap tier",
				slog.String("type", "db"),
				slog.String("user_id", userID.String()),
				slog.String("guild_id", guildID.String()),
				slog.Int("old_tier", row.TierLevel),
				slog.Int("new_tier", tier.Rank))
		}
	}

	remaining := dailyCap - current
	if remaining < 0 {
		remaining = 0
	}
	return Allowance{
		Allowed:   current < dailyCap,
		CurrentXP: current,
		Cap:       dailyCap,
		Remaining: remaining,
		Tier:      tier,
	}, nil
}

// AddXP unconditionally adds amount to today's row for the given source and
// returns the new daily total. Callers are expected to have gated the award
// through CanGainXP; the write itself does not clip at the cap, so a single
// boundary-crossing award can push the stored total past it.
func (l *Ledger) AddXP(ctx context.Context, userID, guildID snowflake.ID, amount int64, src Source, roles []snowflake.ID) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if !src.Valid() {
		return 0, ErrUnknownSource
	}

	tier := l.tiers.Resolve(roles)
	day := l.cycle.EffectiveDay(l.now())

	delta := &models.DailyProgress{
		UserID:        userID.String(),
		GuildID:       guildID.String(),
		EffectiveDate: day,
		TotalXP:       amount,
		DailyCap:      tier.Cap,
		TierLevel:     tier.Rank,
		TierRoleID:    tierRoleString(tier),
	}
	switch src {
	case SourceMessage:
		delta.MessageXP = amount
	case SourceVoice:
		delta.VoiceXP = amount
	case SourceReaction:
		delta.ReactionXP = amount
	}

	total, err := l.progress.AddXP(ctx, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to record daily xp: %w", err)
	}
	return total, nil
}

// Snapshot returns the user's current daily-cap state for display.
func (l *Ledger) Snapshot(ctx context.Context, userID, guildID snowflake.ID, roles []snowflake.ID) (CapSnapshot, error) {
	allowance, err := l.CanGainXP(ctx, userID, guildID, roles)
	if err != nil {
		return CapSnapshot{}, err
	}
	return CapSnapshot{
		Used:      allowance.CurrentXP,
		Cap:       allowance.Cap,
		Remaining: allowance.Remaining,
		Tier:      allowance.Tier,
	}, nil
}

// ResetDaily wipes every day row strictly before the current effective day.
// Deleting everything older than today (rather than exactly yesterday)
// makes the reset catch up after multi-day downtime, and running it twice
// within the same effective day is a no-op the second time.
func (l *Ledger) ResetDaily(ctx context.Context) (int64, error) {
	day := l.cycle.EffectiveDay(l.now())
	deleted, err := l.progress.DeleteBefore(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("daily reset failed: %w", err)
	}
	slog.Info("Daily XP reset complete",
		slog.String("type", "sys"),
		slog.String("effective_day", day),
		slog.Int64("rows_deleted", deleted))
	return deleted, nil
}

// CleanupOldRecords purges rows older than the retention window. Storage
// hygiene only; the cutoff is always in the past so the current day's rows
// are never touched.
func (l *Ledger) CleanupOldRecords(ctx context.Context) (int64, error) {
	cutoff := l.cycle.RetentionCutoff(l.now(), l.retentionDays)
	deleted, err := l.progress.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("daily progress cleanup failed: %w", err)
	}
	if deleted > 0 {
		slog.Info("Purged expired daily progress rows",
			slog.String("type", "sys"),
			slog.String("cutoff", cutoff),
			slog.Int64("rows_deleted", deleted))
	}
	return deleted, nil
}

func tierRoleString(t Tier) string {
	if t.RoleID == 0 {
		return ""
	}
	return t.RoleID.String()
}
