package voice

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/lumen-bots/levelbot/levelbot"
	"github.com/lumen-bots/levelbot/levelbot/database/models"
	"github.com/lumen-bots/levelbot/levelbot/leveling"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	maxConcurrentAwards = 8
	tickTimeout         = 2 * time.Minute
)

// AwardFunc runs the full admission pipeline for one award attempt.
// A nil result with nil error means the attempt was ineligible.
type AwardFunc func(b *levelbot.Bot, userID, guildID snowflake.ID, roles []snowflake.ID, src leveling.Source, amount int64, cooldown time.Duration) (*leveling.AwardResult, error)

// Ticker periodically grants voice XP to members currently in voice
// channels. Members alone in a channel (below the occupancy floor) earn
// nothing; muted or deafened members earn at the AFK-penalty rate unless
// exempted.
type Ticker struct {
	bot   *levelbot.Bot
	sem   *semaphore.Weighted
	roll  func(levelbot.SourceConfig) int64
	award AwardFunc
}

func NewTicker(b *levelbot.Bot, roll func(levelbot.SourceConfig) int64, award AwardFunc) *Ticker {
	return &Ticker{
		bot:   b,
		sem:   semaphore.NewWeighted(maxConcurrentAwards),
		roll:  roll,
		award: award,
	}
}

// Start runs the presence loop until ctx is cancelled.
func (t *Ticker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(t.bot.Cfg.Leveling.VoiceTracking.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, tickTimeout)
				t.tick(tickCtx)
				cancel()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (t *Ticker) tick(ctx context.Context) {
	sessions, err := t.bot.VoiceSessionRepository.GetAll(ctx)
	if err != nil {
		slog.Error("Failed to list voice sessions",
			slog.String("type", "db"),
			slog.Any("error", err))
		return
	}
	if len(sessions) == 0 {
		return
	}

	occupancy := make(map[string]int, len(sessions))
	for _, s := range sessions {
		occupancy[s.GuildID+":"+s.ChannelID]++
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, session := range sessions {
		session := session
		if occupancy[session.GuildID+":"+session.ChannelID] < t.bot.Cfg.Leveling.VoiceTracking.MinChannelOccupancy {
			continue
		}

		g.Go(func() error {
			if err := t.sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer t.sem.Release(1)

			t.awardSession(gctx, session)
			return nil
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		slog.Error("Voice tick aborted",
			slog.String("type", "xp"),
			slog.Any("error", err))
	}
}

func (t *Ticker) awardSession(ctx context.Context, session *models.VoiceSession) {
	userID, err := snowflake.Parse(session.UserID)
	if err != nil {
		return
	}
	guildID, err := snowflake.Parse(session.GuildID)
	if err != nil {
		return
	}

	var roles []snowflake.ID
	if member, ok := t.bot.Client.Caches().Member(guildID, userID); ok {
		roles = member.RoleIDs
	}

	cfg := t.bot.Cfg.Leveling
	amount := t.roll(cfg.Voice)
	if session.Muted || session.Deafened {
		mult := cfg.VoiceTracking.AFKMultiplier
		if t.isExempt(userID, roles) {
			mult = cfg.VoiceTracking.ExemptMultiplier
		}
		amount = int64(math.Round(float64(amount) * mult))
		if amount < 1 {
			amount = 1
		}
	}

	result, err := t.award(t.bot, userID, guildID, roles, leveling.SourceVoice, amount, cfg.Voice.Cooldown)
	if err != nil {
		slog.Error("Voice XP award failed",
			slog.String("type", "xp"),
			slog.String("user_id", session.UserID),
			slog.String("guild_id", session.GuildID),
			slog.Any("error", err))
		return
	}
	if result == nil {
		return
	}

	if err := t.bot.VoiceSessionRepository.TouchAward(ctx, session.UserID, session.GuildID, time.Now()); err != nil {
		slog.Error("Failed to touch voice session",
			slog.String("type", "db"),
			slog.String("user_id", session.UserID),
			slog.Any("error", err))
	}
}

func (t *Ticker) isExempt(userID snowflake.ID, roles []snowflake.ID) bool {
	for _, id := range t.bot.Cfg.Leveling.VoiceTracking.ExemptUsers {
		if id == userID {
			return true
		}
	}
	for _, exempt := range t.bot.Cfg.Leveling.VoiceTracking.ExemptRoles {
		for _, id := range roles {
			if id == exempt {
				return true
			}
		}
	}
	return false
}
