package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/lumen-bots/levelbot/levelbot"
	"github.com/lumen-bots/levelbot/levelbot/leveling"
	"github.com/lumen-bots/levelbot/levelbot/logger"
	"github.com/lumen-bots/levelbot/levelbot/utils"
)

const awardTimeout = 10 * time.Second

// RollAmount picks a random raw XP amount inside the configured range.
func RollAmount(cfg levelbot.SourceConfig) int64 {
	if cfg.MaxXP <= cfg.MinXP {
		return cfg.MinXP
	}
	return cfg.MinXP + rand.Int63n(cfg.MaxXP-cfg.MinXP+1)
}

// TryAward runs the shared admission pipeline for one gateway event:
// cooldown gate, guild toggle, daily-cap check, then the coordinator.
// A nil result with nil error means the event was ineligible, which is an
// expected outcome rather than a failure.
func TryAward(b *levelbot.Bot, userID, guildID snowflake.ID, roles []snowflake.ID, src leveling.Source, amount int64, cooldown time.Duration) (*leveling.AwardResult, error) {
	if onCooldown, _ := b.Gate.OnCooldown(guildID, userID, src, cooldown); onCooldown {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), awardTimeout)
	defer cancel()

	guildCfg, err := b.GuildConfigRepository.GetOrDefault(ctx, guildID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load guild config: %w", err)
	}
	if !guildCfg.LevelingEnabled {
		return nil, nil
	}

	allowance, err := b.Coordinator.Ledger().CanGainXP(ctx, userID, guildID, roles)
	if err != nil {
		return nil, err
	}
	if !allowance.Allowed {
		return nil, nil
	}

	b.Gate.MarkUsed(guildID, userID, src)

	result, err := b.Coordinator.Award(ctx, leveling.AwardRequest{
		UserID:  userID,
		GuildID: guildID,
		Amount:  amount,
		Source:  src,
		Roles:   roles,
	})
	if err != nil {
		return nil, err
	}

	logger.LogAward(userID.String(), guildID.String(), string(src), result.Awarded, result.LeveledUp)

	if result.LeveledUp && guildCfg.AnnounceLevelUps {
		announceLevelUp(b, guildID, userID, guildCfg.LevelUpChannelID, result)
	}

	return &result, nil
}

func announceLevelUp(b *levelbot.Bot, guildID, userID snowflake.ID, channelID string, result leveling.AwardResult) {
	target, err := snowflake.Parse(channelID)
	if err != nil || target == 0 {
		return
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("🎉 Level Up!").
		SetDescriptionf("<@%s> reached **level %d**!", userID, result.NewLevel).
		SetColor(utils.SuccessColor).
		AddField("Total XP", utils.FormatXP(result.TotalXP), true).
		AddField("Daily XP", fmt.Sprintf("%s / %s", utils.FormatXP(result.Daily.Used), utils.FormatXP(result.Daily.Cap)), true).
		Build()

	if _, err := b.Client.Rest().CreateMessage(target, discord.MessageCreate{
		Embeds: []discord.Embed{embed},
	}); err != nil {
		slog.Error("Failed to announce level up",
			slog.String("type", "sys"),
			slog.String("guild_id", guildID.String()),
			slog.String("channel_id", channelID),
			slog.Any("error", err))
	}
}
