package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/lumen-bots/levelbot/levelbot"
	"github.com/lumen-bots/levelbot/levelbot/database/models"
	"github.com/lumen-bots/levelbot/levelbot/utils"
)

var XPAdmin = discord.SlashCommandCreate{
	Name:        "xpadmin",
	Description: "🔧 Manage XP accounts and guild leveling settings",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "add",
			Description: "Grant XP to a user",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to grant XP to",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "amount",
					Description: "XP amount to add",
					Required:    true,
					MinValue:    utils.Ptr(1),
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Why this adjustment is made",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "remove",
			Description: "Take XP away from a user",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to take XP from",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "amount",
					Description: "XP amount to remove",
					Required:    true,
					MinValue:    utils.Ptr(1),
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Why this adjustment is made",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "reset-user",
			Description: "Delete a user's XP account entirely",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user whose account to delete",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "reset-daily",
			Description: "Wipe all daily progress rows for the current cycle",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "config",
			Description: "Change guild leveling settings",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionBool{
					Name:        "enabled",
					Description: "Whether XP gain is enabled in this guild",
					Required:    false,
				},
				discord.ApplicationCommandOptionBool{
					Name:        "announce",
					Description: "Whether level-ups are announced",
					Required:    false,
				},
				discord.ApplicationCommandOptionChannel{
					Name:        "channel",
					Description: "Channel for level-up announcements",
					Required:    false,
				},
			},
		},
	},
}

func XPAdminHandler(b *levelbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		member := e.Member()
		if member == nil || e.GuildID() == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works in a server.")
		}
		if !member.Permissions.Has(discord.PermissionAdministrator) {
			return utils.EH.CreateErrorEmbed(e, "You need the Administrator permission to use this command.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		data := e.SlashCommandInteractionData()
		switch *data.SubCommandName {
		case "add":
			return handleAdjust(ctx, b, e, data, 1)
		case "remove":
			return handleAdjust(ctx, b, e, data, -1)
		case "reset-user":
			return handleResetUser(ctx, b, e, data)
		case "reset-daily":
			return handleResetDaily(ctx, b, e)
		case "config":
			return handleGuildConfig(ctx, b, e, data)
		default:
			return utils.EH.CreateErrorEmbed(e, "Unknown subcommand.")
		}
	}
}

func handleAdjust(ctx context.Context, b *levelbot.Bot, e *handler.CommandEvent, data discord.SlashCommandInteractionData, sign int64) error {
	target := data.User("user")
	amount := int64(data.Int("amount"))
	reason := data.String("reason")
	if reason == "" {
		reason = "manual adjustment"
	}

	result, err := b.Coordinator.AdminAdjust(ctx, target.ID, *e.GuildID(), sign*amount, reason)
	if err != nil {
		slog.Error("Admin XP adjustment failed",
			slog.String("type", "cmd"),
			slog.String("target_user_id", target.ID.String()),
			slog.Any("error", err))
		return utils.EH.CreateErrorEmbed(e, "Failed to adjust XP. Please try again later.")
	}

	verb := "Added"
	if sign < 0 {
		verb = "Removed"
	}
	description := fmt.Sprintf("%s **%s XP** for **%s**.\nTotal: %s XP (level %d)",
		verb, utils.FormatXP(amount), target.Username,
		utils.FormatXP(result.TotalXP), result.NewLevel)
	if result.LeveledUp || result.NewLevel != result.OldLevel {
		description += fmt.Sprintf("\nLevel changed: %d → %d", result.OldLevel, result.NewLevel)
	}
	return utils.EH.CreateSuccessEmbed(e, description)
}

func handleResetUser(ctx context.Context, b *levelbot.Bot, e *handler.CommandEvent, data discord.SlashCommandInteractionData) error {
	target := data.User("user")
	if err := b.AccountRepository.Delete(ctx, target.ID.String(), e.GuildID().String()); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to delete the XP account. Please try again later.")
	}

	slog.Info("XP account deleted",
		slog.String("type", "cmd"),
		slog.String("admin_id", e.User().ID.String()),
		slog.String("target_user_id", target.ID.String()))

	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Deleted the XP account of **%s**.", target.Username))
}

func handleResetDaily(ctx context.Context, b *levelbot.Bot, e *handler.CommandEvent) error {
	removed, err := b.Coordinator.Ledger().ResetDaily(ctx)
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to reset daily progress. Please try again later.")
	}

	slog.Info("Daily progress reset by admin",
		slog.String("type", "cmd"),
		slog.String("admin_id", e.User().ID.String()),
		slog.Int64("rows_removed", removed))

	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Reset daily progress. %d rows removed.", removed))
}

func handleGuildConfig(ctx context.Context, b *levelbot.Bot, e *handler.CommandEvent, data discord.SlashCommandInteractionData) error {
	guildID := e.GuildID().String()
	cfg, err := b.GuildConfigRepository.GetOrDefault(ctx, guildID)
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to load guild settings. Please try again later.")
	}

	// Work on a copy so a failed write does not poison the cache entry.
	updated := models.GuildConfig{
		GuildID:          guildID,
		LevelingEnabled:  cfg.LevelingEnabled,
		AnnounceLevelUps: cfg.AnnounceLevelUps,
		LevelUpChannelID: cfg.LevelUpChannelID,
		CreatedAt:        cfg.CreatedAt,
	}
	if enabled, ok := data.OptBool("enabled"); ok {
		updated.LevelingEnabled = enabled
	}
	if announce, ok := data.OptBool("announce"); ok {
		updated.AnnounceLevelUps = announce
	}
	if channel, ok := data.OptChannel("channel"); ok {
		updated.LevelUpChannelID = channel.ID.String()
	}

	if err := b.GuildConfigRepository.Upsert(ctx, &updated); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to save guild settings. Please try again later.")
	}

	channelDisplay := "not set"
	if updated.LevelUpChannelID != "" {
		channelDisplay = fmt.Sprintf("<#%s>", updated.LevelUpChannelID)
	}
	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
		"Guild settings saved.\nLeveling: **%t**\nAnnouncements: **%t**\nChannel: %s",
		updated.LevelingEnabled, updated.AnnounceLevelUps, channelDisplay))
}
