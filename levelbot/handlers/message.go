package handlers

import (
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/lumen-bots/levelbot/levelbot"
	"github.com/lumen-bots/levelbot/levelbot/leveling"
)

// MessageListener grants message XP for guild messages. The member's role
// set is projected from the gateway event; the core never sees platform
// objects.
func MessageListener(b *levelbot.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildMessageCreate) {
		if e.Message.Author.Bot || e.Message.Author.System {
			return
		}

		var roles []snowflake.ID
		if e.Message.Member != nil {
			roles = e.Message.Member.RoleIDs
		}

		cfg := b.Cfg.Leveling.Message
		if _, err := TryAward(b, e.Message.Author.ID, e.GuildID, roles, leveling.SourceMessage, RollAmount(cfg), cfg.Cooldown); err != nil {
			slog.Error("Message XP award failed",
				slog.String("type", "xp"),
				slog.String("user_id", e.Message.Author.ID.String()),
				slog.String("guild_id", e.GuildID.String()),
				slog.Any("error", err))
		}
	})
}
