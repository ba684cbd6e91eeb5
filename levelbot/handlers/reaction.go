package handlers

import (
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/lumen-bots/levelbot/levelbot"
	"github.com/lumen-bots/levelbot/levelbot/leveling"
)

// ReactionListener grants reaction XP when a member adds a reaction.
func ReactionListener(b *levelbot.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildMessageReactionAdd) {
		if e.Member.User.Bot || e.Member.User.System {
			return
		}

		cfg := b.Cfg.Leveling.Reaction
		if _, err := TryAward(b, e.UserID, e.GuildID, e.Member.RoleIDs, leveling.SourceReaction, RollAmount(cfg), cfg.Cooldown); err != nil {
			slog.Error("Reaction XP award failed",
				slog.String("type", "xp"),
				slog.String("user_id", e.UserID.String()),
				slog.String("guild_id", e.GuildID.String()),
				slog.Any("error", err))
		}
	})
}
