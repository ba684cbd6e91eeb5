package voice

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/lumen-bots/levelbot/levelbot"
	"github.com/lumen-bots/levelbot/levelbot/database/models"
)

// Tracker keeps the voice_sessions table in sync with gateway voice state.
// Sessions are ephemeral presence state; the ticker in this package walks
// them to grant voice XP.
type Tracker struct {
	bot *levelbot.Bot
}

func NewTracker(b *levelbot.Bot) *Tracker {
	return &Tracker{bot: b}
}

// Listener returns the gateway listener maintaining session rows.
func (t *Tracker) Listener() bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildVoiceStateUpdate) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		state := e.VoiceState
		userID := state.UserID.String()
		guildID := state.GuildID.String()

		if state.ChannelID == nil {
			if err := t.bot.VoiceSessionRepository.Delete(ctx, userID, guildID); err != nil {
				slog.Error("Failed to close voice session",
					slog.String("type", "db"),
					slog.String("user_id", userID),
					slog.String("guild_id", guildID),
					slog.Any("error", err))
			}
			return
		}

		if e.Member.User.Bot {
			return
		}

		session := &models.VoiceSession{
			UserID:    userID,
			GuildID:   guildID,
			ChannelID: state.ChannelID.String(),
			JoinTime:  time.Now(),
			Muted:     state.GuildMute || state.SelfMute,
			Deafened:  state.GuildDeaf || state.SelfDeaf,
		}
		if err := t.bot.VoiceSessionRepository.Upsert(ctx, session); err != nil {
			slog.Error("Failed to record voice session",
				slog.String("type", "db"),
				slog.String("user_id", userID),
				slog.String("guild_id", guildID),
				slog.Any("error", err))
		}
	})
}

// ClearStale wipes sessions left over from a previous process; the gateway
// will repopulate current ones as members reconnect or change state.
func (t *Tracker) ClearStale(ctx context.Context) error {
	return t.bot.VoiceSessionRepository.DeleteAll(ctx)
}
