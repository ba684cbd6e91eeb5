package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/lumen-bots/levelbot/levelbot"
	"github.com/lumen-bots/levelbot/levelbot/utils"
)

var Rank = discord.SlashCommandCreate{
	Name:        "rank",
	Description: "📊 View your level and XP progress",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "View another member's rank",
			Required:    false,
		},
	},
}

func RankHandler(b *levelbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		target := e.User()
		if u, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			target = u
		}
		if e.GuildID() == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works in a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		account, err := b.AccountRepository.Get(ctx, target.ID.String(), e.GuildID().String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch rank data. Please try again later.")
		}

		var totalXP int64
		if account != nil {
			totalXP = account.TotalXP
		}
		progress := b.Coordinator.Curve().ProgressFor(totalXP)

		var next string
		if progress.ToNext == 0 {
			next = "Max level reached"
		} else {
			next = fmt.Sprintf("%s XP to level %d", utils.FormatXP(progress.ToNext), progress.Level+1)
		}

		description := fmt.Sprintf("**Level %d**\n%s  %.1f%%\n%s",
			progress.Level,
			utils.ProgressBar(progress.Percent, 12),
			progress.Percent,
			next,
		)

		embed := discord.NewEmbedBuilder().
			SetTitlef("📊 %s's Rank", target.Username).
			SetDescription(description).
			SetColor(utils.InfoColor).
			AddField("Total XP", utils.FormatXP(totalXP), true)

		if account != nil {
			embed.AddField("Messages", utils.FormatXP(account.MessageCount), true).
				AddField("Voice Minutes", utils.FormatXP(account.VoiceMinutes), true)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{embed.Build()},
		})
	}
}
