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

var Daily = discord.SlashCommandCreate{
	Name:        "daily",
	Description: "⏰ Check how much XP you can still earn today",
}

func DailyHandler(b *levelbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		member := e.Member()
		if member == nil || e.GuildID() == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works in a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		ledger := b.Coordinator.Ledger()
		snapshot, err := ledger.Snapshot(ctx, e.User().ID, *e.GuildID(), member.RoleIDs)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch daily progress. Please try again later.")
		}

		pct := float64(0)
		if snapshot.Cap > 0 {
			pct = float64(snapshot.Used) / float64(snapshot.Cap) * 100
		}

		var status string
		if snapshot.Remaining <= 0 {
			status = "Daily cap reached. Come back after the reset!"
		} else {
			status = fmt.Sprintf("**%s XP** still available today", utils.FormatXP(snapshot.Remaining))
		}

		reset := ledger.Cycle().NextReset(time.Now())
		embed := discord.NewEmbedBuilder().
			SetTitle("⏰ Daily XP").
			SetDescriptionf("%s\n%s  %.1f%%", status, utils.ProgressBar(pct, 12), pct).
			SetColor(utils.InfoColor).
			AddField("Used", fmt.Sprintf("%s / %s", utils.FormatXP(snapshot.Used), utils.FormatXP(snapshot.Cap)), true).
			AddField("Resets", fmt.Sprintf("<t:%d:R>", reset.Unix()), true)

		if snapshot.Tier.Rank > 0 {
			embed.AddField("Tier", fmt.Sprintf("Rank %d (<@&%s>)", snapshot.Tier.Rank, snapshot.Tier.RoleID), true)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{embed.Build()},
		})
	}
}
