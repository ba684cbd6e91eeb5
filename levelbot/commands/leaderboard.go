package commands

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/lumen-bots/levelbot/levelbot"
	"github.com/lumen-bots/levelbot/levelbot/utils"
)

const leaderboardFetchLimit = 100

var Leaderboard = discord.SlashCommandCreate{
	Name:        "leaderboard",
	Description: "🏆 View the server XP leaderboard",
}

func LeaderboardHandler(b *levelbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works in a server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		accounts, err := b.AccountRepository.GetTop(ctx, e.GuildID().String(), leaderboardFetchLimit, 0)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch the leaderboard. Please try again later.")
		}
		if len(accounts) == 0 {
			return utils.EH.CreateInfoEmbed(e, "Nobody has earned XP yet. Start chatting!")
		}

		totalPages := int(math.Ceil(float64(len(accounts)) / float64(utils.EntriesPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * utils.EntriesPerPage
				endIdx := min(startIdx+utils.EntriesPerPage, len(accounts))

				var description strings.Builder
				for i, account := range accounts[startIdx:endIdx] {
					rank := startIdx + i + 1
					medal := fmt.Sprintf("`#%d`", rank)
					switch rank {
					case 1:
						medal = "🥇"
					case 2:
						medal = "🥈"
					case 3:
						medal = "🥉"
					}
					description.WriteString(fmt.Sprintf("%s <@%s> • Level %d (%s XP)\n",
						medal, account.UserID, account.Level, utils.FormatXP(account.TotalXP)))
				}

				embed.
					SetTitle("🏆 XP Leaderboard").
					SetDescription(description.String()).
					SetColor(utils.InfoColor).
					SetFooter(fmt.Sprintf("Page %d/%d", page+1, totalPages), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
