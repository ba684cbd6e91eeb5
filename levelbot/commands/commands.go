package commands

import (
	"github.com/disgoorg/disgo/discord"
)

var Commands = []discord.ApplicationCommandCreate{
	Rank,
	Daily,
	Leaderboard,
	XPAdmin,
	BotStats,
	Version,
}
