package commands

import (
	"fmt"
	"runtime"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/lumen-bots/levelbot/levelbot"
	"github.com/lumen-bots/levelbot/levelbot/utils"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

var startTime = time.Now()

var BotStats = discord.SlashCommandCreate{
	Name:        "botstats",
	Description: "🖥️ View bot and host statistics",
}

func BotStatsHandler(b *levelbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		cpuCount, _ := cpu.Counts(true)
		cpuPercent, _ := cpu.Percent(0, false)
		vm, _ := mem.VirtualMemory()
		hostInfo, _ := host.Info()

		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)

		cpuUsage := "n/a"
		if len(cpuPercent) > 0 {
			cpuUsage = fmt.Sprintf("%.1f%%", cpuPercent[0])
		}
		platform := "unknown"
		if hostInfo != nil {
			platform = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
		}
		memUsage := "n/a"
		if vm != nil {
			memUsage = fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
		}

		var guilds int
		b.Client.Caches().GuildsForEach(func(discord.Guild) {
			guilds++
		})

		embed := discord.NewEmbedBuilder().
			SetTitle("🖥️ Bot Statistics").
			SetColor(utils.InfoColor).
			AddField("💻 OS", platform, true).
			AddField("🐹 Go Version", runtime.Version(), true).
			AddField("🔼 CPUs", fmt.Sprintf("%d", cpuCount), true).
			AddField("🔥 CPU Usage", cpuUsage, true).
			AddField("🧠 System Memory", memUsage, true).
			AddField("📦 Heap In Use", fmt.Sprintf("%d MB", ms.HeapInuse/1024/1024), true).
			AddField("🚀 Goroutines", fmt.Sprintf("%d", runtime.NumGoroutine()), true).
			AddField("🌍 Guilds", fmt.Sprintf("%d", guilds), true).
			AddField("⏱️ Uptime", utils.FormatDuration(time.Since(startTime)), true).
			SetFooterTextf("Version %s", b.Version).
			Build()

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{embed},
		})
	}
}
