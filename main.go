package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/joho/godotenv"
	"github.com/lumen-bots/levelbot/levelbot"
	"github.com/lumen-bots/levelbot/levelbot/commands"
	"github.com/lumen-bots/levelbot/levelbot/database"
	"github.com/lumen-bots/levelbot/levelbot/database/repositories"
	"github.com/lumen-bots/levelbot/levelbot/handlers"
	"github.com/lumen-bots/levelbot/levelbot/leveling"
	"github.com/lumen-bots/levelbot/levelbot/logger"
	"github.com/lumen-bots/levelbot/levelbot/voice"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := levelbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	customHandler := logger.NewHandler(cfg.Log.Level)
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Levelbot",
		slog.String("version", version),
		slog.String("commit", commit))

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}

	b := levelbot.New(*cfg, version, commit)
	b.DB = db

	b.AccountRepository = repositories.NewXPAccountRepository(db.BunDB())
	b.ProgressRepository = repositories.NewDailyProgressRepository(db.BunDB())
	b.VoiceSessionRepository = repositories.NewVoiceSessionRepository(db.BunDB())
	b.GuildConfigRepository = repositories.NewGuildConfigRepository(db.BunDB())

	lcfg := cfg.Leveling
	curve, err := leveling.NewCurve(lcfg.Curve)
	if err != nil {
		slog.Error("Invalid level curve", slog.Any("error", err))
		os.Exit(-1)
	}
	cycle, err := leveling.NewDayCycle(lcfg.Timezone, lcfg.ResetHour, lcfg.ResetMinute)
	if err != nil {
		slog.Error("Invalid day cycle", slog.Any("error", err))
		os.Exit(-1)
	}
	tiers := leveling.NewTierResolver(lcfg.BaseDailyCap, lcfg.Tiers)
	ledger := leveling.NewLedger(b.ProgressRepository, tiers, cycle, lcfg.RetentionDays)
	b.Coordinator = leveling.NewCoordinator(b.AccountRepository, ledger, curve, lcfg.GlobalMultiplier)
	b.Gate = leveling.NewCooldownGate()

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	b.Gate.StartCleanupRoutine(runCtx, 24*time.Hour)
	leveling.NewScheduler(ledger, cycle).Start(runCtx)

	tracker := voice.NewTracker(b)
	if err := tracker.ClearStale(ctx); err != nil {
		slog.Error("Failed to clear stale voice sessions", slog.Any("error", err))
	}
	voiceTicker := voice.NewTicker(b, handlers.RollAmount, handlers.TryAward)

	h := handler.New()
	h.Command("/rank", handlers.WrapWithLogging("rank", commands.RankHandler(b)))
	h.Command("/daily", handlers.WrapWithLogging("daily", commands.DailyHandler(b)))
	h.Command("/leaderboard", handlers.WrapWithLogging("leaderboard", commands.LeaderboardHandler(b)))
	h.Command("/xpadmin", handlers.WrapWithLogging("xpadmin", commands.XPAdminHandler(b)))
	h.Command("/botstats", handlers.WrapWithLogging("botstats", commands.BotStatsHandler(b)))
	h.Command("/version", commands.VersionHandler(b))

	if err = b.SetupBot(h,
		bot.NewListenerFunc(b.OnReady),
		handlers.MessageListener(b),
		handlers.ReactionListener(b),
		tracker.Listener(),
	); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)))
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	voiceTicker.Start(runCtx)

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}
