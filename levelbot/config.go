package levelbot

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/lumen-bots/levelbot/levelbot/database"
	"github.com/lumen-bots/levelbot/levelbot/leveling"
	"github.com/pelletier/go-toml/v2"
)

// LoadConfig reads the toml config, applies environment overrides for
// secrets, and validates everything the XP core depends on. Components
// receive their slice of this struct at construction; nothing re-reads
// raw configuration at call time.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}

	if token := os.Getenv("LEVELBOT_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	if pass := os.Getenv("LEVELBOT_DB_PASSWORD"); pass != "" {
		cfg.DB.Password = pass
	}

	cfg.Leveling.applyDefaults()
	if err := cfg.Leveling.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log      LogConfig         `toml:"log"`
	Bot      BotConfig         `toml:"bot"`
	DB       database.DBConfig `toml:"db"`
	Leveling LevelingConfig    `toml:"leveling"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

// SourceConfig is the per-source XP range and cooldown window.
type SourceConfig struct {
	MinXP    int64         `toml:"min_xp"`
	MaxXP    int64         `toml:"max_xp"`
	Cooldown time.Duration `toml:"cooldown"`
}

// VoiceConfig tunes the presence ticker and the AFK suppression rule.
type VoiceConfig struct {
	TickInterval        time.Duration  `toml:"tick_interval"`
	MinChannelOccupancy int            `toml:"min_channel_occupancy"`
	AFKMultiplier       float64        `toml:"afk_multiplier"`
	ExemptUsers         []snowflake.ID `toml:"exempt_users"`
	ExemptRoles         []snowflake.ID `toml:"exempt_roles"`
	ExemptMultiplier    float64        `toml:"exempt_multiplier"`
}

type LevelingConfig struct {
	BaseDailyCap     int64                `toml:"base_daily_cap"`
	ResetHour        int                  `toml:"reset_hour"`
	ResetMinute      int                  `toml:"reset_minute"`
	Timezone         string               `toml:"timezone"`
	GlobalMultiplier float64              `toml:"global_multiplier"`
	RetentionDays    int                  `toml:"retention_days"`
	Curve            leveling.CurveConfig `toml:"curve"`
	Tiers            []leveling.TierSlot  `toml:"tiers"`
	Message          SourceConfig         `toml:"message"`
	Reaction         SourceConfig         `toml:"reaction"`
	Voice            SourceConfig         `toml:"voice"`
	VoiceTracking    VoiceConfig          `toml:"voice_tracking"`
}

func (c *LevelingConfig) applyDefaults() {
	if c.BaseDailyCap == 0 {
		c.BaseDailyCap = 15000
	}
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
	if c.GlobalMultiplier == 0 {
		c.GlobalMultiplier = 1
	}
	if c.RetentionDays == 0 {
		c.RetentionDays = 30
	}
	if c.Curve == (leveling.CurveConfig{}) {
		c.Curve = leveling.DefaultCurveConfig()
	}
	if c.Message == (SourceConfig{}) {
		c.Message = SourceConfig{MinXP: 15, MaxXP: 40, Cooldown: time.Minute}
	}
	if c.Reaction == (SourceConfig{}) {
		c.Reaction = SourceConfig{MinXP: 5, MaxXP: 15, Cooldown: 5 * time.Minute}
	}
	if c.Voice == (SourceConfig{}) {
		c.Voice = SourceConfig{MinXP: 10, MaxXP: 20, Cooldown: 5 * time.Minute}
	}
	if c.VoiceTracking.TickInterval == 0 {
		c.VoiceTracking.TickInterval = time.Minute
	}
	if c.VoiceTracking.MinChannelOccupancy == 0 {
		c.VoiceTracking.MinChannelOccupancy = 2
	}
	if c.VoiceTracking.AFKMultiplier == 0 {
		c.VoiceTracking.AFKMultiplier = 0.25
	}
	if c.VoiceTracking.ExemptMultiplier == 0 {
		c.VoiceTracking.ExemptMultiplier = 1
	}
}

func (c *LevelingConfig) validate() error {
	if c.BaseDailyCap <= 0 {
		return fmt.Errorf("leveling config: base_daily_cap must be positive, got %d", c.BaseDailyCap)
	}
	if c.ResetHour < 0 || c.ResetHour > 23 {
		return fmt.Errorf("leveling config: reset_hour out of range: %d", c.ResetHour)
	}
	if c.ResetMinute < 0 || c.ResetMinute > 59 {
		return fmt.Errorf("leveling config: reset_minute out of range: %d", c.ResetMinute)
	}
	if _, err := leveling.NewDayCycle(c.Timezone, c.ResetHour, c.ResetMinute); err != nil {
		return err
	}
	if c.GlobalMultiplier <= 0 {
		return fmt.Errorf("leveling config: global_multiplier must be positive, got %f", c.GlobalMultiplier)
	}
	if _, err := leveling.NewCurve(c.Curve); err != nil {
		return err
	}
	for name, src := range map[string]SourceConfig{"message": c.Message, "reaction": c.Reaction, "voice": c.Voice} {
		if src.MinXP <= 0 || src.MaxXP < src.MinXP {
			return fmt.Errorf("leveling config: invalid %s xp range [%d, %d]", name, src.MinXP, src.MaxXP)
		}
	}
	return nil
}
