package leveling

import (
	"testing"
)

func defaultCurve(t *testing.T) *Curve {
	t.Helper()
	c, err := NewCurve(DefaultCurveConfig())
	if err != nil {
		t.Fatalf("NewCurve() error = %v", err)
	}
	return c
}

func TestNewCurve_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CurveConfig)
		wantErr bool
	}{
		{
			name:    "default config",
			mutate:  func(*CurveConfig) {},
			wantErr: false,
		},
		{
			name:    "zero base xp",
			mutate:  func(c *CurveConfig) { c.BaseXP = 0 },
			wantErr: true,
		},
		{
			name:    "negative base xp",
			mutate:  func(c *CurveConfig) { c.BaseXP = -100 },
			wantErr: true,
		},
		{
			name:    "zero max level",
			mutate:  func(c *CurveConfig) { c.MaxLevel = 0 },
			wantErr: true,
		},
		{
			name:    "unknown kind",
			mutate:  func(c *CurveConfig) { c.Kind = "parabolic" },
			wantErr: true,
		},
		{
			name:    "negative threshold",
			mutate:  func(c *CurveConfig) { c.EarlyLevelThreshold = -1 },
			wantErr: true,
		},
		{
			name:    "threshold without penalty",
			mutate:  func(c *CurveConfig) { c.EarlyLevelPenalty = 0 },
			wantErr: true,
		},
		{
			name: "linear kind",
			mutate: func(c *CurveConfig) {
				c.Kind = CurveLinear
			},
			wantErr: false,
		},
		{
			name: "logarithmic kind",
			mutate: func(c *CurveConfig) {
				c.Kind = CurveLogarithmic
			},
			wantErr: false,
		},
		{
			name: "no early segment",
			mutate: func(c *CurveConfig) {
				c.EarlyLevelThreshold = 0
				c.EarlyLevelPenalty = 0
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCurveConfig()
			tt.mutate(&cfg)
			_, err := NewCurve(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCurve() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCurve_XPForLevel(t *testing.T) {
	c := defaultCurve(t)

	tests := []struct {
		name  string
		level int
		want  int64
	}{
		{name: "level zero is free", level: 0, want: 0},
		{name: "negative level is free", level: -3, want: 0},
		// 500 * 1^(1.75*1.8) = 500
		{name: "first level", level: 1, want: 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.XPForLevel(tt.level); got != tt.want {
				t.Errorf("XPForLevel(%d) = %d, want %d", tt.level, got, tt.want)
			}
		})
	}

	t.Run("saturates past max level", func(t *testing.T) {
		if got, want := c.XPForLevel(200), c.XPForLevel(c.MaxLevel()); got != want {
			t.Errorf("XPForLevel(200) = %d, want %d", got, want)
		}
	})
}

func TestCurve_Monotonic(t *testing.T) {
	configs := map[string]CurveConfig{
		"default":     DefaultCurveConfig(),
		"linear":      {BaseXP: 100, Multiplier: 2, Kind: CurveLinear, MaxLevel: 100, EarlyLevelThreshold: 5, EarlyLevelPenalty: 2},
		"logarithmic": {BaseXP: 1000, Multiplier: 1.2, Kind: CurveLogarithmic, MaxLevel: 60, EarlyLevelThreshold: 10, EarlyLevelPenalty: 1.8},
		"no penalty":  {BaseXP: 500, Multiplier: 1.75, Kind: CurveExponential, MaxLevel: 50},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			c, err := NewCurve(cfg)
			if err != nil {
				t.Fatalf("NewCurve() error = %v", err)
			}
			prev := int64(-1)
			for l := 0; l <= cfg.MaxLevel; l++ {
				req := c.XPForLevel(l)
				if req < prev {
					t.Fatalf("XPForLevel(%d) = %d, below XPForLevel(%d) = %d", l, req, l-1, prev)
				}
				prev = req
			}
		})
	}
}

func TestCurve_InverseConsistency(t *testing.T) {
	c := defaultCurve(t)

	for l := 0; l <= c.MaxLevel(); l++ {
		xp := c.XPForLevel(l)
		if got := c.LevelForXP(xp); got != l {
			// Equal requirements across adjacent levels collapse to the
			// higher one; only a lower result is a real inversion failure.
			if got < l {
				t.Errorf("LevelForXP(XPForLevel(%d)) = %d", l, got)
			}
		}
		if l > 0 {
			if got := c.LevelForXP(xp - 1); got >= l && c.XPForLevel(l) > c.XPForLevel(l-1) {
				t.Errorf("LevelForXP(%d) = %d, want below %d", xp-1, got, l)
			}
		}
	}
}

func TestCurve_LevelForXP(t *testing.T) {
	c := defaultCurve(t)

	tests := []struct {
		name string
		xp   int64
		want int
	}{
		{name: "zero xp", xp: 0, want: 0},
		{name: "negative xp", xp: -50, want: 0},
		{name: "one below first level", xp: 499, want: 0},
		{name: "exactly first level", xp: 500, want: 1},
		{name: "just past first level", xp: 501, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.LevelForXP(tt.xp); got != tt.want {
				t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
			}
		})
	}

	t.Run("saturates at max level", func(t *testing.T) {
		huge := c.XPForLevel(c.MaxLevel()) * 10
		if got := c.LevelForXP(huge); got != c.MaxLevel() {
			t.Errorf("LevelForXP(%d) = %d, want %d", huge, got, c.MaxLevel())
		}
	})
}

func TestCurve_ProgressFor(t *testing.T) {
	c := defaultCurve(t)

	t.Run("mid level", func(t *testing.T) {
		floor := c.XPForLevel(3)
		next := c.XPForLevel(4)
		xp := floor + (next-floor)/2

		p := c.ProgressFor(xp)
		if p.Level != 3 {
			t.Errorf("Level = %d, want 3", p.Level)
		}
		if p.ToNext != next-xp {
			t.Errorf("ToNext = %d, want %d", p.ToNext, next-xp)
		}
		if p.Percent < 49 || p.Percent > 51 {
			t.Errorf("Percent = %.2f, want ~50", p.Percent)
		}
	})

	t.Run("max level saturates", func(t *testing.T) {
		p := c.ProgressFor(c.XPForLevel(c.MaxLevel()) + 1_000_000)
		if p.Level != c.MaxLevel() {
			t.Errorf("Level = %d, want %d", p.Level, c.MaxLevel())
		}
		if p.ToNext != 0 {
			t.Errorf("ToNext = %d, want 0", p.ToNext)
		}
		if p.Percent != 100 {
			t.Errorf("Percent = %.2f, want 100", p.Percent)
		}
	})

	t.Run("fresh account", func(t *testing.T) {
		p := c.ProgressFor(0)
		if p.Level != 0 {
			t.Errorf("Level = %d, want 0", p.Level)
		}
		if p.NextRequired != 500 {
			t.Errorf("NextRequired = %d, want 500", p.NextRequired)
		}
	})
}
