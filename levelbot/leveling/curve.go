package leveling

import (
	"fmt"
	"math"
)

type CurveKind string

const (
	CurveExponential CurveKind = "exponential"
	CurveLinear      CurveKind = "linear"
	CurveLogarithmic CurveKind = "logarithmic"
)

// CurveConfig parameterizes the XP-to-level mapping.
type CurveConfig struct {
	BaseXP              int64     `toml:"base_xp"`
	Multiplier          float64   `toml:"multiplier"`
	Kind                CurveKind `toml:"kind"`
	MaxLevel            int       `toml:"max_level"`
	EarlyLevelThreshold int       `toml:"early_level_threshold"`
	EarlyLevelPenalty   float64   `toml:"early_level_penalty"`
}

func DefaultCurveConfig() CurveConfig {
	return CurveConfig{
		BaseXP:              500,
		Multiplier:          1.75,
		Kind:                CurveExponential,
		MaxLevel:            50,
		EarlyLevelThreshold: 10,
		EarlyLevelPenalty:   1.8,
	}
}

// Curve is the pure mapping between cumulative XP and level. Both directions
// are consistent: LevelForXP(xp) is the largest L with XPForLevel(L) <= xp.
//
// Levels at or below EarlyLevelThreshold use Multiplier * EarlyLevelPenalty.
// Above the threshold the smooth curve is anchored at the threshold value so
// the overall requirement stays non-decreasing even when the penalty makes
// the early segment steeper than the smooth curve.
type Curve struct {
	cfg CurveConfig
}

// NewCurve validates the configuration and returns a Curve. Non-monotonic
// parameter combinations are rejected here so the rest of the system can
// rely on the inverse being well-defined.
func NewCurve(cfg CurveConfig) (*Curve, error) {
	if cfg.BaseXP <= 0 {
		return nil, fmt.Errorf("curve config: base_xp must be positive, got %d", cfg.BaseXP)
	}
	if cfg.MaxLevel <= 0 {
		return nil, fmt.Errorf("curve config: max_level must be positive, got %d", cfg.MaxLevel)
	}
	if cfg.EarlyLevelThreshold < 0 {
		return nil, fmt.Errorf("curve config: early_level_threshold must not be negative, got %d", cfg.EarlyLevelThreshold)
	}
	if cfg.EarlyLevelThreshold > 0 && cfg.EarlyLevelPenalty <= 0 {
		return nil, fmt.Errorf("curve config: early_level_penalty must be positive, got %f", cfg.EarlyLevelPenalty)
	}
	switch cfg.Kind {
	case CurveExponential, CurveLinear, CurveLogarithmic:
	default:
		return nil, fmt.Errorf("curve config: unknown kind %q", cfg.Kind)
	}

	c := &Curve{cfg: cfg}

	prev := int64(0)
	for l := 0; l <= cfg.MaxLevel; l++ {
		req := c.XPForLevel(l)
		if req < prev {
			return nil, fmt.Errorf("curve config: required xp decreases from level %d (%d) to level %d (%d)", l-1, prev, l, req)
		}
		prev = req
	}

	// Round-trip self-check on a mid-curve level.
	probe := 10
	if probe > cfg.MaxLevel {
		probe = cfg.MaxLevel
	}
	if got := c.LevelForXP(c.XPForLevel(probe)); got != probe {
		return nil, fmt.Errorf("curve config: inverse self-check failed, levelFor(xpFor(%d)) = %d", probe, got)
	}

	return c, nil
}

func (c *Curve) MaxLevel() int { return c.cfg.MaxLevel }

// raw evaluates the smooth curve formula for one level with the given
// multiplier, before flooring.
func (c *Curve) raw(level int, mult float64) float64 {
	base := float64(c.cfg.BaseXP)
	lvl := float64(level)

	switch c.cfg.Kind {
	case CurveLinear:
		return base * lvl * mult
	case CurveLogarithmic:
		return base * math.Log(lvl+1) * mult * 2
	default: // exponential
		return base * math.Pow(lvl, mult)
	}
}

// XPForLevel returns the cumulative XP required to hold the given level.
// Level 0 always requires 0 XP; levels past MaxLevel cost the same as MaxLevel.
func (c *Curve) XPForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	if level > c.cfg.MaxLevel {
		level = c.cfg.MaxLevel
	}

	threshold := c.cfg.EarlyLevelThreshold
	if threshold <= 0 || level <= threshold {
		mult := c.cfg.Multiplier
		if threshold > 0 {
			mult *= c.cfg.EarlyLevelPenalty
		}
		return int64(math.Floor(c.raw(level, mult)))
	}

	// Past the threshold the smooth curve continues from the penalized
	// threshold value, keeping the requirement non-decreasing.
	anchor := int64(math.Floor(c.raw(threshold, c.cfg.Multiplier*c.cfg.EarlyLevelPenalty)))
	delta := c.raw(level, c.cfg.Multiplier) - c.raw(threshold, c.cfg.Multiplier)
	if delta < 0 {
		delta = 0
	}
	return anchor + int64(math.Floor(delta))
}

// LevelForXP returns the highest level whose requirement is covered by xp,
// saturating at MaxLevel. Negative or zero XP is level 0.
func (c *Curve) LevelForXP(xp int64) int {
	if xp <= 0 {
		return 0
	}

	lo, hi := 0, c.cfg.MaxLevel
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.XPForLevel(mid) <= xp {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Progress describes where a total XP value sits within its level.
type Progress struct {
	Level        int
	CurrentFloor int64
	NextRequired int64
	ToNext       int64
	Percent      float64
}

// ProgressFor computes within-level progress for a cumulative XP value.
// At MaxLevel, ToNext is 0 and Percent is 100.
func (c *Curve) ProgressFor(xp int64) Progress {
	if xp < 0 {
		xp = 0
	}
	level := c.LevelForXP(xp)
	floor := c.XPForLevel(level)

	if level >= c.cfg.MaxLevel {
		return Progress{
			Level:        level,
			CurrentFloor: floor,
			NextRequired: floor,
			ToNext:       0,
			Percent:      100,
		}
	}

	next := c.XPForLevel(level + 1)
	span := next - floor
	pct := float64(100)
	if span > 0 {
		pct = float64(xp-floor) / float64(span) * 100
	}
	return Progress{
		Level:        level,
		CurrentFloor: floor,
		NextRequired: next,
		ToNext:       next - xp,
		Percent:      pct,
	}
}
