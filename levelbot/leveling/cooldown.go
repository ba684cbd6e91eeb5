package leveling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// CooldownGate rate-limits XP events per (guild, user, source). It is purely
// in-memory: a restart only lets a brief burst through, and the daily cap
// remains the backstop. Windows are supplied per check so different sources
// can run different cooldowns without the gate knowing about them.
type CooldownGate struct {
	lastUsed sync.Map // key string -> time.Time
	now      func() time.Time
}

func NewCooldownGate() *CooldownGate {
	return &CooldownGate{now: time.Now}
}

func cooldownKey(guildID, userID snowflake.ID, src Source) string {
	return fmt.Sprintf("%s:%s:%s", guildID, userID, src)
}

// OnCooldown reports whether the key is still inside its window and, if so,
// how long remains.
func (g *CooldownGate) OnCooldown(guildID, userID snowflake.ID, src Source, window time.Duration) (bool, time.Duration) {
	if window <= 0 {
		return false, 0
	}
	v, ok := g.lastUsed.Load(cooldownKey(guildID, userID, src))
	if !ok {
		return false, 0
	}
	elapsed := g.now().Sub(v.(time.Time))
	if elapsed < window {
		return true, window - elapsed
	}
	return false, 0
}

// MarkUsed records an accepted event for the key.
func (g *CooldownGate) MarkUsed(guildID, userID snowflake.ID, src Source) {
	g.lastUsed.Store(cooldownKey(guildID, userID, src), g.now())
}

// StartCleanupRoutine drops entries older than maxAge so the map does not
// grow unbounded across quiet users.
func (g *CooldownGate) StartCleanupRoutine(ctx context.Context, maxAge time.Duration) {
	ticker := time.NewTicker(maxAge)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				g.cleanup(maxAge)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (g *CooldownGate) cleanup(maxAge time.Duration) {
	cutoff := g.now().Add(-maxAge)
	g.lastUsed.Range(func(key, value interface{}) bool {
		if value.(time.Time).Before(cutoff) {
			g.lastUsed.Delete(key)
		}
		return true
	})
}
