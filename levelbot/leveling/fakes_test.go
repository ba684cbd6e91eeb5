package leveling

import (
	"context"
	"sync"
	"time"

	"github.com/lumen-bots/levelbot/levelbot/database/models"
)

// In-memory repository stand-ins mirroring the SQL upsert semantics of the
// real implementations.

type fakeProgressRepo struct {
	mu   sync.Mutex
	rows map[string]*models.DailyProgress

	failNext error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[string]*models.DailyProgress)}
}

func progressKey(userID, guildID, day string) string {
	return userID + "|" + guildID + "|" + day
}

func (f *fakeProgressRepo) takeErr() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeProgressRepo) Get(_ context.Context, userID, guildID, day string) (*models.DailyProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	row, ok := f.rows[progressKey(userID, guildID, day)]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (f *fakeProgressRepo) AddXP(_ context.Context, delta *models.DailyProgress) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return 0, err
	}
	key := progressKey(delta.UserID, delta.GuildID, delta.EffectiveDate)
	row, ok := f.rows[key]
	if !ok {
		copied := *delta
		f.rows[key] = &copied
		return copied.TotalXP, nil
	}
	row.TotalXP += delta.TotalXP
	row.MessageXP += delta.MessageXP
	row.VoiceXP += delta.VoiceXP
	row.ReactionXP += delta.ReactionXP
	row.DailyCap = delta.DailyCap
	row.TierLevel = delta.TierLevel
	row.TierRoleID = delta.TierRoleID
	return row.TotalXP, nil
}

func (f *fakeProgressRepo) UpsertTier(_ context.Context, userID, guildID, day string, cap int64, tierLevel int, tierRoleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return err
	}
	key := progressKey(userID, guildID, day)
	row, ok := f.rows[key]
	if !ok {
		f.rows[key] = &models.DailyProgress{
			UserID:        userID,
			GuildID:       guildID,
			EffectiveDate: day,
			DailyCap:      cap,
			TierLevel:     tierLevel,
			TierRoleID:    tierRoleID,
		}
		return nil
	}
	row.DailyCap = cap
	row.TierLevel = tierLevel
	row.TierRoleID = tierRoleID
	return nil
}

func (f *fakeProgressRepo) DeleteBefore(_ context.Context, day string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return 0, err
	}
	var deleted int64
	for key, row := range f.rows {
		if row.EffectiveDate < day {
			delete(f.rows, key)
			deleted++
		}
	}
	return deleted, nil
}

type fakeAccountRepo struct {
	mu   sync.Mutex
	rows map[string]*models.XPAccount

	failAddXP    error
	failSetLevel error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{rows: make(map[string]*models.XPAccount)}
}

func accountKey(userID, guildID string) string {
	return userID + "|" + guildID
}

func (f *fakeAccountRepo) Get(_ context.Context, userID, guildID string) (*models.XPAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[accountKey(userID, guildID)]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (f *fakeAccountRepo) AddXP(_ context.Context, delta *models.XPAccount) (*models.XPAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAddXP != nil {
		err := f.failAddXP
		f.failAddXP = nil
		return nil, err
	}
	key := accountKey(delta.UserID, delta.GuildID)
	row, ok := f.rows[key]
	if !ok {
		copied := *delta
		copied.CreatedAt = time.Now()
		f.rows[key] = &copied
		out := copied
		return &out, nil
	}
	row.TotalXP += delta.TotalXP
	row.MessageCount += delta.MessageCount
	row.ReactionCount += delta.ReactionCount
	row.VoiceMinutes += delta.VoiceMinutes
	out := *row
	return &out, nil
}

func (f *fakeAccountRepo) AdjustTotal(_ context.Context, userID, guildID string, delta int64) (*models.XPAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := accountKey(userID, guildID)
	row, ok := f.rows[key]
	if !ok {
		total := delta
		if total < 0 {
			total = 0
		}
		row = &models.XPAccount{UserID: userID, GuildID: guildID, TotalXP: total}
		f.rows[key] = row
	} else {
		row.TotalXP += delta
		if row.TotalXP < 0 {
			row.TotalXP = 0
		}
	}
	out := *row
	return &out, nil
}

func (f *fakeAccountRepo) SetLevel(_ context.Context, userID, guildID string, level int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSetLevel != nil {
		err := f.failSetLevel
		f.failSetLevel = nil
		return err
	}
	if row, ok := f.rows[accountKey(userID, guildID)]; ok {
		row.Level = level
	}
	return nil
}

func (f *fakeAccountRepo) GetTop(_ context.Context, guildID string, limit, offset int) ([]*models.XPAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.XPAccount
	for _, row := range f.rows {
		if row.GuildID == guildID {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) Delete(_ context.Context, userID, guildID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, accountKey(userID, guildID))
	return nil
}
