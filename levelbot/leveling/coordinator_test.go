package leveling

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testCoordinator(t *testing.T, multiplier float64) (*Coordinator, *fakeAccountRepo, *fakeProgressRepo) {
	t.Helper()
	ledger, progress := testLedger(t)
	accounts := newFakeAccountRepo()
	c := NewCoordinator(accounts, ledger, defaultCurve(t), multiplier)
	return c, accounts, progress
}

func TestCoordinator_Award(t *testing.T) {
	c, accounts, _ := testCoordinator(t, 1)
	ctx := context.Background()

	result, err := c.Award(ctx, AwardRequest{
		UserID:  testUser,
		GuildID: testGuild,
		Amount:  25,
		Source:  SourceMessage,
	})
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	if result.Awarded != 25 {
		t.Errorf("Awarded = %d, want 25", result.Awarded)
	}
	if result.TotalXP != 25 {
		t.Errorf("TotalXP = %d, want 25", result.TotalXP)
	}
	if result.LeveledUp {
		t.Error("LeveledUp = true below the first level")
	}
	if result.Daily.Used != 25 {
		t.Errorf("Daily.Used = %d, want 25", result.Daily.Used)
	}
	if result.Daily.Cap != testBaseCap {
		t.Errorf("Daily.Cap = %d, want %d", result.Daily.Cap, testBaseCap)
	}

	account, _ := accounts.Get(ctx, testUser.String(), testGuild.String())
	if account == nil {
		t.Fatal("account not created")
	}
	if account.MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1", account.MessageCount)
	}
	if account.ReactionCount != 0 || account.VoiceMinutes != 0 {
		t.Errorf("other counters bumped: reactions %d, voice %d", account.ReactionCount, account.VoiceMinutes)
	}
}

func TestCoordinator_Award_LevelUp(t *testing.T) {
	c, accounts, _ := testCoordinator(t, 1)
	ctx := context.Background()

	// 480 then 30 crosses the 500 XP first-level boundary.
	if _, err := c.Award(ctx, AwardRequest{UserID: testUser, GuildID: testGuild, Amount: 480, Source: SourceMessage}); err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	result, err := c.Award(ctx, AwardRequest{UserID: testUser, GuildID: testGuild, Amount: 30, Source: SourceMessage})
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}

	if !result.LeveledUp {
		t.Error("LeveledUp = false across the boundary")
	}
	if result.OldLevel != 0 || result.NewLevel != 1 {
		t.Errorf("levels = %d -> %d, want 0 -> 1", result.OldLevel, result.NewLevel)
	}

	account, _ := accounts.Get(ctx, testUser.String(), testGuild.String())
	if account.Level != 1 {
		t.Errorf("persisted level = %d, want 1", account.Level)
	}
}

func TestCoordinator_Award_GlobalMultiplier(t *testing.T) {
	tests := []struct {
		name       string
		multiplier float64
		amount     int64
		want       int64
	}{
		{name: "doubled", multiplier: 2, amount: 10, want: 20},
		{name: "halved rounds", multiplier: 0.5, amount: 25, want: 13},
		{name: "floors at one", multiplier: 0.01, amount: 10, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := testCoordinator(t, tt.multiplier)
			result, err := c.Award(context.Background(), AwardRequest{
				UserID:  testUser,
				GuildID: testGuild,
				Amount:  tt.amount,
				Source:  SourceMessage,
			})
			if err != nil {
				t.Fatalf("Award() error = %v", err)
			}
			if result.Awarded != tt.want {
				t.Errorf("Awarded = %d, want %d", result.Awarded, tt.want)
			}
		})
	}
}

func TestCoordinator_Award_Validation(t *testing.T) {
	c, _, _ := testCoordinator(t, 1)
	ctx := context.Background()

	if _, err := c.Award(ctx, AwardRequest{UserID: testUser, GuildID: testGuild, Amount: 0, Source: SourceMessage}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Award(amount 0) error = %v, want ErrInvalidAmount", err)
	}
	if _, err := c.Award(ctx, AwardRequest{UserID: testUser, GuildID: testGuild, Amount: 10, Source: Source("boost")}); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Award(unknown source) error = %v, want ErrUnknownSource", err)
	}
}

func TestCoordinator_Award_SourceCounters(t *testing.T) {
	c, accounts, _ := testCoordinator(t, 1)
	ctx := context.Background()

	for _, src := range []Source{SourceMessage, SourceReaction, SourceVoice, SourceVoice} {
		if _, err := c.Award(ctx, AwardRequest{UserID: testUser, GuildID: testGuild, Amount: 10, Source: src}); err != nil {
			t.Fatalf("Award(%s) error = %v", src, err)
		}
	}

	account, _ := accounts.Get(ctx, testUser.String(), testGuild.String())
	if account.MessageCount != 1 || account.ReactionCount != 1 || account.VoiceMinutes != 2 {
		t.Errorf("counters = msg %d react %d voice %d, want 1/1/2",
			account.MessageCount, account.ReactionCount, account.VoiceMinutes)
	}
	if account.TotalXP != 40 {
		t.Errorf("TotalXP = %d, want 40", account.TotalXP)
	}
}

func TestCoordinator_Award_AccountWriteFailure(t *testing.T) {
	c, accounts, progress := testCoordinator(t, 1)
	ctx := context.Background()

	accounts.failAddXP = errors.New("write failed")
	if _, err := c.Award(ctx, AwardRequest{UserID: testUser, GuildID: testGuild, Amount: 10, Source: SourceMessage}); err == nil {
		t.Fatal("Award() error = nil with failing account write")
	}

	// The daily row was written before the account failure surfaced.
	row, _ := progress.Get(ctx, testUser.String(), testGuild.String(), "2026-03-14")
	if row == nil || row.TotalXP != 10 {
		t.Errorf("daily row = %+v, want total 10", row)
	}
}

func TestCoordinator_AdminAdjust(t *testing.T) {
	c, accounts, _ := testCoordinator(t, 1)
	ctx := context.Background()

	result, err := c.AdminAdjust(ctx, testUser, testGuild, 600, "promo grant")
	if err != nil {
		t.Fatalf("AdminAdjust() error = %v", err)
	}
	if result.TotalXP != 600 {
		t.Errorf("TotalXP = %d, want 600", result.TotalXP)
	}
	if result.Awarded != 600 {
		t.Errorf("Awarded = %d, want 600", result.Awarded)
	}
	if result.NewLevel != 1 {
		t.Errorf("NewLevel = %d, want 1", result.NewLevel)
	}

	// Negative adjustment clamps at zero and can lower the level.
	result, err = c.AdminAdjust(ctx, testUser, testGuild, -10_000, "rollback")
	if err != nil {
		t.Fatalf("AdminAdjust() error = %v", err)
	}
	if result.TotalXP != 0 {
		t.Errorf("TotalXP = %d, want 0 after clamp", result.TotalXP)
	}
	// Only 600 XP existed, so that is all the removal could take.
	if result.Awarded != -600 {
		t.Errorf("Awarded = %d, want -600 after clamp", result.Awarded)
	}
	if result.NewLevel != 0 {
		t.Errorf("NewLevel = %d, want 0", result.NewLevel)
	}

	account, _ := accounts.Get(ctx, testUser.String(), testGuild.String())
	if account.Level != 0 {
		t.Errorf("persisted level = %d, want 0", account.Level)
	}

	if _, err := c.AdminAdjust(ctx, testUser, testGuild, 0, "noop"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("AdminAdjust(0) error = %v, want ErrInvalidAmount", err)
	}
}

func TestCoordinator_AdminAdjust_BypassesDailyLedger(t *testing.T) {
	c, _, progress := testCoordinator(t, 1)
	ctx := context.Background()

	if _, err := c.AdminAdjust(ctx, testUser, testGuild, 5000, "grant"); err != nil {
		t.Fatalf("AdminAdjust() error = %v", err)
	}
	if len(progress.rows) != 0 {
		t.Error("admin adjustment touched the daily ledger")
	}
}

func TestCoordinator_Award_DayBoundary(t *testing.T) {
	c, _, _ := testCoordinator(t, 1)
	ctx := context.Background()

	if _, err := c.Award(ctx, AwardRequest{UserID: testUser, GuildID: testGuild, Amount: 100, Source: SourceMessage}); err != nil {
		t.Fatalf("Award() error = %v", err)
	}

	// Next day: daily usage starts over while the lifetime total carries on.
	c.ledger.now = func() time.Time { return time.Date(2026, 3, 15, 0, 0, 1, 0, time.UTC) }

	result, err := c.Award(ctx, AwardRequest{UserID: testUser, GuildID: testGuild, Amount: 50, Source: SourceMessage})
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	if result.Daily.Used != 50 {
		t.Errorf("Daily.Used = %d, want 50 on the new day", result.Daily.Used)
	}
	if result.TotalXP != 150 {
		t.Errorf("TotalXP = %d, want 150", result.TotalXP)
	}
}
