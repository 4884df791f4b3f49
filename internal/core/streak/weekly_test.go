package streak_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/streak"
)

// 2024-01-01 is a Monday.
var monday = day(2024, time.January, 1)

// week returns the Monday n weeks after 2024-01-01.
func week(n int) domain.Date {
	return monday.AddDays(7 * n)
}

// logged returns count consecutive days starting at the Monday of week n.
func logged(n, count int) []domain.Date {
	out := make([]domain.Date, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, week(n).AddDays(i))
	}
	return out
}

func concat(parts ...[]domain.Date) []domain.Date {
	var out []domain.Date
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   domain.Date
		want domain.Date
	}{
		{day(2024, 1, 1), day(2024, 1, 1)},
		{day(2024, 1, 3), day(2024, 1, 1)},
		{day(2024, 1, 7), day(2024, 1, 1)},
		{day(2024, 1, 8), day(2024, 1, 8)},
		{day(2024, 3, 3), day(2024, 2, 26)},
		{day(2023, 12, 31), day(2023, 12, 25)},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got := streak.WeekStart(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.Monday, got.Weekday())
		})
	}
}

func TestComputeWeekly(t *testing.T) {
	tests := []struct {
		name        string
		logs        []domain.Date
		today       domain.Date
		target      int
		wantCurrent int
		wantBest    int
	}{
		{
			name:        "Two full weeks, today is the second Sunday",
			logs:        concat(logged(0, 3), logged(1, 3)),
			today:       week(1).AddDays(6),
			target:      3,
			wantCurrent: 2,
			wantBest:    2,
		},
		{
			name:        "Open week below quota is absorbed by the grace step",
			logs:        concat(logged(0, 2), logged(1, 3), logged(2, 2), logged(3, 1)),
			today:       week(3).AddDays(2),
			target:      2,
			wantCurrent: 3,
			wantBest:    3,
		},
		{
			name:        "Open week already successful counts",
			logs:        concat(logged(0, 2), logged(1, 2)),
			today:       week(1).AddDays(1),
			target:      2,
			wantCurrent: 2,
			wantBest:    2,
		},
		{
			name:        "Two missed weeks reset the current streak",
			logs:        concat(logged(0, 2), logged(1, 2), logged(2, 2)),
			today:       week(4).AddDays(3),
			target:      2,
			wantCurrent: 0,
			wantBest:    3,
		},
		{
			name:        "Longest run in the past",
			logs:        concat(logged(0, 1), logged(1, 1), logged(2, 1), logged(3, 1), logged(6, 1), logged(7, 1)),
			today:       week(7).AddDays(4),
			target:      1,
			wantCurrent: 2,
			wantBest:    4,
		},
		{
			name:        "Weeks below target never qualify",
			logs:        concat(logged(0, 2), logged(1, 2), logged(2, 2)),
			today:       week(2).AddDays(6),
			target:      3,
			wantCurrent: 0,
			wantBest:    0,
		},
		{
			name:        "No logs",
			logs:        nil,
			today:       week(2),
			target:      2,
			wantCurrent: 0,
			wantBest:    0,
		},
		{
			name:        "Zero target is rejected",
			logs:        logged(0, 7),
			today:       week(0).AddDays(6),
			target:      0,
			wantCurrent: 0,
			wantBest:    0,
		},
		{
			name:        "Negative target is rejected",
			logs:        logged(0, 7),
			today:       week(0).AddDays(6),
			target:      -2,
			wantCurrent: 0,
			wantBest:    0,
		},
		{
			name:        "Week boundary falls on Monday, not Sunday",
			logs:        []domain.Date{week(1).AddDays(-1), week(1)},
			today:       week(1),
			target:      2,
			wantCurrent: 0,
			wantBest:    0,
		},
		{
			name:        "Quota across a year boundary",
			logs:        []domain.Date{day(2023, 12, 25), day(2023, 12, 31), day(2024, 1, 1), day(2024, 1, 2)},
			today:       day(2024, 1, 3),
			target:      2,
			wantCurrent: 2,
			wantBest:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := streak.ComputeWeekly(set(tt.logs...), tt.today, tt.target)
			assert.Equal(t, tt.wantCurrent, got.CurrentStreak, "Current Streak mismatch")
			assert.Equal(t, tt.wantBest, got.BestStreak, "Best Streak mismatch")
		})
	}
}

func TestComputeWeekly_GraceIsExactlyOneWeek(t *testing.T) {
	history := concat(logged(0, 2), logged(1, 2), logged(2, 2))

	t.Run("Current week empty", func(t *testing.T) {
		got := streak.ComputeWeekly(set(history...), week(3).AddDays(5), 2)
		assert.Equal(t, 3, got.CurrentStreak)
	})

	t.Run("Current and previous week empty", func(t *testing.T) {
		got := streak.ComputeWeekly(set(history...), week(4).AddDays(5), 2)
		assert.Equal(t, 0, got.CurrentStreak)
		assert.Equal(t, 3, got.BestStreak)
	})
}

func TestComputeWeekly_Idempotent(t *testing.T) {
	logs := set(concat(logged(0, 3), logged(2, 4), logged(3, 5))...)
	today := week(3).AddDays(6)

	first := streak.ComputeWeekly(logs, today, 3)
	second := streak.ComputeWeekly(logs, today, 3)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.StreakResult{CurrentStreak: 2, BestStreak: 2}, first)
}

func TestComputeWeekly_OrderIndependent(t *testing.T) {
	history := concat(logged(0, 3), logged(1, 1), logged(2, 4), logged(3, 3), logged(4, 2))
	// Duplicates must collapse the same way whatever their position.
	history = append(history, week(1), week(4).AddDays(1))
	today := week(4).AddDays(3)

	want := streak.ComputeWeekly(set(history...), today, 3)
	assert.Equal(t, domain.StreakResult{CurrentStreak: 2, BestStreak: 2}, want)

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		shuffled := append([]domain.Date(nil), history...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, streak.ComputeWeekly(set(shuffled...), today, 3))
	}
}
