package streak

import "github.com/comitanigiacomo/kanso-streaks/internal/core/domain"

// ComputeDaily returns the streaks of a habit that must be logged every day.
//
// The best streak is the longest run of consecutive logged days in the whole
// history. The current streak counts back from today and is zero when today
// has no log, even if yesterday did. Logs after today are not expected.
func ComputeDaily(logs domain.LogDateSet, today domain.Date) domain.StreakResult {
	dates := logs.Sorted()
	if len(dates) == 0 {
		return domain.StreakResult{}
	}

	best, run := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i] == dates[i-1].AddDays(1) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}

	current := 0
	for day := today; logs.Contains(day); day = day.AddDays(-1) {
		current++
	}

	return domain.StreakResult{CurrentStreak: current, BestStreak: best}
}
