package review

import "github.com/example/hifzbot/pkg/models"

// NeedsRecompute decides whether today's plan must be built again rather
// than announced from cache. planned is the snapshot recorded for today,
// nil when none exists.
//
// Mutations clear CachedPlanDate, which is what normally forces a rebuild.
// The snapshot comparison only catches progress recorded outside of that
// path. Building a plan re-records today's snapshot with the current page
// count, so once rebuilt the plan stays cached for the rest of the day.
func NeedsRecompute(user models.UserProgress, today string, planned *models.DailyStat) bool {
	if user.CachedPlanDate == "" || user.CachedPlanDate != today {
		return true
	}
	if planned != nil && planned.PagesMemorized < user.PagesMemorized {
		return true
	}
	return false
}
