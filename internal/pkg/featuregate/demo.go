package featuregate

import (
	"time"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/internal/pkg/schedule"
)

// Synthetic fixtures served in preview mode. They are hard-coded, generated
// client-side of the backend, and never persisted.

// DemoCalendar returns a demo month of scheduled posts keyed by day.
func DemoCalendar(year int, month time.Month, loc *time.Location) map[schedule.DayKey][]models.ScheduledPost {
	if loc == nil {
		loc = time.UTC
	}
	mk := func(day, hour int, platform, title string) models.ScheduledPost {
		at := time.Date(year, month, day, hour, 0, 0, 0, loc).UTC()
		return models.ScheduledPost{
			UUID:           "demo-" + platform + "-" + title,
			ContentUUID:    "demo-content",
			ScheduledAtUTC: at,
			Platform:       platform,
			Title:          title,
		}
	}

	posts := []models.ScheduledPost{
		mk(3, 9, "linkedin", "Product update"),
		mk(3, 17, "twitter", "Quick tip"),
		mk(10, 12, "instagram", "Behind the scenes"),
		mk(18, 8, "linkedin", "Customer story"),
		mk(24, 15, "email", "Monthly digest"),
	}

	out := make(map[schedule.DayKey][]models.ScheduledPost)
	for _, p := range posts {
		key := schedule.DayKeyOf(p.ScheduledAtUTC, loc)
		out[key] = append(out[key], p)
	}
	return out
}

// DemoAnalytics returns a demo fortnight of generation counts.
func DemoAnalytics() []models.DailyStats {
	counts := []int{2, 5, 3, 7, 4, 6, 8, 3, 5, 9, 4, 6, 7, 5}
	now := time.Now().UTC()
	out := make([]models.DailyStats, 0, len(counts))
	for i, c := range counts {
		day := now.AddDate(0, 0, i-len(counts))
		out = append(out, models.DailyStats{Date: day.Format("2006-01-02"), Count: c})
	}
	return out
}

// DemoTeam returns a demo seat list.
func DemoTeam() []models.TeamMember {
	return []models.TeamMember{
		{Email: "you@example.com", Role: models.TeamRoleOwner, Status: models.TeamInviteAccepted},
		{Email: "maria@example.com", Role: models.TeamRoleEditor, Status: models.TeamInviteAccepted},
		{Email: "jonas@example.com", Role: models.TeamRoleViewer, Status: models.TeamInvitePending},
	}
}
