package service

import (
	"sort"
	"time"

	"github.com/mkeren/pawtrack/internal/model"
)

// ComputeScoreboard derives per-member and family totals for a household by
// scanning the full event log. Nothing here is persisted: the log is the
// single source of truth and the scoreboard is recomputed on every call.
//
// Scoring rules:
//   - Only the first event of a given (user, type, day) scores; repeats the
//     same day count in the timeline but not in points.
//   - Weekly points cover the trailing 7 days (today minus 6 through today).
//   - Streak is the number of consecutive days ending today on which the
//     member logged at least one event.
func ComputeScoreboard(doc *model.Document, householdID string, now time.Time) model.Scoreboard {
	today := startOfDay(now)
	weekAgo := today.AddDate(0, 0, -6)

	type tally struct {
		total  int
		weekly int
		days   map[string]bool // days with at least one event, for streaks
	}

	members := doc.HouseholdMembers(householdID)
	perUser := make(map[string]*tally, len(members))
	for _, u := range members {
		perUser[u.ID] = &tally{days: make(map[string]bool)}
	}

	seen := make(map[string]bool) // userID|type|day, for score dedup
	for _, ev := range doc.Events {
		if ev.HouseholdID != householdID {
			continue
		}
		t, ok := perUser[ev.UserID]
		if !ok {
			continue
		}
		day := startOfDay(time.Unix(ev.Timestamp, 0).In(now.Location()))
		dayKey := day.Format(time.DateOnly)
		t.days[dayKey] = true

		dedupKey := ev.UserID + "|" + ev.Type + "|" + dayKey
		if seen[dedupKey] {
			continue
		}
		seen[dedupKey] = true

		pts := ev.Points
		if pts == 0 {
			// Records predating the points field carry no value; fall back
			// to the type table.
			pts, _ = model.PointsForType(ev.Type)
		}
		if pts == 0 {
			continue
		}
		t.total += pts
		if !day.Before(weekAgo) && !day.After(today) {
			t.weekly += pts
		}
	}

	sb := model.Scoreboard{Rows: make([]model.ScoreboardRow, 0, len(members))}
	for _, u := range members {
		t := perUser[u.ID]

		streak := 0
		for day := today; t.days[day.Format(time.DateOnly)]; day = day.AddDate(0, 0, -1) {
			streak++
		}

		sb.Rows = append(sb.Rows, model.ScoreboardRow{
			UserID:       u.ID,
			Username:     u.Username,
			Email:        u.Email,
			TotalPoints:  t.total,
			WeeklyPoints: t.weekly,
			Streak:       streak,
		})
		sb.FamilyTotal += t.total
		sb.FamilyWeeklyTotal += t.weekly
	}

	sort.Slice(sb.Rows, func(i, j int) bool {
		if sb.Rows[i].TotalPoints != sb.Rows[j].TotalPoints {
			return sb.Rows[i].TotalPoints > sb.Rows[j].TotalPoints
		}
		return sb.Rows[i].Username < sb.Rows[j].Username
	})
	return sb
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
