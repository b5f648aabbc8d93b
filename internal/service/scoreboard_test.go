package service

import (
	"testing"
	"time"

	"github.com/mkeren/pawtrack/internal/model"
)

// scoreboardFixture builds a document with one household and two members.
func scoreboardFixture() *model.Document {
	doc := model.NewDocument()
	doc.Households["h1"] = &model.Household{ID: "h1"}
	doc.Users["u1"] = &model.User{ID: "u1", Username: "alice", HouseholdID: "h1"}
	doc.Users["u2"] = &model.User{ID: "u2", Username: "bob", HouseholdID: "h1"}
	return doc
}

func addEvent(doc *model.Document, id, userID, eventType string, ts time.Time) {
	pts, _ := model.PointsForType(eventType)
	doc.Events[id] = &model.Event{
		ID:          id,
		HouseholdID: "h1",
		UserID:      userID,
		Type:        eventType,
		Timestamp:   ts.Unix(),
		Points:      pts,
	}
}

func rowFor(t *testing.T, sb model.Scoreboard, userID string) model.ScoreboardRow {
	t.Helper()
	for _, row := range sb.Rows {
		if row.UserID == userID {
			return row
		}
	}
	t.Fatalf("no scoreboard row for %s", userID)
	return model.ScoreboardRow{}
}

func TestScoreboardBasicTotals(t *testing.T) {
	doc := scoreboardFixture()
	now := time.Date(2026, 8, 20, 15, 0, 0, 0, time.Local)

	addEvent(doc, "e1", "u1", model.TypePoop, now.Add(-time.Hour)) // 3
	addEvent(doc, "e2", "u1", model.TypeWalk, now.Add(-2*time.Hour)) // 1
	addEvent(doc, "e3", "u2", model.TypePee, now.Add(-time.Hour)) // 2

	sb := ComputeScoreboard(doc, "h1", now)

	if got := rowFor(t, sb, "u1").TotalPoints; got != 4 {
		t.Errorf("u1 total = %d, want 4", got)
	}
	if got := rowFor(t, sb, "u2").TotalPoints; got != 2 {
		t.Errorf("u2 total = %d, want 2", got)
	}
	if sb.FamilyTotal != 6 {
		t.Errorf("family total = %d, want 6", sb.FamilyTotal)
	}
	if sb.FamilyWeeklyTotal != 6 {
		t.Errorf("family weekly total = %d, want 6", sb.FamilyWeeklyTotal)
	}
}

func TestScoreboardDeduplicatesSameTypePerDay(t *testing.T) {
	doc := scoreboardFixture()
	now := time.Date(2026, 8, 20, 18, 0, 0, 0, time.Local)

	// Three pees the same day score once; one the day before scores again.
	addEvent(doc, "e1", "u1", model.TypePee, now.Add(-time.Hour))
	addEvent(doc, "e2", "u1", model.TypePee, now.Add(-2*time.Hour))
	addEvent(doc, "e3", "u1", model.TypePee, now.Add(-3*time.Hour))
	addEvent(doc, "e4", "u1", model.TypePee, now.AddDate(0, 0, -1))

	sb := ComputeScoreboard(doc, "h1", now)
	if got := rowFor(t, sb, "u1").TotalPoints; got != 4 {
		t.Errorf("u1 total = %d, want 4 (2 today + 2 yesterday)", got)
	}
}

func TestScoreboardWeeklyWindow(t *testing.T) {
	doc := scoreboardFixture()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.Local)

	addEvent(doc, "e1", "u1", model.TypePoop, now)                 // in window
	addEvent(doc, "e2", "u1", model.TypePoop, now.AddDate(0, 0, -6)) // edge of window
	addEvent(doc, "e3", "u1", model.TypePoop, now.AddDate(0, 0, -10)) // outside

	sb := ComputeScoreboard(doc, "h1", now)
	row := rowFor(t, sb, "u1")
	if row.TotalPoints != 9 {
		t.Errorf("total = %d, want 9", row.TotalPoints)
	}
	if row.WeeklyPoints != 6 {
		t.Errorf("weekly = %d, want 6 (trailing 7 days only)", row.WeeklyPoints)
	}
}

func TestScoreboardStreak(t *testing.T) {
	doc := scoreboardFixture()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.Local)

	// u1: events today, yesterday, and two days ago, then a gap.
	addEvent(doc, "e1", "u1", model.TypeWalk, now)
	addEvent(doc, "e2", "u1", model.TypePee, now.AddDate(0, 0, -1))
	addEvent(doc, "e3", "u1", model.TypePoop, now.AddDate(0, 0, -2))
	addEvent(doc, "e4", "u1", model.TypeWalk, now.AddDate(0, 0, -5))

	// u2: nothing today, so no streak even with history.
	addEvent(doc, "e5", "u2", model.TypeWalk, now.AddDate(0, 0, -1))

	sb := ComputeScoreboard(doc, "h1", now)
	if got := rowFor(t, sb, "u1").Streak; got != 3 {
		t.Errorf("u1 streak = %d, want 3", got)
	}
	if got := rowFor(t, sb, "u2").Streak; got != 0 {
		t.Errorf("u2 streak = %d, want 0", got)
	}
}

func TestScoreboardAccidentSubtracts(t *testing.T) {
	doc := scoreboardFixture()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.Local)

	addEvent(doc, "e1", "u1", model.TypePoop, now)     // +3
	addEvent(doc, "e2", "u1", model.TypeAccident, now) // -2

	sb := ComputeScoreboard(doc, "h1", now)
	if got := rowFor(t, sb, "u1").TotalPoints; got != 1 {
		t.Errorf("total = %d, want 1", got)
	}
}

func TestScoreboardSortsByTotalThenName(t *testing.T) {
	doc := scoreboardFixture()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.Local)

	addEvent(doc, "e1", "u2", model.TypePoop, now)

	sb := ComputeScoreboard(doc, "h1", now)
	if len(sb.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sb.Rows))
	}
	if sb.Rows[0].UserID != "u2" {
		t.Errorf("first row = %s, want u2 (higher total)", sb.Rows[0].UserID)
	}

	// Tie: alphabetical by username.
	addEvent(doc, "e2", "u1", model.TypePoop, now)
	sb = ComputeScoreboard(doc, "h1", now)
	if sb.Rows[0].Username != "alice" {
		t.Errorf("first row on tie = %s, want alice", sb.Rows[0].Username)
	}
}

func TestScoreboardIgnoresOtherHouseholds(t *testing.T) {
	doc := scoreboardFixture()
	doc.Households["h2"] = &model.Household{ID: "h2"}
	doc.Users["u3"] = &model.User{ID: "u3", Username: "carol", HouseholdID: "h2"}
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.Local)

	doc.Events["e1"] = &model.Event{ID: "e1", HouseholdID: "h2", UserID: "u3", Type: model.TypePoop, Timestamp: now.Unix(), Points: 3}

	sb := ComputeScoreboard(doc, "h1", now)
	if sb.FamilyTotal != 0 {
		t.Errorf("family total = %d, want 0 (other household's events excluded)", sb.FamilyTotal)
	}
}

func TestScoreboardEmptyHousehold(t *testing.T) {
	doc := model.NewDocument()
	doc.Households["h1"] = &model.Household{ID: "h1"}

	sb := ComputeScoreboard(doc, "h1", time.Now())
	if len(sb.Rows) != 0 || sb.FamilyTotal != 0 {
		t.Error("expected empty scoreboard for memberless household")
	}
}
