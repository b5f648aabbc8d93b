package model

// ScoreboardRow holds one member's derived totals. Rows are never persisted;
// they are recomputed from the event log on demand so totals cannot drift.
type ScoreboardRow struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	TotalPoints  int    `json:"totalPoints"`
	WeeklyPoints int    `json:"weeklyPoints"`
	Streak       int    `json:"streak"`
}

// Scoreboard is the household-wide view: per-member rows sorted by total
// points descending plus family aggregates.
type Scoreboard struct {
	Rows              []ScoreboardRow `json:"scoreboard"`
	FamilyTotal       int             `json:"familyTotal"`
	FamilyWeeklyTotal int             `json:"familyWeeklyTotal"`
}

// ScheduleFlags marks which routine care items have been done today.
type ScheduleFlags struct {
	HasMorningFeed bool `json:"hasMorningFeed"`
	HasEveningFeed bool `json:"hasEveningFeed"`
	HasWalk        bool `json:"hasWalk"`
	HasPee         bool `json:"hasPee"`
	HasPoop        bool `json:"hasPoop"`
}

// DailyChallenge is the caller's potty challenge progress for today.
type DailyChallenge struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Target    int    `json:"target"`
	Progress  int    `json:"progress"`
	Completed bool   `json:"completed"`
}
