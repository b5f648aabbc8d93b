package model

// Event types. Walk variants score the same as a plain walk; they exist so
// the timeline can distinguish which walk of the day was logged.
const (
	TypeWalk          = "walk"
	TypeWalkMorning   = "walk_morning"
	TypeWalkAfternoon = "walk_afternoon"
	TypeWalkEvening   = "walk_evening"
	TypePee           = "pee"
	TypePoop          = "poop"
	TypeReward        = "reward"
	TypeAccident      = "accident"
	TypeFeedMorning   = "feed_morning"
	TypeFeedEvening   = "feed_evening"
)

var pointsByType = map[string]int{
	TypeWalk:          1,
	TypeWalkMorning:   1,
	TypeWalkAfternoon: 1,
	TypeWalkEvening:   1,
	TypePee:           2,
	TypePoop:          3,
	TypeReward:        1,
	TypeAccident:      -2,
	TypeFeedMorning:   1,
	TypeFeedEvening:   1,
}

// PointsForType returns the point value for an event type and whether the
// type is one of the known types.
func PointsForType(eventType string) (int, bool) {
	pts, ok := pointsByType[eventType]
	return pts, ok
}

// Event is a single recorded care action. Events are immutable once created;
// the only mutation is deletion.
type Event struct {
	ID          string `json:"id"`
	HouseholdID string `json:"householdId"`
	UserID      string `json:"userId"`
	Type        string `json:"type"`
	Timestamp   int64  `json:"timestamp"` // epoch seconds
	Points      int    `json:"points"`
}

// EventView is an event as returned in timeline responses, with the
// recorder's name resolved.
type EventView struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Points    int    `json:"points"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
}
