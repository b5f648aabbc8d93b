package model

type PushSubscription struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	HouseholdID string `json:"householdId"`
	Endpoint    string `json:"endpoint"`
	P256dhKey   string `json:"p256dhKey"`
	AuthKey     string `json:"authKey"`
	CreatedAt   int64  `json:"createdAt"`
}
