package model

type Household struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	DogName      string   `json:"dogName"`
	DogAgeMonths int      `json:"dogAgeMonths"`
	DogPhotoURL  string   `json:"dogPhotoUrl"`
	InviteTokens []string `json:"inviteTokens"`
	CreatedAt    int64    `json:"createdAt"`
}

// HasInviteToken reports whether token is outstanding for this household.
func (h *Household) HasInviteToken(token string) bool {
	for _, t := range h.InviteTokens {
		if t == token {
			return true
		}
	}
	return false
}

// RemoveInviteToken deletes token from the outstanding set, if present.
func (h *Household) RemoveInviteToken(token string) {
	for i, t := range h.InviteTokens {
		if t == token {
			h.InviteTokens = append(h.InviteTokens[:i], h.InviteTokens[i+1:]...)
			return
		}
	}
}
