package model

type User struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"passwordHash"`
	HouseholdID  string   `json:"householdId"`
	IsAdmin      bool     `json:"isAdmin"`
	Tokens       []string `json:"tokens"`
	CreatedAt    int64    `json:"createdAt"`
}

// HasToken reports whether the given bearer token is valid for this user.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// RemoveToken invalidates a single bearer token. Other tokens held by the
// same user stay valid.
func (u *User) RemoveToken(token string) {
	for i, t := range u.Tokens {
		if t == token {
			u.Tokens = append(u.Tokens[:i], u.Tokens[i+1:]...)
			return
		}
	}
}

// Profile is the public view of a user returned to clients. The password
// hash and token list never leave the server.
type Profile struct {
	ID          string `json:"userId"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	HouseholdID string `json:"householdId"`
	IsAdmin     bool   `json:"isAdmin"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		HouseholdID: u.HouseholdID,
		IsAdmin:     u.IsAdmin,
	}
}
