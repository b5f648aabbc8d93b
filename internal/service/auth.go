package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkeren/pawtrack/internal/apperr"
	"github.com/mkeren/pawtrack/internal/model"
	"github.com/mkeren/pawtrack/internal/store"
)

// AuthService handles registration, login, and bearer-token resolution.
// Tokens are opaque random strings held on the user record; a user may hold
// several valid tokens at once (one per device) and tokens never expire on
// their own.
type AuthService struct {
	store  *store.Store
	logger *slog.Logger
}

func NewAuthService(st *store.Store, logger *slog.Logger) *AuthService {
	return &AuthService{store: st, logger: logger}
}

// Register creates a new user. A valid invite token attaches the user to the
// referenced household as a regular member and consumes the token; without
// one a new household is created with the registrant as its sole admin.
func (s *AuthService) Register(email, password, displayName, inviteToken string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password required", apperr.ErrInvalid)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	username := displayName
	if username == "" {
		username = email[:strings.IndexByte(email+"@", '@')]
	}

	var user *model.User
	token := newBearerToken()

	err = s.store.Update(func(doc *model.Document) error {
		for _, u := range doc.Users {
			if strings.EqualFold(u.Email, email) {
				return apperr.ErrEmailTaken
			}
		}

		householdID := ""
		isAdmin := false
		if inviteToken != "" {
			for _, h := range doc.Households {
				if h.HasInviteToken(inviteToken) {
					householdID = h.ID
					h.RemoveInviteToken(inviteToken)
					break
				}
			}
			if householdID == "" {
				return fmt.Errorf("%w: invalid invite token", apperr.ErrInvalid)
			}
		} else {
			h := &model.Household{
				ID:           uuid.NewString(),
				Name:         username + "'s family",
				InviteTokens: []string{uuid.NewString()},
				CreatedAt:    time.Now().Unix(),
			}
			doc.Households[h.ID] = h
			householdID = h.ID
			isAdmin = true
		}

		user = &model.User{
			ID:           uuid.NewString(),
			Email:        email,
			Username:     username,
			PasswordHash: string(hash),
			HouseholdID:  householdID,
			IsAdmin:      isAdmin,
			Tokens:       []string{token},
			CreatedAt:    time.Now().Unix(),
		}
		doc.Users[user.ID] = user
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", "user_id", user.ID, "household_id", user.HouseholdID, "invited", inviteToken != "")
	return user, token, nil
}

// Login verifies credentials and issues a fresh bearer token. Existing
// tokens for the same user stay valid.
func (s *AuthService) Login(email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password required", apperr.ErrInvalid)
	}

	var user *model.User
	token := newBearerToken()

	err := s.store.Update(func(doc *model.Document) error {
		for _, u := range doc.Users {
			if strings.EqualFold(u.Email, email) || u.Username == email {
				if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
					return apperr.ErrUnauthorized
				}
				u.Tokens = append(u.Tokens, token)
				user = u
				return nil
			}
		}
		return apperr.ErrUnauthorized
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", "user_id", user.ID, "household_id", user.HouseholdID)
	return user, token, nil
}

// Logout invalidates a single bearer token.
func (s *AuthService) Logout(token string) error {
	return s.store.Update(func(doc *model.Document) error {
		for _, u := range doc.Users {
			if u.HasToken(token) {
				u.RemoveToken(token)
				return nil
			}
		}
		return apperr.ErrUnauthorized
	})
}

// Resolve maps a bearer token back to its user. Every authenticated
// operation goes through here via the middleware.
func (s *AuthService) Resolve(token string) (*model.User, error) {
	if token == "" {
		return nil, apperr.ErrUnauthorized
	}
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if u.HasToken(token) {
			return u, nil
		}
	}
	return nil, apperr.ErrUnauthorized
}

// newBearerToken returns 32 random bytes, hex encoded.
func newBearerToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(b)
}
