package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mkeren/pawtrack/internal/apperr"
	"github.com/mkeren/pawtrack/internal/auth"
	"github.com/mkeren/pawtrack/internal/model"
	"github.com/mkeren/pawtrack/internal/store"
)

// HouseholdService manages household membership, invite tokens, member
// roles, and the dog profile.
type HouseholdService struct {
	store  *store.Store
	logger *slog.Logger
}

func NewHouseholdService(st *store.Store, logger *slog.Logger) *HouseholdService {
	return &HouseholdService{store: st, logger: logger}
}

// DogProfileUpdate carries the fields to merge into the household's dog
// profile. Nil fields are left unchanged.
type DogProfileUpdate struct {
	DogName      *string `json:"dogName"`
	DogAgeMonths *int    `json:"dogAgeMonths"`
	DogPhotoURL  *string `json:"dogPhotoUrl"`
}

// Overview is the composite view returned after login/registration and from
// the user endpoint: the caller's profile, the household and dog profile,
// fellow members, outstanding invite tokens, and the live scoreboard.
type Overview struct {
	model.Profile
	HouseholdName string          `json:"householdName"`
	DogName       string          `json:"dogName"`
	DogAgeMonths  int             `json:"dogAgeMonths"`
	DogPhotoURL   string          `json:"dogPhotoUrl"`
	InviteTokens  []string        `json:"inviteTokens"`
	Members       []model.Profile `json:"members"`
	model.Scoreboard
}

// Overview builds the caller's household overview.
func (s *HouseholdService) Overview(ctx context.Context) (Overview, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return Overview{}, apperr.ErrUnauthorized
	}

	doc, err := s.store.Load()
	if err != nil {
		return Overview{}, err
	}
	user, exists := doc.Users[ac.UserID]
	if !exists {
		return Overview{}, fmt.Errorf("%w: user %s", apperr.ErrNotFound, ac.UserID)
	}
	h, exists := doc.Households[user.HouseholdID]
	if !exists {
		return Overview{}, fmt.Errorf("%w: household %s", apperr.ErrNotFound, user.HouseholdID)
	}

	members := doc.HouseholdMembers(h.ID)
	profiles := make([]model.Profile, 0, len(members))
	for _, m := range members {
		profiles = append(profiles, m.Profile())
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Username < profiles[j].Username })

	tokens := h.InviteTokens
	if tokens == nil {
		tokens = []string{}
	}

	return Overview{
		Profile:       user.Profile(),
		HouseholdName: h.Name,
		DogName:       h.DogName,
		DogAgeMonths:  h.DogAgeMonths,
		DogPhotoURL:   h.DogPhotoURL,
		InviteTokens:  tokens,
		Members:       profiles,
		Scoreboard:    ComputeScoreboard(doc, h.ID, time.Now()),
	}, nil
}

// GenerateInvite mints a fresh invite token for the caller's household
// (admin only) and returns it together with the full outstanding list.
func (s *HouseholdService) GenerateInvite(ctx context.Context) (string, []string, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return "", nil, apperr.ErrUnauthorized
	}
	if !ac.IsAdmin {
		return "", nil, fmt.Errorf("%w: only admins manage invites", apperr.ErrForbidden)
	}

	token := uuid.NewString()
	var tokens []string
	err := s.store.Update(func(doc *model.Document) error {
		h, exists := doc.Households[ac.HouseholdID]
		if !exists {
			return fmt.Errorf("%w: household %s", apperr.ErrNotFound, ac.HouseholdID)
		}
		h.InviteTokens = append(h.InviteTokens, token)
		tokens = append([]string(nil), h.InviteTokens...)
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("invite generated", "household_id", ac.HouseholdID, "by", ac.UserID)
	return token, tokens, nil
}

// ResetInvites revokes every outstanding invite token and issues a single
// fresh one (admin only).
func (s *HouseholdService) ResetInvites(ctx context.Context) (string, []string, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return "", nil, apperr.ErrUnauthorized
	}
	if !ac.IsAdmin {
		return "", nil, fmt.Errorf("%w: only admins manage invites", apperr.ErrForbidden)
	}

	token := uuid.NewString()
	err := s.store.Update(func(doc *model.Document) error {
		h, exists := doc.Households[ac.HouseholdID]
		if !exists {
			return fmt.Errorf("%w: household %s", apperr.ErrNotFound, ac.HouseholdID)
		}
		h.InviteTokens = []string{token}
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("invites reset", "household_id", ac.HouseholdID, "by", ac.UserID)
	return token, []string{token}, nil
}

// SetMemberRole flips a member's admin flag (admin only). A household must
// always keep at least one admin, so demoting the last one is refused.
func (s *HouseholdService) SetMemberRole(ctx context.Context, targetUserID string, isAdmin bool) ([]model.Profile, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	if !ac.IsAdmin {
		return nil, fmt.Errorf("%w: only admins manage roles", apperr.ErrForbidden)
	}

	var profiles []model.Profile
	err := s.store.Update(func(doc *model.Document) error {
		target, exists := doc.Users[targetUserID]
		if !exists || target.HouseholdID != ac.HouseholdID {
			return fmt.Errorf("%w: user %s", apperr.ErrNotFound, targetUserID)
		}
		if target.IsAdmin && !isAdmin && doc.AdminCount(ac.HouseholdID) == 1 {
			return fmt.Errorf("%w: household needs at least one admin", apperr.ErrForbidden)
		}
		target.IsAdmin = isAdmin

		for _, m := range doc.HouseholdMembers(ac.HouseholdID) {
			profiles = append(profiles, m.Profile())
		}
		sort.Slice(profiles, func(i, j int) bool { return profiles[i].Username < profiles[j].Username })
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("member role updated", "target", targetUserID, "is_admin", isAdmin, "by", ac.UserID)
	return profiles, nil
}

// UpdateDogProfile merges the provided fields into the household's dog
// profile (admin only). At least one field must be set.
func (s *HouseholdService) UpdateDogProfile(ctx context.Context, upd DogProfileUpdate) (*model.Household, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	if !ac.IsAdmin {
		return nil, fmt.Errorf("%w: only admins edit the dog profile", apperr.ErrForbidden)
	}
	if upd.DogName == nil && upd.DogAgeMonths == nil && upd.DogPhotoURL == nil {
		return nil, fmt.Errorf("%w: nothing to update", apperr.ErrInvalid)
	}

	var updated *model.Household
	err := s.store.Update(func(doc *model.Document) error {
		h, exists := doc.Households[ac.HouseholdID]
		if !exists {
			return fmt.Errorf("%w: household %s", apperr.ErrNotFound, ac.HouseholdID)
		}
		if upd.DogName != nil {
			h.DogName = *upd.DogName
		}
		if upd.DogAgeMonths != nil {
			h.DogAgeMonths = *upd.DogAgeMonths
		}
		if upd.DogPhotoURL != nil {
			h.DogPhotoURL = *upd.DogPhotoURL
		}
		updated = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("dog profile updated", "household_id", ac.HouseholdID, "by", ac.UserID)
	return updated, nil
}
