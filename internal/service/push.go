package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkeren/pawtrack/internal/apperr"
	"github.com/mkeren/pawtrack/internal/auth"
	"github.com/mkeren/pawtrack/internal/model"
	"github.com/mkeren/pawtrack/internal/store"
)

// PushSubscriptionService stores browser push subscriptions in the document
// alongside the rest of the state.
type PushSubscriptionService struct {
	store  *store.Store
	logger *slog.Logger
}

func NewPushSubscriptionService(st *store.Store, logger *slog.Logger) *PushSubscriptionService {
	return &PushSubscriptionService{store: st, logger: logger}
}

// Subscribe registers a browser endpoint for the calling user. Re-subscribing
// the same endpoint replaces the old record.
func (s *PushSubscriptionService) Subscribe(ctx context.Context, endpoint, p256dh, authKey string) (*model.PushSubscription, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	if endpoint == "" || p256dh == "" || authKey == "" {
		return nil, fmt.Errorf("%w: endpoint and keys required", apperr.ErrInvalid)
	}

	sub := &model.PushSubscription{
		ID:          uuid.NewString(),
		UserID:      ac.UserID,
		HouseholdID: ac.HouseholdID,
		Endpoint:    endpoint,
		P256dhKey:   p256dh,
		AuthKey:     authKey,
		CreatedAt:   time.Now().Unix(),
	}
	err := s.store.Update(func(doc *model.Document) error {
		for id, existing := range doc.PushSubscriptions {
			if existing.Endpoint == endpoint {
				delete(doc.PushSubscriptions, id)
			}
		}
		doc.PushSubscriptions[sub.ID] = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("push subscription added", "subscription_id", sub.ID, "user_id", ac.UserID)
	return sub, nil
}

// Unsubscribe removes a subscription. Members may remove their own; admins
// may remove any in their household.
func (s *PushSubscriptionService) Unsubscribe(ctx context.Context, id string) error {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return apperr.ErrUnauthorized
	}
	return s.store.Update(func(doc *model.Document) error {
		sub, exists := doc.PushSubscriptions[id]
		if !exists || sub.HouseholdID != ac.HouseholdID {
			return fmt.Errorf("%w: subscription %s", apperr.ErrNotFound, id)
		}
		if !ac.IsAdmin && sub.UserID != ac.UserID {
			return fmt.Errorf("%w: not your subscription", apperr.ErrForbidden)
		}
		delete(doc.PushSubscriptions, id)
		return nil
	})
}

// List returns the caller's household subscriptions.
func (s *PushSubscriptionService) List(ctx context.Context) ([]*model.PushSubscription, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	return s.householdSubscriptions(ac.HouseholdID, "")
}

// Recipients returns the household's subscriptions excluding the acting
// user's own devices, for event notifications.
func (s *PushSubscriptionService) Recipients(ctx context.Context) ([]*model.PushSubscription, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	return s.householdSubscriptions(ac.HouseholdID, ac.UserID)
}

// Prune drops subscriptions the push service reported as gone.
func (s *PushSubscriptionService) Prune(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.store.Update(func(doc *model.Document) error {
		for _, id := range ids {
			delete(doc.PushSubscriptions, id)
		}
		return nil
	})
}

func (s *PushSubscriptionService) householdSubscriptions(householdID, excludeUserID string) ([]*model.PushSubscription, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	subs := make([]*model.PushSubscription, 0)
	for _, sub := range doc.PushSubscriptions {
		if sub.HouseholdID != householdID {
			continue
		}
		if excludeUserID != "" && sub.UserID == excludeUserID {
			continue
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
