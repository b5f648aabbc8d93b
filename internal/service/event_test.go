package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mkeren/pawtrack/internal/apperr"
	"github.com/mkeren/pawtrack/internal/auth"
	"github.com/mkeren/pawtrack/internal/logging"
	"github.com/mkeren/pawtrack/internal/model"
	"github.com/mkeren/pawtrack/internal/store"
)

// eventFixture seeds a household with an admin and a regular member and
// returns their contexts.
func eventFixture(t *testing.T) (*EventService, *store.Store, context.Context, context.Context) {
	t.Helper()
	st := newServiceStore(t)
	err := st.Update(func(doc *model.Document) error {
		doc.Households["h1"] = &model.Household{ID: "h1", Name: "testers"}
		doc.Users["u1"] = &model.User{ID: "u1", Username: "alice", HouseholdID: "h1", IsAdmin: true}
		doc.Users["u2"] = &model.User{ID: "u2", Username: "bob", HouseholdID: "h1"}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	adminCtx := auth.WithAuth(context.Background(), auth.AuthContext{UserID: "u1", HouseholdID: "h1", Username: "alice", IsAdmin: true})
	memberCtx := auth.WithAuth(context.Background(), auth.AuthContext{UserID: "u2", HouseholdID: "h1", Username: "bob"})
	return NewEventService(st, logging.Discard()), st, adminCtx, memberCtx
}

func TestRecordEvent(t *testing.T) {
	svc, st, _, memberCtx := eventFixture(t)

	ev, sb, err := svc.Record(memberCtx, model.TypePoop)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if ev.Points != 3 {
		t.Errorf("points = %d, want 3", ev.Points)
	}
	if ev.UserID != "u2" || ev.HouseholdID != "h1" {
		t.Errorf("event attribution = %s/%s, want u2/h1", ev.UserID, ev.HouseholdID)
	}
	if sb.FamilyTotal != 3 {
		t.Errorf("family total = %d, want 3", sb.FamilyTotal)
	}

	doc, _ := st.Load()
	if _, exists := doc.Events[ev.ID]; !exists {
		t.Error("event not persisted")
	}
}

func TestRecordRejectsUnknownType(t *testing.T) {
	svc, st, _, memberCtx := eventFixture(t)

	_, _, err := svc.Record(memberCtx, "bath")
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	doc, _ := st.Load()
	if len(doc.Events) != 0 {
		t.Error("rejected event must not persist")
	}
}

func TestRecordThenDeleteRestoresTotals(t *testing.T) {
	svc, _, _, memberCtx := eventFixture(t)

	if _, _, err := svc.Record(memberCtx, model.TypeWalk); err != nil {
		t.Fatalf("record walk: %v", err)
	}
	ev, sb, err := svc.Record(memberCtx, model.TypePoop)
	if err != nil {
		t.Fatalf("record poop: %v", err)
	}
	if sb.FamilyTotal != 4 {
		t.Fatalf("family total = %d, want 4", sb.FamilyTotal)
	}

	sb, err = svc.Delete(memberCtx, ev.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if sb.FamilyTotal != 1 {
		t.Errorf("family total after delete = %d, want 1", sb.FamilyTotal)
	}
}

func TestDeletePermissions(t *testing.T) {
	svc, _, adminCtx, memberCtx := eventFixture(t)

	adminEv, _, err := svc.Record(adminCtx, model.TypePee)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	// Members cannot delete someone else's event.
	if _, err := svc.Delete(memberCtx, adminEv.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member deleting admin's event: err = %v, want ErrForbidden", err)
	}

	// Admins can delete anyone's event.
	memberEv, _, err := svc.Record(memberCtx, model.TypePee)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := svc.Delete(adminCtx, memberEv.ID); err != nil {
		t.Errorf("admin deleting member's event: %v", err)
	}
}

func TestDeleteUnknownOrForeignEvent(t *testing.T) {
	svc, st, adminCtx, _ := eventFixture(t)

	if _, err := svc.Delete(adminCtx, "no-such-event"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}

	// An event in another household reads as not found, not forbidden.
	err := st.Update(func(doc *model.Document) error {
		doc.Events["foreign"] = &model.Event{ID: "foreign", HouseholdID: "h2", UserID: "ux", Type: model.TypePee, Points: 2}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Delete(adminCtx, "foreign"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign event err = %v, want ErrNotFound", err)
	}
}

func TestTodayViewScheduleAndChallenge(t *testing.T) {
	svc, _, adminCtx, memberCtx := eventFixture(t)

	for _, typ := range []string{model.TypeFeedMorning, model.TypeWalkEvening, model.TypePee, model.TypePee, model.TypePoop} {
		if _, _, err := svc.Record(memberCtx, typ); err != nil {
			t.Fatalf("record %s: %v", typ, err)
		}
	}
	if _, _, err := svc.Record(adminCtx, model.TypePee); err != nil {
		t.Fatalf("record: %v", err)
	}

	view, err := svc.Today(memberCtx)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if len(view.Events) != 6 {
		t.Errorf("events = %d, want 6 (whole household)", len(view.Events))
	}
	if !view.Schedule.HasMorningFeed || !view.Schedule.HasWalk || !view.Schedule.HasPee || !view.Schedule.HasPoop {
		t.Errorf("schedule flags = %+v, want feed/walk/pee/poop set", view.Schedule)
	}
	if view.Schedule.HasEveningFeed {
		t.Error("evening feed flag set without an evening feed")
	}

	// The challenge tracks only the caller's potty events.
	if view.DailyChallenge.Progress != 3 || !view.DailyChallenge.Completed {
		t.Errorf("challenge = %+v, want progress 3 completed", view.DailyChallenge)
	}
	adminView, err := svc.Today(adminCtx)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if adminView.DailyChallenge.Progress != 1 || adminView.DailyChallenge.Completed {
		t.Errorf("admin challenge = %+v, want progress 1 incomplete", adminView.DailyChallenge)
	}
}

func TestHistoryFiltersByDay(t *testing.T) {
	svc, st, _, memberCtx := eventFixture(t)

	if _, _, err := svc.Record(memberCtx, model.TypeWalk); err != nil {
		t.Fatalf("record: %v", err)
	}
	// An event from last week must not show in today's history.
	err := st.Update(func(doc *model.Document) error {
		for _, ev := range doc.Events {
			old := *ev
			old.ID = "old"
			old.Timestamp -= 7 * 24 * 60 * 60
			doc.Events["old"] = &old
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	view, err := svc.History(memberCtx, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(view.Events) != 1 {
		t.Errorf("events = %d, want 1 (today only)", len(view.Events))
	}

	if _, err := svc.History(memberCtx, "not-a-date"); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("bad date err = %v, want ErrInvalid", err)
	}
}

func TestClearEventsAdminOnly(t *testing.T) {
	svc, st, adminCtx, memberCtx := eventFixture(t)

	if _, _, err := svc.Record(memberCtx, model.TypePee); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, _, err := svc.Record(adminCtx, model.TypePoop); err != nil {
		t.Fatalf("record: %v", err)
	}

	if _, err := svc.ClearEvents(memberCtx); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("member clear err = %v, want ErrForbidden", err)
	}

	removed, err := svc.ClearEvents(adminCtx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	doc, _ := st.Load()
	if len(doc.Events) != 0 {
		t.Errorf("events remaining = %d, want 0", len(doc.Events))
	}

	sb, err := svc.Scores(adminCtx)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if sb.FamilyTotal != 0 {
		t.Errorf("family total after clear = %d, want 0", sb.FamilyTotal)
	}
}

func TestEventServiceRequiresAuth(t *testing.T) {
	svc, _, _, _ := eventFixture(t)

	if _, _, err := svc.Record(context.Background(), model.TypePee); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("record err = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Scores(context.Background()); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("scores err = %v, want ErrUnauthorized", err)
	}
}
