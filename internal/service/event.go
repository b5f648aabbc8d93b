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

const (
	pottyChallengeID     = "potty_hero"
	pottyChallengeTitle  = "Log 3 potty events today"
	pottyChallengeTarget = 3
)

// EventService records and lists care events and recomputes the scoreboard
// after every mutation.
type EventService struct {
	store  *store.Store
	logger *slog.Logger
}

func NewEventService(st *store.Store, logger *slog.Logger) *EventService {
	return &EventService{store: st, logger: logger}
}

// TodayView is the response for the daily timeline: today's events for the
// household plus schedule flags and the caller's potty challenge.
type TodayView struct {
	Date           string               `json:"date"`
	Events         []model.EventView    `json:"events"`
	Schedule       model.ScheduleFlags  `json:"schedule"`
	DailyChallenge model.DailyChallenge `json:"dailyChallenge"`
}

// HistoryView is the timeline for an arbitrary day.
type HistoryView struct {
	Date   string            `json:"date"`
	Events []model.EventView `json:"events"`
}

// Record appends a new event with the current timestamp and the point value
// fixed by the type table, then returns the recomputed scoreboard.
func (s *EventService) Record(ctx context.Context, eventType string) (*model.Event, model.Scoreboard, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return nil, model.Scoreboard{}, apperr.ErrUnauthorized
	}

	pts, known := model.PointsForType(eventType)
	if !known {
		return nil, model.Scoreboard{}, fmt.Errorf("%w: unknown event type %q", apperr.ErrInvalid, eventType)
	}

	ev := &model.Event{
		ID:          uuid.NewString(),
		HouseholdID: ac.HouseholdID,
		UserID:      ac.UserID,
		Type:        eventType,
		Timestamp:   time.Now().Unix(),
		Points:      pts,
	}

	err := s.store.Update(func(doc *model.Document) error {
		doc.Events[ev.ID] = ev
		return nil
	})
	if err != nil {
		return nil, model.Scoreboard{}, err
	}

	sb, err := s.Scores(ctx)
	if err != nil {
		return nil, model.Scoreboard{}, err
	}
	s.logger.Info("event recorded", "event_id", ev.ID, "type", eventType, "user_id", ac.UserID, "family_total", sb.FamilyTotal)
	return ev, sb, nil
}

// Delete removes a single event. Events outside the caller's household (or
// unknown ids) are not found; regular members may only delete their own
// events, admins may delete any.
func (s *EventService) Delete(ctx context.Context, eventID string) (model.Scoreboard, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return model.Scoreboard{}, apperr.ErrUnauthorized
	}

	err := s.store.Update(func(doc *model.Document) error {
		ev, exists := doc.Events[eventID]
		if !exists || ev.HouseholdID != ac.HouseholdID {
			return fmt.Errorf("%w: event %s", apperr.ErrNotFound, eventID)
		}
		if !ac.IsAdmin && ev.UserID != ac.UserID {
			return fmt.Errorf("%w: not your event", apperr.ErrForbidden)
		}
		delete(doc.Events, eventID)
		return nil
	})
	if err != nil {
		return model.Scoreboard{}, err
	}

	s.logger.Info("event deleted", "event_id", eventID, "user_id", ac.UserID)
	return s.Scores(ctx)
}

// Scores recomputes the caller's household scoreboard.
func (s *EventService) Scores(ctx context.Context) (model.Scoreboard, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return model.Scoreboard{}, apperr.ErrUnauthorized
	}
	doc, err := s.store.Load()
	if err != nil {
		return model.Scoreboard{}, err
	}
	return ComputeScoreboard(doc, ac.HouseholdID, time.Now()), nil
}

// Today lists the household's events for the current day with schedule
// flags and the caller's daily challenge progress.
func (s *EventService) Today(ctx context.Context) (TodayView, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return TodayView{}, apperr.ErrUnauthorized
	}

	now := time.Now()
	events, err := s.eventsOn(ac.HouseholdID, startOfDay(now))
	if err != nil {
		return TodayView{}, err
	}

	view := TodayView{
		Date:   startOfDay(now).Format(time.DateOnly),
		Events: events,
	}
	potty := 0
	for _, ev := range events {
		switch ev.Type {
		case model.TypeFeedMorning:
			view.Schedule.HasMorningFeed = true
		case model.TypeFeedEvening:
			view.Schedule.HasEveningFeed = true
		case model.TypeWalk, model.TypeWalkMorning, model.TypeWalkAfternoon, model.TypeWalkEvening:
			view.Schedule.HasWalk = true
		case model.TypePee:
			view.Schedule.HasPee = true
		case model.TypePoop:
			view.Schedule.HasPoop = true
		}
		if ev.UserID == ac.UserID && (ev.Type == model.TypePee || ev.Type == model.TypePoop) {
			potty++
		}
	}
	view.DailyChallenge = model.DailyChallenge{
		ID:        pottyChallengeID,
		Title:     pottyChallengeTitle,
		Target:    pottyChallengeTarget,
		Progress:  potty,
		Completed: potty >= pottyChallengeTarget,
	}
	return view, nil
}

// History lists the household's events for a given day (YYYY-MM-DD).
// An empty date means today.
func (s *EventService) History(ctx context.Context, date string) (HistoryView, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return HistoryView{}, apperr.ErrUnauthorized
	}

	day := startOfDay(time.Now())
	if date != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, date, time.Local)
		if err != nil {
			return HistoryView{}, fmt.Errorf("%w: invalid date %q", apperr.ErrInvalid, date)
		}
		day = parsed
	}

	events, err := s.eventsOn(ac.HouseholdID, day)
	if err != nil {
		return HistoryView{}, err
	}
	return HistoryView{Date: day.Format(time.DateOnly), Events: events}, nil
}

// ClearEvents wipes the household's entire event log (admin only). Because
// all scores are derived from the log, this is also how scores are reset.
func (s *EventService) ClearEvents(ctx context.Context) (int, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return 0, apperr.ErrUnauthorized
	}
	if !ac.IsAdmin {
		return 0, fmt.Errorf("%w: admin only", apperr.ErrForbidden)
	}

	removed := 0
	err := s.store.Update(func(doc *model.Document) error {
		for id, ev := range doc.Events {
			if ev.HouseholdID == ac.HouseholdID {
				delete(doc.Events, id)
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("events cleared", "household_id", ac.HouseholdID, "removed", removed, "by", ac.UserID)
	return removed, nil
}

// eventsOn returns the household's events whose local date matches day,
// ordered by timestamp, with recorder names resolved.
func (s *EventService) eventsOn(householdID string, day time.Time) ([]model.EventView, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	views := make([]model.EventView, 0)
	for _, ev := range doc.Events {
		if ev.HouseholdID != householdID {
			continue
		}
		evDay := startOfDay(time.Unix(ev.Timestamp, 0).In(day.Location()))
		if !evDay.Equal(day) {
			continue
		}
		username := ""
		if u, ok := doc.Users[ev.UserID]; ok {
			username = u.Username
		}
		views = append(views, model.EventView{
			ID:        ev.ID,
			Type:      ev.Type,
			Timestamp: ev.Timestamp,
			Points:    ev.Points,
			UserID:    ev.UserID,
			Username:  username,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Timestamp < views[j].Timestamp })
	return views, nil
}
