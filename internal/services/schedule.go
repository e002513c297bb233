package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"communityprogram/internal/domain"
)

type scheduleService struct {
	eventRepo      domain.EventRepository
	clock          domain.Clock
	contextTimeout time.Duration
}

// NewScheduleService creates a ScheduleService with the given repository and clock.
func NewScheduleService(eventRepo domain.EventRepository, clock domain.Clock, timeout time.Duration) domain.ScheduleService {
	return &scheduleService{
		eventRepo:      eventRepo,
		clock:          clock,
		contextTimeout: timeout,
	}
}

const clockTimeLayout = "15:04"

// parseCost turns the form's cost string into a price. Empty, unparsable, or
// non-finite input means the activity is free.
func parseCost(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	return &v
}

// firstOccurrence returns the first date on or after anchor that falls on wd.
func firstOccurrence(anchor time.Time, wd time.Weekday) time.Time {
	distance := (int(wd) - int(anchor.Weekday()) + 7) % 7
	return anchor.AddDate(0, 0, distance)
}

// at combines a date with a clock time in the date's location.
func at(date time.Time, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, date.Location())
}

func (s *scheduleService) ExpandProgram(input *domain.ProgramInput) ([]*domain.Event, error) {
	if input == nil || strings.TrimSpace(input.Title) == "" {
		return nil, domain.ErrInvalidInput
	}

	startClock, err := time.Parse(clockTimeLayout, input.StartTime)
	if err != nil {
		return nil, fmt.Errorf("parse start time: %w", domain.ErrInvalidInput)
	}
	endClock, err := time.Parse(clockTimeLayout, input.EndTime)
	if err != nil {
		return nil, fmt.Errorf("parse end time: %w", domain.ErrInvalidInput)
	}

	// Duplicate weekday selections collapse to the first mention.
	seen := make(map[time.Weekday]struct{}, len(input.Weekdays))
	var weekdays []time.Weekday
	for _, wd := range input.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return nil, fmt.Errorf("weekday %d: %w", wd, domain.ErrInvalidInput)
		}
		if _, ok := seen[wd]; ok {
			continue
		}
		seen[wd] = struct{}{}
		weekdays = append(weekdays, wd)
	}

	cost := parseCost(input.Cost)
	now := s.clock.Now()

	if len(weekdays) <= 1 {
		// Stand-alone activity. A single selected weekday still snaps to its
		// first occurrence; an empty selection anchors on the date itself.
		date := input.Date
		if len(weekdays) == 1 {
			date = firstOccurrence(input.Date, weekdays[0])
		}
		ev, err := s.buildEvent(input, date, startClock, endClock, cost, now)
		if err != nil {
			return nil, err
		}
		ev.MinCommitment = 1
		return []*domain.Event{ev}, nil
	}

	seriesID := uuid.NewString()
	minCommitment := input.MinCommitment
	if minCommitment < 1 {
		minCommitment = 1
	}

	events := make([]*domain.Event, 0, len(weekdays))
	for _, wd := range weekdays {
		ev, err := s.buildEvent(input, firstOccurrence(input.Date, wd), startClock, endClock, cost, now)
		if err != nil {
			return nil, err
		}
		ev.IsSeries = true
		sid := seriesID
		ev.SeriesID = &sid
		ev.MinCommitment = minCommitment
		events = append(events, ev)
	}
	return events, nil
}

func (s *scheduleService) buildEvent(input *domain.ProgramInput, date time.Time, startClock, endClock time.Time, cost *float64, now time.Time) (*domain.Event, error) {
	start := at(date, startClock)
	end := at(date, endClock)
	if !end.After(start) {
		return nil, fmt.Errorf("event must end after it starts: %w", domain.ErrInvalidInput)
	}
	return &domain.Event{
		ID:                   uuid.NewString(),
		Title:                input.Title,
		Start:                start,
		End:                  end,
		MinCommitment:        1,
		WheelchairAccessible: input.WheelchairAccessible,
		Cost:                 cost,
		ContactIC:            input.ContactIC,
		Location:             input.Location,
		Description:          input.Description,
		ImageURL:             input.ImageURL,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func (s *scheduleService) CreateProgram(ctx context.Context, input *domain.ProgramInput) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.ExpandProgram(input)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		if err := s.eventRepo.Create(ctx, ev); err != nil {
			return nil, fmt.Errorf("create event %q: %w", ev.Title, err)
		}
	}
	return events, nil
}

func (s *scheduleService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

func (s *scheduleService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *scheduleService) UpdateEvent(ctx context.Context, eventID string, update *domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if update == nil {
		return nil, domain.ErrInvalidInput
	}

	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	newStart := ev.Start
	if update.Start != nil {
		newStart = *update.Start
	}
	newEnd := ev.End
	if update.End != nil {
		newEnd = *update.End
	}
	if !newEnd.After(newStart) {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.eventRepo.Update(ctx, eventID, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}
