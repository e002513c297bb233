package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"communityprogram/internal/domain"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

type mockEventRepository struct {
	events  map[string]*domain.Event
	created []*domain.Event
	err     error
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, event)
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (m *mockEventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Event
	for _, ev := range m.events {
		out = append(out, ev)
	}
	return out, nil
}

func (m *mockEventRepository) ListBySeriesID(ctx context.Context, seriesID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, ev := range m.events {
		if ev.SeriesID != nil && *ev.SeriesID == seriesID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockEventRepository) Update(ctx context.Context, eventID string, update *domain.EventUpdate) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

// anchorSunday is a known Sunday used as the program date in tests.
var anchorSunday = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func programInput(weekdays ...time.Weekday) *domain.ProgramInput {
	return &domain.ProgramInput{
		Title:     "Badminton",
		Date:      anchorSunday,
		StartTime: "10:00",
		EndTime:   "12:00",
		Weekdays:  weekdays,
		Location:  "Community Hall",
	}
}

func TestScheduleService_ExpandProgram_Series(t *testing.T) {
	svc := &scheduleService{clock: fixedClock{t: anchorSunday}}

	input := programInput(time.Monday, time.Wednesday)
	input.MinCommitment = 3

	events, err := svc.ExpandProgram(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	monday := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	wednesday := time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)
	if !events[0].Start.Equal(monday) {
		t.Errorf("first event start = %v, want %v", events[0].Start, monday)
	}
	if !events[1].Start.Equal(wednesday) {
		t.Errorf("second event start = %v, want %v", events[1].Start, wednesday)
	}
	if !events[0].End.Equal(monday.Add(2 * time.Hour)) {
		t.Errorf("first event end = %v, want %v", events[0].End, monday.Add(2*time.Hour))
	}

	for i, ev := range events {
		if !ev.IsSeries {
			t.Errorf("event %d should be part of a series", i)
		}
		if ev.SeriesID == nil {
			t.Fatalf("event %d has nil series ID", i)
		}
		if ev.MinCommitment != 3 {
			t.Errorf("event %d min commitment = %d, want 3", i, ev.MinCommitment)
		}
		if ev.ID == "" {
			t.Errorf("event %d has no ID", i)
		}
	}
	if *events[0].SeriesID != *events[1].SeriesID {
		t.Errorf("series IDs differ: %q vs %q", *events[0].SeriesID, *events[1].SeriesID)
	}
	if events[0].ID == events[1].ID {
		t.Errorf("events in a series must have distinct IDs")
	}
}

func TestScheduleService_ExpandProgram_SingleEvent(t *testing.T) {
	svc := &scheduleService{clock: fixedClock{t: anchorSunday}}

	tests := []struct {
		name      string
		input     *domain.ProgramInput
		wantStart time.Time
	}{
		{
			name:      "no weekdays anchors on the date",
			input:     programInput(),
			wantStart: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:      "one weekday snaps to its first occurrence",
			input:     programInput(time.Wednesday),
			wantStart: time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC),
		},
		{
			name:      "weekday equal to the anchor stays on the date",
			input:     programInput(time.Sunday),
			wantStart: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.MinCommitment = 5

			events, err := svc.ExpandProgram(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			ev := events[0]
			if !ev.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", ev.Start, tt.wantStart)
			}
			if ev.IsSeries || ev.SeriesID != nil {
				t.Errorf("stand-alone event must not belong to a series")
			}
			if ev.MinCommitment != 1 {
				t.Errorf("min commitment = %d, want 1 for a stand-alone event", ev.MinCommitment)
			}
		})
	}
}

func TestScheduleService_ExpandProgram_DuplicateWeekdays(t *testing.T) {
	svc := &scheduleService{clock: fixedClock{t: anchorSunday}}

	events, err := svc.ExpandProgram(programInput(time.Monday, time.Monday, time.Wednesday))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("duplicate weekdays should collapse, got %d events", len(events))
	}
}

func TestScheduleService_ExpandProgram_InvalidInput(t *testing.T) {
	svc := &scheduleService{clock: fixedClock{t: anchorSunday}}

	tests := []struct {
		name   string
		mutate func(*domain.ProgramInput)
	}{
		{name: "empty title", mutate: func(in *domain.ProgramInput) { in.Title = "  " }},
		{name: "bad start time", mutate: func(in *domain.ProgramInput) { in.StartTime = "25:00" }},
		{name: "bad end time", mutate: func(in *domain.ProgramInput) { in.EndTime = "noon" }},
		{name: "end before start", mutate: func(in *domain.ProgramInput) { in.StartTime = "12:00"; in.EndTime = "10:00" }},
		{name: "end equals start", mutate: func(in *domain.ProgramInput) { in.EndTime = in.StartTime }},
		{name: "weekday out of range", mutate: func(in *domain.ProgramInput) { in.Weekdays = []time.Weekday{7} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := programInput(time.Monday)
			tt.mutate(input)

			_, err := svc.ExpandProgram(input)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestParseCost(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{in: "", want: nil},
		{in: "  ", want: nil},
		{in: "free", want: nil},
		{in: "NaN", want: nil},
		{in: "+Inf", want: nil},
		{in: "-5", want: nil},
		{in: "0", want: ptr(0.0)},
		{in: "12.50", want: ptr(12.5)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseCost(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parseCost(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Fatalf("parseCost(%q) = %v, want %v", tt.in, *got, *tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestScheduleService_CreateProgram(t *testing.T) {
	repo := &mockEventRepository{}
	svc := NewScheduleService(repo, fixedClock{t: anchorSunday}, time.Second)

	input := programInput(time.Monday, time.Wednesday)
	events, err := svc.CreateProgram(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.created) != len(events) || len(repo.created) != 2 {
		t.Fatalf("expected 2 persisted events, got %d", len(repo.created))
	}
}

func TestScheduleService_CreateProgram_RepoError(t *testing.T) {
	repo := &mockEventRepository{err: errors.New("db down")}
	svc := NewScheduleService(repo, fixedClock{t: anchorSunday}, time.Second)

	_, err := svc.CreateProgram(context.Background(), programInput(time.Monday))
	if err == nil {
		t.Fatalf("expected error when the repository fails")
	}
}

func TestScheduleService_UpdateEvent_RejectsInvertedTimes(t *testing.T) {
	existing := &domain.Event{
		ID:    "e1",
		Title: "Badminton",
		Start: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
	}
	repo := &mockEventRepository{events: map[string]*domain.Event{"e1": existing}}
	svc := NewScheduleService(repo, fixedClock{t: anchorSunday}, time.Second)

	newStart := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
	_, err := svc.UpdateEvent(context.Background(), "e1", &domain.EventUpdate{Start: &newStart})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput when start moves past end, got %v", err)
	}

	newEnd := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	if _, err := svc.UpdateEvent(context.Background(), "e1", &domain.EventUpdate{Start: &newStart, End: &newEnd}); err != nil {
		t.Fatalf("unexpected error when both ends move: %v", err)
	}
}
