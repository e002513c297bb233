package domain

import (
	"context"
	"time"
)

// ProgramInput is the staff event-creation form. Date is the anchor day;
// StartTime and EndTime are clock times in "15:04" form applied to each
// generated instance. Weekdays selects the recurring days; with zero or one
// entries a single stand-alone event is produced.
type ProgramInput struct {
	Title                string         `json:"title"`
	Date                 time.Time      `json:"date"`
	StartTime            string         `json:"start_time"`
	EndTime              string         `json:"end_time"`
	Weekdays             []time.Weekday `json:"weekdays"`
	MinCommitment        int            `json:"min_commitment"`
	WheelchairAccessible bool           `json:"wheelchair_accessible"`
	ContactIC            string         `json:"contact_ic"`
	Location             string         `json:"location"`
	Description          string         `json:"description"`
	Cost                 string         `json:"cost"`
	ImageURL             string         `json:"image_url"`
}

// ScheduleService defines staff-facing event management: expanding a program
// form into concrete event instances and editing existing events.
type ScheduleService interface {
	// ExpandProgram turns input into dated event instances without
	// persisting them. Pure except for ID generation.
	ExpandProgram(input *ProgramInput) ([]*Event, error)
	// CreateProgram expands input and persists every instance.
	CreateProgram(ctx context.Context, input *ProgramInput) ([]*Event, error)
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID string, update *EventUpdate) (*Event, error)
}
