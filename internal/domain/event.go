package domain

import (
	"context"
	"time"
)

// Event represents a scheduled community program activity.
// swagger:model Event
type Event struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Start                time.Time `json:"start"`
	End                  time.Time `json:"end"`
	IsSeries             bool      `json:"is_series"`
	SeriesID             *string   `json:"series_id,omitempty"`
	MinCommitment        int       `json:"min_commitment"`
	WheelchairAccessible bool      `json:"wheelchair_accessible"`
	Cost                 *float64  `json:"cost,omitempty"`
	ContactIC            string    `json:"contact_ic"`
	Location             string    `json:"location"`
	Description          string    `json:"description"`
	ImageURL             string    `json:"image_url"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Range returns the event's scheduled time range.
func (e *Event) Range() TimeRange {
	return TimeRange{Start: e.Start, End: e.End}
}

// EventUpdate carries staff edits to an existing event. Nil fields are left unchanged.
// ClearCost resets the cost to free regardless of Cost.
type EventUpdate struct {
	Title                *string
	Start                *time.Time
	End                  *time.Time
	WheelchairAccessible *bool
	Cost                 *float64
	ClearCost            bool
	ContactIC            *string
	Location             *string
	Description          *string
	ImageURL             *string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	ListBySeriesID(ctx context.Context, seriesID string) ([]*Event, error)
	Update(ctx context.Context, id string, update *EventUpdate) (*Event, error)
}
