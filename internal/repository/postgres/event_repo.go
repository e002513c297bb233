package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"communityprogram/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, title, start_time, end_time, is_series, series_id, min_commitment,
		wheelchair_accessible, cost, contact_ic, location, description, image_url, created_at, updated_at`

func scanEvent(row interface{ Scan(dest ...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var seriesID sql.NullString
	var cost sql.NullFloat64
	err := row.Scan(
		&e.ID, &e.Title, &e.Start, &e.End, &e.IsSeries, &seriesID, &e.MinCommitment,
		&e.WheelchairAccessible, &cost, &e.ContactIC, &e.Location, &e.Description,
		&e.ImageURL, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if seriesID.Valid {
		e.SeriesID = &seriesID.String
	}
	if cost.Valid {
		e.Cost = &cost.Float64
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (id, title, start_time, end_time, is_series, series_id, min_commitment,
			wheelchair_accessible, cost, contact_ic, location, description, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	var seriesID sql.NullString
	if e.SeriesID != nil {
		seriesID = sql.NullString{String: *e.SeriesID, Valid: true}
	}
	var cost sql.NullFloat64
	if e.Cost != nil {
		cost = sql.NullFloat64{Float64: *e.Cost, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Title, e.Start, e.End, e.IsSeries, seriesID, e.MinCommitment,
		e.WheelchairAccessible, cost, e.ContactIC, e.Location, e.Description,
		e.ImageURL, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY start_time
	`
	return r.queryEvents(ctx, query)
}

func (r *eventRepository) ListBySeriesID(ctx context.Context, seriesID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE series_id = $1
		ORDER BY start_time
	`
	return r.queryEvents(ctx, query, seriesID)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, update *domain.EventUpdate) (*domain.Event, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.Title != nil {
		sets = append(sets, "title = "+arg(*update.Title))
	}
	if update.Start != nil {
		sets = append(sets, "start_time = "+arg(*update.Start))
	}
	if update.End != nil {
		sets = append(sets, "end_time = "+arg(*update.End))
	}
	if update.WheelchairAccessible != nil {
		sets = append(sets, "wheelchair_accessible = "+arg(*update.WheelchairAccessible))
	}
	if update.ClearCost {
		sets = append(sets, "cost = NULL")
	} else if update.Cost != nil {
		sets = append(sets, "cost = "+arg(*update.Cost))
	}
	if update.ContactIC != nil {
		sets = append(sets, "contact_ic = "+arg(*update.ContactIC))
	}
	if update.Location != nil {
		sets = append(sets, "location = "+arg(*update.Location))
	}
	if update.Description != nil {
		sets = append(sets, "description = "+arg(*update.Description))
	}
	if update.ImageURL != nil {
		sets = append(sets, "image_url = "+arg(*update.ImageURL))
	}

	query := `
		UPDATE events
		SET ` + strings.Join(sets, ", ") + `
		WHERE id = ` + arg(id) + `
		RETURNING ` + eventColumns + `
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}
