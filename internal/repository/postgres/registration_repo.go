package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"communityprogram/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

const registrationColumns = `id, user_id, event_id, role_at_registration, status, attendance, attendance_submitted_at, timestamp`

func scanRegistration(row interface{ Scan(dest ...any) error }) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var attendance sql.NullString
	var submittedAt sql.NullTime
	err := row.Scan(
		&reg.ID, &reg.UserID, &reg.EventID, &reg.RoleAtRegistration, &reg.Status,
		&attendance, &submittedAt, &reg.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	if attendance.Valid {
		a := domain.Attendance(attendance.String)
		reg.Attendance = &a
	}
	if submittedAt.Valid {
		reg.AttendanceSubmittedAt = &submittedAt.Time
	}
	return reg, nil
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (user_id, event_id, role_at_registration, status, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		reg.UserID, reg.EventID, reg.RoleAtRegistration, reg.Status, reg.Timestamp,
	).Scan(&reg.ID)
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE user_id = $1
		ORDER BY timestamp DESC
	`
	return r.queryRegistrations(ctx, query, userID)
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1
		ORDER BY timestamp
	`
	return r.queryRegistrations(ctx, query, eventID)
}

func (r *registrationRepository) ListByRole(ctx context.Context, role domain.Role, status *domain.Status) ([]*domain.Registration, error) {
	if status != nil {
		query := `
			SELECT ` + registrationColumns + `
			FROM registrations
			WHERE role_at_registration = $1 AND status = $2
			ORDER BY timestamp DESC
		`
		return r.queryRegistrations(ctx, query, role, *status)
	}
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE role_at_registration = $1
		ORDER BY timestamp DESC
	`
	return r.queryRegistrations(ctx, query, role)
}

func (r *registrationRepository) queryRegistrations(ctx context.Context, query string, args ...any) ([]*domain.Registration, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, nil
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	query := `
		UPDATE registrations
		SET status = $1
		WHERE id = $2
	`
	res, err := r.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// BatchUpdateStatuses applies every status update inside one transaction so
// a cohort is never left partially confirmed.
func (r *registrationRepository) BatchUpdateStatuses(ctx context.Context, updates []domain.StatusUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE registrations
		SET status = $1
		WHERE id = $2
	`
	for _, u := range updates {
		res, err := tx.ExecContext(ctx, query, u.Status, u.RegistrationID)
		if err != nil {
			return fmt.Errorf("update status for %s: %w", u.RegistrationID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("registration %s: %w", u.RegistrationID, domain.ErrNotFound)
		}
	}
	return tx.Commit()
}

// SubmitAttendanceBatch persists attendance and the shared submission
// timestamp for the whole batch inside one transaction.
func (r *registrationRepository) SubmitAttendanceBatch(ctx context.Context, updates []domain.AttendanceUpdate, submittedAt time.Time) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE registrations
		SET attendance = $1, attendance_submitted_at = $2
		WHERE id = $3
	`
	for _, u := range updates {
		var attendance sql.NullString
		if u.Attendance != nil {
			attendance = sql.NullString{String: string(*u.Attendance), Valid: true}
		}
		res, err := tx.ExecContext(ctx, query, attendance, submittedAt, u.RegistrationID)
		if err != nil {
			return fmt.Errorf("update attendance for %s: %w", u.RegistrationID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("registration %s: %w", u.RegistrationID, domain.ErrNotFound)
		}
	}
	return tx.Commit()
}
