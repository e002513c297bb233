package postgres

import (
	"context"
	"database/sql"
	"errors"

	"communityprogram/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{
		DB: db,
	}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	query := `
		SELECT id, name, email, phone, role, caregiver_name, wheelchair_user, meeting_point, notes
		FROM users
		WHERE id = $1
	`
	u := &domain.UserProfile{}
	var caregiver, meetingPoint, notes sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role,
		&caregiver, &u.WheelchairUser, &meetingPoint, &notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.CaregiverName = caregiver.String
	u.MeetingPoint = meetingPoint.String
	u.Notes = notes.String
	return u, nil
}
