package domain

import (
	"context"
	"time"
)

// Role identifies which population a registration belongs to.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleVolunteer   Role = "volunteer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleParticipant || r == RoleVolunteer
}

// Status is the lifecycle state of a registration. A registration starts as
// registered; staff move it to confirmed or waitlisted.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusConfirmed  Status = "confirmed"
	StatusWaitlisted Status = "waitlisted"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusRegistered || s == StatusConfirmed || s == StatusWaitlisted
}

// Attendance is the post-event presence record, settable only for confirmed
// registrations.
type Attendance string

const (
	AttendancePresent Attendance = "present"
	AttendanceAbsent  Attendance = "absent"
)

// Valid reports whether a is a known attendance value.
func (a Attendance) Valid() bool {
	return a == AttendancePresent || a == AttendanceAbsent
}

// Registration represents a user's signup for one event.
// swagger:model Registration
type Registration struct {
	ID                    string      `json:"id"`
	UserID                string      `json:"user_id"`
	EventID               string      `json:"event_id"`
	RoleAtRegistration    Role        `json:"role_at_registration"`
	Status                Status      `json:"status"`
	Attendance            *Attendance `json:"attendance,omitempty"`
	AttendanceSubmittedAt *time.Time  `json:"attendance_submitted_at,omitempty"`
	Timestamp             time.Time   `json:"timestamp"`
}

// NewRegistration creates a registration in the initial registered state.
// ID is typically set by the repository on create.
func NewRegistration(userID, eventID string, role Role, timestamp time.Time) *Registration {
	return &Registration{
		UserID:             userID,
		EventID:            eventID,
		RoleAtRegistration: role,
		Status:             StatusRegistered,
		Timestamp:          timestamp,
	}
}

// StatusUpdate is one record of a confirmation commit batch.
type StatusUpdate struct {
	RegistrationID string
	Status         Status
}

// AttendanceUpdate is one record of an attendance commit batch. Attendance
// may be nil when staff submitted without recording the entry.
type AttendanceUpdate struct {
	RegistrationID string
	Attendance     *Attendance
}

// RegistrationRepository defines storage operations for registrations.
// Batch methods are all-or-nothing: either every record in the batch is
// durably updated or none are.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	ListByUserID(ctx context.Context, userID string) ([]*Registration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	ListByRole(ctx context.Context, role Role, status *Status) ([]*Registration, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	BatchUpdateStatuses(ctx context.Context, updates []StatusUpdate) error
	SubmitAttendanceBatch(ctx context.Context, updates []AttendanceUpdate, submittedAt time.Time) error
}

// RegistrationWithEvent bundles a registration with its related event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}
