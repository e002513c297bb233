package domain

import "context"

// RosterEntry is one registration joined with its user profile, as shown on
// the staff roster. Status and Attendance hold staged edits until a commit
// operation persists them.
type RosterEntry struct {
	Registration *Registration `json:"registration"`
	Profile      *UserProfile  `json:"profile"`
}

// Roster is the session-scoped staging area for one event's registrations,
// split into the two populations sharing the registration ledger. Staff edit
// statuses and attendance in place; SendConfirmations and SubmitAttendance
// commit the staged state. Not goroutine safe; one roster per staff session.
type Roster struct {
	EventID      string         `json:"event_id"`
	Participants []*RosterEntry `json:"participants"`
	Volunteers   []*RosterEntry `json:"volunteers"`

	// ConfirmationsSent flips to true after a successful confirmation
	// dispatch with at least one recipient.
	ConfirmationsSent bool `json:"confirmations_sent"`

	// ConfirmationMessage and AttendanceMessage hold the latest operation
	// outcome. They auto-clear after the roster service's display window
	// unless superseded by a newer call.
	ConfirmationMessage string `json:"confirmation_message,omitempty"`
	AttendanceMessage   string `json:"attendance_message,omitempty"`

	confirmationSeq uint64
	attendanceSeq   uint64
}

// Entries returns participants followed by volunteers.
func (r *Roster) Entries() []*RosterEntry {
	out := make([]*RosterEntry, 0, len(r.Participants)+len(r.Volunteers))
	out = append(out, r.Participants...)
	out = append(out, r.Volunteers...)
	return out
}

// Find returns the entry with the given registration ID, or nil.
func (r *Roster) Find(registrationID string) *RosterEntry {
	for _, e := range r.Entries() {
		if e.Registration.ID == registrationID {
			return e
		}
	}
	return nil
}

// NextConfirmationSeq advances and returns the confirmation message
// generation. Used by the roster service's expiry timer.
func (r *Roster) NextConfirmationSeq() uint64 {
	r.confirmationSeq++
	return r.confirmationSeq
}

// ConfirmationSeq returns the current confirmation message generation.
func (r *Roster) ConfirmationSeq() uint64 { return r.confirmationSeq }

// NextAttendanceSeq advances and returns the attendance message generation.
func (r *Roster) NextAttendanceSeq() uint64 {
	r.attendanceSeq++
	return r.attendanceSeq
}

// AttendanceSeq returns the current attendance message generation.
func (r *Roster) AttendanceSeq() uint64 { return r.attendanceSeq }

// RosterService defines the staff review workflow: loading an event roster,
// staging status and attendance edits, and committing them.
type RosterService interface {
	// LoadRoster fetches the event's registrations, joins user profiles, and
	// splits the result by each registration's role.
	LoadRoster(ctx context.Context, eventID string) (*Roster, error)
	// SetStatus stages a status change on the roster. No store write.
	SetStatus(roster *Roster, registrationID string, status Status) error
	// SetAttendance stages an attendance value. Valid only while the entry is
	// confirmed and its attendance batch has not been sealed. No store write.
	SetAttendance(roster *Roster, registrationID string, attendance Attendance) error
	// SendConfirmations commits all staged statuses in one atomic batch and
	// emails confirmed and waitlisted registrants. Returns the outcome
	// message, which is also stored on the roster.
	SendConfirmations(ctx context.Context, roster *Roster) (string, error)
	// SubmitAttendance commits attendance for every confirmed entry in one
	// atomic batch, sealing it with the submission time. Returns the outcome
	// message reporting recorded / total confirmed counts.
	SubmitAttendance(ctx context.Context, roster *Roster) (string, error)
	// ListRegistrationsByRole returns registrations for one population,
	// optionally filtered by status, joined with their events.
	ListRegistrationsByRole(ctx context.Context, role Role, status *Status) ([]*RegistrationWithEvent, error)
}
