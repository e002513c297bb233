package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"communityprogram/internal/domain"
)

// messageTTL is how long an outcome message stays on the roster before the
// dispatcher clears it, unless a newer message supersedes it.
const messageTTL = 5 * time.Second

type rosterService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	userRepo         domain.UserRepository
	emailService     domain.EmailService
	clock            domain.Clock
	logger           *slog.Logger
	contextTimeout   time.Duration

	// afterFunc schedules the message expiry; swapped out in tests.
	afterFunc func(d time.Duration, f func())
}

// NewRosterService creates a RosterService with the given collaborators.
func NewRosterService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	clock domain.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RosterService {
	return &rosterService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		emailService:     emailService,
		clock:            clock,
		logger:           logger,
		contextTimeout:   timeout,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// LoadRoster fetches the event's registrations, joins user profiles, and
// splits the entries by the registration's role field.
func (s *rosterService) LoadRoster(ctx context.Context, eventID string) (*domain.Roster, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	regs, err := s.registrationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	roster := &domain.Roster{
		EventID:      eventID,
		Participants: []*domain.RosterEntry{},
		Volunteers:   []*domain.RosterEntry{},
	}

	profilesByID := make(map[string]*domain.UserProfile)
	for _, reg := range regs {
		profile, ok := profilesByID[reg.UserID]
		if !ok {
			profile, err = s.userRepo.GetByID(ctx, reg.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound) {
					// Profile deleted but registration remains; skip the entry.
					continue
				}
				return nil, fmt.Errorf("get user profile: %w", err)
			}
			profilesByID[reg.UserID] = profile
		}
		entry := &domain.RosterEntry{Registration: reg, Profile: profile}
		switch reg.RoleAtRegistration {
		case domain.RoleParticipant:
			roster.Participants = append(roster.Participants, entry)
		case domain.RoleVolunteer:
			roster.Volunteers = append(roster.Volunteers, entry)
		}
	}
	return roster, nil
}

// SetStatus stages a status change on the roster. Nothing is persisted until
// SendConfirmations commits the batch.
func (s *rosterService) SetStatus(roster *domain.Roster, registrationID string, status domain.Status) error {
	if !status.Valid() {
		return domain.ErrInvalidInput
	}
	entry := roster.Find(registrationID)
	if entry == nil {
		return domain.ErrNotFound
	}
	entry.Registration.Status = status
	return nil
}

// SetAttendance stages an attendance value. Only confirmed entries whose
// attendance batch has not been sealed can be recorded; re-recording before
// the seal overwrites the staged value.
func (s *rosterService) SetAttendance(roster *domain.Roster, registrationID string, attendance domain.Attendance) error {
	if !attendance.Valid() {
		return domain.ErrInvalidInput
	}
	entry := roster.Find(registrationID)
	if entry == nil {
		return domain.ErrNotFound
	}
	if entry.Registration.Status != domain.StatusConfirmed {
		return domain.ErrInvalidInput
	}
	if entry.Registration.AttendanceSubmittedAt != nil {
		return domain.ErrInvalidInput
	}
	a := attendance
	entry.Registration.Attendance = &a
	return nil
}

func (s *rosterService) setConfirmationMessage(roster *domain.Roster, msg string) {
	roster.ConfirmationMessage = msg
	seq := roster.NextConfirmationSeq()
	s.afterFunc(messageTTL, func() {
		if roster.ConfirmationSeq() == seq {
			roster.ConfirmationMessage = ""
		}
	})
}

func (s *rosterService) setAttendanceMessage(roster *domain.Roster, msg string) {
	roster.AttendanceMessage = msg
	seq := roster.NextAttendanceSeq()
	s.afterFunc(messageTTL, func() {
		if roster.AttendanceSeq() == seq {
			roster.AttendanceMessage = ""
		}
	})
}

// SendConfirmations commits every staged status in one atomic batch, then
// emails the confirmed and waitlisted registrants. Email delivery is
// best-effort per recipient; the committed statuses stand regardless.
func (s *rosterService) SendConfirmations(ctx context.Context, roster *domain.Roster) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	entries := roster.Entries()
	updates := make([]domain.StatusUpdate, 0, len(entries))
	for _, e := range entries {
		updates = append(updates, domain.StatusUpdate{
			RegistrationID: e.Registration.ID,
			Status:         e.Registration.Status,
		})
	}
	if err := s.registrationRepo.BatchUpdateStatuses(ctx, updates); err != nil {
		msg := fmt.Sprintf("Failed to send confirmations: %v", err)
		s.setConfirmationMessage(roster, msg)
		return msg, fmt.Errorf("commit statuses: %w", err)
	}

	var recipients []*domain.RosterEntry
	var emails []string
	for _, e := range entries {
		if e.Registration.Status == domain.StatusConfirmed || e.Registration.Status == domain.StatusWaitlisted {
			recipients = append(recipients, e)
			emails = append(emails, e.Profile.Email)
		}
	}

	if len(emails) == 0 {
		msg := "No confirmations to send. Please set participants/volunteers to 'Confirmed' or 'Waitlisted' first."
		s.setConfirmationMessage(roster, msg)
		return msg, nil
	}

	event, err := s.eventRepo.GetByID(ctx, roster.EventID)
	if err != nil {
		s.logger.WarnContext(ctx, "event lookup for confirmation emails failed", "event_id", roster.EventID, "err", err)
		event = &domain.Event{ID: roster.EventID}
	}
	for _, e := range recipients {
		data := &domain.StatusEmailData{
			Email:      e.Profile.Email,
			Name:       e.Profile.Name,
			EventTitle: event.Title,
			EventStart: event.Start.Format("Mon, 2 Jan 2006 15:04"),
			Location:   event.Location,
			Status:     e.Registration.Status,
		}
		if err := s.emailService.SendStatusNotification(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "confirmation email failed", "email", e.Profile.Email, "err", err)
		}
	}

	roster.ConfirmationsSent = true
	msg := "Confirmation and waitlist emails sent to: " + strings.Join(emails, ", ")
	s.setConfirmationMessage(roster, msg)
	return msg, nil
}

// SubmitAttendance commits attendance for every confirmed entry in one
// atomic batch and seals the entries with the submission time. Entries whose
// attendance was never recorded are committed with a null value so the whole
// cohort shares one submission timestamp.
func (s *rosterService) SubmitAttendance(ctx context.Context, roster *domain.Roster) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var confirmed []*domain.RosterEntry
	for _, e := range roster.Entries() {
		if e.Registration.Status == domain.StatusConfirmed {
			confirmed = append(confirmed, e)
		}
	}

	recorded := 0
	updates := make([]domain.AttendanceUpdate, 0, len(confirmed))
	for _, e := range confirmed {
		if e.Registration.Attendance != nil {
			recorded++
		}
		updates = append(updates, domain.AttendanceUpdate{
			RegistrationID: e.Registration.ID,
			Attendance:     e.Registration.Attendance,
		})
	}

	submittedAt := s.clock.Now()
	if err := s.registrationRepo.SubmitAttendanceBatch(ctx, updates, submittedAt); err != nil {
		msg := fmt.Sprintf("Failed to submit attendance: %v", err)
		s.setAttendanceMessage(roster, msg)
		return msg, fmt.Errorf("commit attendance: %w", err)
	}

	for _, e := range confirmed {
		t := submittedAt
		e.Registration.AttendanceSubmittedAt = &t
	}

	msg := fmt.Sprintf("Attendance submitted. Recorded %d out of %d confirmed attendees.", recorded, len(confirmed))
	s.setAttendanceMessage(roster, msg)
	return msg, nil
}

func (s *rosterService) ListRegistrationsByRole(ctx context.Context, role domain.Role, status *domain.Status) ([]*domain.RegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !role.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if status != nil && !status.Valid() {
		return nil, domain.ErrInvalidInput
	}

	regs, err := s.registrationRepo.ListByRole(ctx, role, status)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	eventsByID := make(map[string]*domain.Event)
	var result []*domain.RegistrationWithEvent
	for _, reg := range regs {
		ev, ok := eventsByID[reg.EventID]
		if !ok {
			ev, err = s.eventRepo.GetByID(ctx, reg.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("get event for registration: %w", err)
			}
			eventsByID[reg.EventID] = ev
		}
		result = append(result, &domain.RegistrationWithEvent{Registration: reg, Event: ev})
	}
	if result == nil {
		result = []*domain.RegistrationWithEvent{}
	}
	return result, nil
}
