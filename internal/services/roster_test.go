package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"communityprogram/internal/domain"
)

type mockUserRepository struct {
	users map[string]*domain.UserProfile
	err   error
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

type mockEmailService struct {
	sent []*domain.StatusEmailData
	err  error
}

func (m *mockEmailService) SendStatusNotification(ctx context.Context, data *domain.StatusEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, data)
	return nil
}

func newTestRosterService(eventRepo *mockEventRepository, regRepo *mockRegistrationRepository, userRepo *mockUserRepository, emailSvc *mockEmailService, now time.Time) (*rosterService, *[]func()) {
	var callbacks []func()
	svc := &rosterService{
		eventRepo:        eventRepo,
		registrationRepo: regRepo,
		userRepo:         userRepo,
		emailService:     emailSvc,
		clock:            fixedClock{t: now},
		logger:           testLogger(),
		contextTimeout:   time.Second,
		afterFunc: func(d time.Duration, f func()) {
			callbacks = append(callbacks, f)
		},
	}
	return svc, &callbacks
}

func rosterEntry(regID, userID string, role domain.Role, status domain.Status, email string) *domain.RosterEntry {
	return &domain.RosterEntry{
		Registration: &domain.Registration{
			ID:                 regID,
			UserID:             userID,
			EventID:            "e1",
			RoleAtRegistration: role,
			Status:             status,
		},
		Profile: &domain.UserProfile{ID: userID, Name: userID, Email: email},
	}
}

func TestRosterService_LoadRoster(t *testing.T) {
	event := &domain.Event{ID: "e1", Title: "Art Jam"}
	eventRepo := &mockEventRepository{events: map[string]*domain.Event{"e1": event}}
	regRepo := &mockRegistrationRepository{
		regsByEvent: map[string][]*domain.Registration{
			"e1": {
				{ID: "r1", UserID: "u1", EventID: "e1", RoleAtRegistration: domain.RoleParticipant, Status: domain.StatusRegistered},
				{ID: "r2", UserID: "u2", EventID: "e1", RoleAtRegistration: domain.RoleVolunteer, Status: domain.StatusRegistered},
				{ID: "r3", UserID: "u-gone", EventID: "e1", RoleAtRegistration: domain.RoleParticipant, Status: domain.StatusRegistered},
			},
		},
	}
	userRepo := &mockUserRepository{users: map[string]*domain.UserProfile{
		"u1": {ID: "u1", Name: "Alice", Email: "alice@example.com"},
		"u2": {ID: "u2", Name: "Ben", Email: "ben@example.com"},
	}}
	svc, _ := newTestRosterService(eventRepo, regRepo, userRepo, &mockEmailService{}, time.Now())

	roster, err := svc.LoadRoster(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roster.Participants) != 1 || roster.Participants[0].Profile.Name != "Alice" {
		t.Fatalf("expected Alice as the only participant, got %v", roster.Participants)
	}
	if len(roster.Volunteers) != 1 || roster.Volunteers[0].Profile.Name != "Ben" {
		t.Fatalf("expected Ben as the only volunteer, got %v", roster.Volunteers)
	}
}

func TestRosterService_LoadRoster_EventNotFound(t *testing.T) {
	svc, _ := newTestRosterService(&mockEventRepository{}, &mockRegistrationRepository{}, &mockUserRepository{}, &mockEmailService{}, time.Now())

	_, err := svc.LoadRoster(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRosterService_SetStatus(t *testing.T) {
	svc, _ := newTestRosterService(&mockEventRepository{}, &mockRegistrationRepository{}, &mockUserRepository{}, &mockEmailService{}, time.Now())
	roster := &domain.Roster{
		EventID:      "e1",
		Participants: []*domain.RosterEntry{rosterEntry("r1", "u1", domain.RoleParticipant, domain.StatusRegistered, "a@example.com")},
	}

	if err := svc.SetStatus(roster, "r1", domain.StatusConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := roster.Participants[0].Registration.Status; got != domain.StatusConfirmed {
		t.Fatalf("staged status = %q, want confirmed", got)
	}

	if err := svc.SetStatus(roster, "r1", domain.Status("cancelled")); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
	if err := svc.SetStatus(roster, "r9", domain.StatusConfirmed); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown registration, got %v", err)
	}
}

func TestRosterService_SetAttendance(t *testing.T) {
	svc, _ := newTestRosterService(&mockEventRepository{}, &mockRegistrationRepository{}, &mockUserRepository{}, &mockEmailService{}, time.Now())

	confirmed := rosterEntry("r1", "u1", domain.RoleParticipant, domain.StatusConfirmed, "a@example.com")
	registered := rosterEntry("r2", "u2", domain.RoleParticipant, domain.StatusRegistered, "b@example.com")
	sealed := rosterEntry("r3", "u3", domain.RoleParticipant, domain.StatusConfirmed, "c@example.com")
	sealedAt := time.Now()
	sealed.Registration.AttendanceSubmittedAt = &sealedAt

	roster := &domain.Roster{EventID: "e1", Participants: []*domain.RosterEntry{confirmed, registered, sealed}}

	if err := svc.SetAttendance(roster, "r1", domain.AttendancePresent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.Registration.Attendance == nil || *confirmed.Registration.Attendance != domain.AttendancePresent {
		t.Fatalf("attendance not staged")
	}

	// Re-recording before submission overwrites the staged value.
	if err := svc.SetAttendance(roster, "r1", domain.AttendanceAbsent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *confirmed.Registration.Attendance != domain.AttendanceAbsent {
		t.Fatalf("re-recording should overwrite, got %q", *confirmed.Registration.Attendance)
	}

	if err := svc.SetAttendance(roster, "r2", domain.AttendancePresent); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-confirmed entry, got %v", err)
	}
	if err := svc.SetAttendance(roster, "r3", domain.AttendancePresent); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a sealed entry, got %v", err)
	}
	if err := svc.SetAttendance(roster, "r1", domain.Attendance("late")); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown attendance value, got %v", err)
	}
}

func TestRosterService_SendConfirmations_NothingToSend(t *testing.T) {
	regRepo := &mockRegistrationRepository{}
	emailSvc := &mockEmailService{}
	svc, _ := newTestRosterService(&mockEventRepository{}, regRepo, &mockUserRepository{}, emailSvc, time.Now())

	roster := &domain.Roster{
		EventID: "e1",
		Participants: []*domain.RosterEntry{
			rosterEntry("r1", "u1", domain.RoleParticipant, domain.StatusRegistered, "a@example.com"),
		},
	}

	msg, err := svc.SendConfirmations(context.Background(), roster)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "No confirmations to send. Please set participants/volunteers to 'Confirmed' or 'Waitlisted' first."
	if msg != want {
		t.Fatalf("message = %q, want %q", msg, want)
	}
	if roster.ConfirmationMessage != want {
		t.Fatalf("message not stored on the roster")
	}
	if roster.ConfirmationsSent {
		t.Fatalf("ConfirmationsSent must stay false with no recipients")
	}
	if len(emailSvc.sent) != 0 {
		t.Fatalf("no emails expected, got %d", len(emailSvc.sent))
	}
	// The staged statuses still commit even when nothing is mailed.
	if len(regRepo.statusBatches) != 1 {
		t.Fatalf("expected 1 committed batch, got %d", len(regRepo.statusBatches))
	}
}

func TestRosterService_SendConfirmations(t *testing.T) {
	event := &domain.Event{
		ID:       "e1",
		Title:    "Art Jam",
		Start:    time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		Location: "Community Hall",
	}
	eventRepo := &mockEventRepository{events: map[string]*domain.Event{"e1": event}}
	regRepo := &mockRegistrationRepository{}
	emailSvc := &mockEmailService{}
	svc, _ := newTestRosterService(eventRepo, regRepo, &mockUserRepository{}, emailSvc, time.Now())

	roster := &domain.Roster{
		EventID: "e1",
		Participants: []*domain.RosterEntry{
			rosterEntry("r1", "u1", domain.RoleParticipant, domain.StatusConfirmed, "alice@example.com"),
			rosterEntry("r2", "u2", domain.RoleParticipant, domain.StatusRegistered, "ben@example.com"),
		},
		Volunteers: []*domain.RosterEntry{
			rosterEntry("r3", "u3", domain.RoleVolunteer, domain.StatusWaitlisted, "cara@example.com"),
		},
	}

	msg, err := svc.SendConfirmations(context.Background(), roster)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(regRepo.statusBatches) != 1 || len(regRepo.statusBatches[0]) != 3 {
		t.Fatalf("expected one batch of 3 updates, got %v", regRepo.statusBatches)
	}
	if len(emailSvc.sent) != 2 {
		t.Fatalf("expected 2 emails (confirmed + waitlisted), got %d", len(emailSvc.sent))
	}
	if emailSvc.sent[0].EventTitle != "Art Jam" || emailSvc.sent[0].Status != domain.StatusConfirmed {
		t.Fatalf("unexpected first email data: %+v", emailSvc.sent[0])
	}
	if !roster.ConfirmationsSent {
		t.Fatalf("ConfirmationsSent should be true after a dispatch with recipients")
	}

	want := "Confirmation and waitlist emails sent to: alice@example.com, cara@example.com"
	if msg != want {
		t.Fatalf("message = %q, want %q", msg, want)
	}
}

func TestRosterService_SendConfirmations_BatchFailure(t *testing.T) {
	regRepo := &mockRegistrationRepository{batchStatusErr: errors.New("deadlock")}
	emailSvc := &mockEmailService{}
	svc, _ := newTestRosterService(&mockEventRepository{}, regRepo, &mockUserRepository{}, emailSvc, time.Now())

	roster := &domain.Roster{
		EventID: "e1",
		Participants: []*domain.RosterEntry{
			rosterEntry("r1", "u1", domain.RoleParticipant, domain.StatusConfirmed, "a@example.com"),
		},
	}

	msg, err := svc.SendConfirmations(context.Background(), roster)
	if err == nil {
		t.Fatalf("expected error when the batch commit fails")
	}
	if !strings.HasPrefix(msg, "Failed to send confirmations:") {
		t.Fatalf("message = %q, want a failure message", msg)
	}
	if len(emailSvc.sent) != 0 {
		t.Fatalf("no emails may be sent when the commit fails")
	}
	if roster.ConfirmationsSent {
		t.Fatalf("ConfirmationsSent must stay false after a failed commit")
	}
}

func TestRosterService_SendConfirmations_EmailFailureIsBestEffort(t *testing.T) {
	event := &domain.Event{ID: "e1", Title: "Art Jam"}
	eventRepo := &mockEventRepository{events: map[string]*domain.Event{"e1": event}}
	regRepo := &mockRegistrationRepository{}
	emailSvc := &mockEmailService{err: errors.New("smtp down")}
	svc, _ := newTestRosterService(eventRepo, regRepo, &mockUserRepository{}, emailSvc, time.Now())

	roster := &domain.Roster{
		EventID: "e1",
		Participants: []*domain.RosterEntry{
			rosterEntry("r1", "u1", domain.RoleParticipant, domain.StatusConfirmed, "a@example.com"),
		},
	}

	if _, err := svc.SendConfirmations(context.Background(), roster); err != nil {
		t.Fatalf("email failures must not fail the dispatch, got %v", err)
	}
	if !roster.ConfirmationsSent {
		t.Fatalf("statuses committed, so the dispatch counts as sent")
	}
}

func TestRosterService_SubmitAttendance(t *testing.T) {
	now := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
	regRepo := &mockRegistrationRepository{}
	svc, _ := newTestRosterService(&mockEventRepository{}, regRepo, &mockUserRepository{}, &mockEmailService{}, now)

	present := rosterEntry("r1", "u1", domain.RoleParticipant, domain.StatusConfirmed, "a@example.com")
	absent := rosterEntry("r2", "u2", domain.RoleParticipant, domain.StatusConfirmed, "b@example.com")
	unrecorded := rosterEntry("r3", "u3", domain.RoleVolunteer, domain.StatusConfirmed, "c@example.com")
	registered := rosterEntry("r4", "u4", domain.RoleParticipant, domain.StatusRegistered, "d@example.com")

	p := domain.AttendancePresent
	a := domain.AttendanceAbsent
	present.Registration.Attendance = &p
	absent.Registration.Attendance = &a

	roster := &domain.Roster{
		EventID:      "e1",
		Participants: []*domain.RosterEntry{present, absent, registered},
		Volunteers:   []*domain.RosterEntry{unrecorded},
	}

	msg, err := svc.SubmitAttendance(context.Background(), roster)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Attendance submitted. Recorded 2 out of 3 confirmed attendees."
	if msg != want {
		t.Fatalf("message = %q, want %q", msg, want)
	}
	if len(regRepo.attendanceBatches) != 1 || len(regRepo.attendanceBatches[0]) != 3 {
		t.Fatalf("expected one batch covering all 3 confirmed entries, got %v", regRepo.attendanceBatches)
	}
	if !regRepo.submittedAt.Equal(now) {
		t.Fatalf("submission time = %v, want %v", regRepo.submittedAt, now)
	}

	for _, e := range []*domain.RosterEntry{present, absent, unrecorded} {
		if e.Registration.AttendanceSubmittedAt == nil || !e.Registration.AttendanceSubmittedAt.Equal(now) {
			t.Fatalf("confirmed entry %s not sealed", e.Registration.ID)
		}
	}
	if registered.Registration.AttendanceSubmittedAt != nil {
		t.Fatalf("non-confirmed entry must not be sealed")
	}

	// The whole batch is sealed now, so further edits are rejected.
	if err := svc.SetAttendance(roster, "r3", domain.AttendancePresent); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput after sealing, got %v", err)
	}
}

func TestRosterService_SubmitAttendance_BatchFailure(t *testing.T) {
	regRepo := &mockRegistrationRepository{batchAttendanceErr: errors.New("deadlock")}
	svc, _ := newTestRosterService(&mockEventRepository{}, regRepo, &mockUserRepository{}, &mockEmailService{}, time.Now())

	entry := rosterEntry("r1", "u1", domain.RoleParticipant, domain.StatusConfirmed, "a@example.com")
	roster := &domain.Roster{EventID: "e1", Participants: []*domain.RosterEntry{entry}}

	msg, err := svc.SubmitAttendance(context.Background(), roster)
	if err == nil {
		t.Fatalf("expected error when the batch commit fails")
	}
	if !strings.HasPrefix(msg, "Failed to submit attendance:") {
		t.Fatalf("message = %q, want a failure message", msg)
	}
	if entry.Registration.AttendanceSubmittedAt != nil {
		t.Fatalf("entries must not be sealed after a failed commit")
	}
}

func TestRosterService_MessageAutoClear(t *testing.T) {
	regRepo := &mockRegistrationRepository{}
	svc, callbacks := newTestRosterService(&mockEventRepository{}, regRepo, &mockUserRepository{}, &mockEmailService{}, time.Now())

	roster := &domain.Roster{
		EventID: "e1",
		Participants: []*domain.RosterEntry{
			rosterEntry("r1", "u1", domain.RoleParticipant, domain.StatusRegistered, "a@example.com"),
		},
	}

	if _, err := svc.SendConfirmations(context.Background(), roster); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if roster.ConfirmationMessage == "" {
		t.Fatalf("expected an outcome message")
	}
	if len(*callbacks) != 1 {
		t.Fatalf("expected 1 scheduled expiry, got %d", len(*callbacks))
	}

	(*callbacks)[0]()
	if roster.ConfirmationMessage != "" {
		t.Fatalf("message should clear when the timer fires")
	}
}

func TestRosterService_MessageAutoClear_SupersededByNewerMessage(t *testing.T) {
	regRepo := &mockRegistrationRepository{}
	svc, callbacks := newTestRosterService(&mockEventRepository{}, regRepo, &mockUserRepository{}, &mockEmailService{}, time.Now())

	roster := &domain.Roster{
		EventID: "e1",
		Participants: []*domain.RosterEntry{
			rosterEntry("r1", "u1", domain.RoleParticipant, domain.StatusRegistered, "a@example.com"),
		},
	}

	if _, err := svc.SendConfirmations(context.Background(), roster); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.SendConfirmations(context.Background(), roster); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*callbacks) != 2 {
		t.Fatalf("expected 2 scheduled expiries, got %d", len(*callbacks))
	}

	// The first timer finds a newer message and leaves it alone.
	(*callbacks)[0]()
	if roster.ConfirmationMessage == "" {
		t.Fatalf("stale timer must not clear a newer message")
	}
	(*callbacks)[1]()
	if roster.ConfirmationMessage != "" {
		t.Fatalf("current timer should clear the message")
	}
}

func TestRosterService_ListRegistrationsByRole(t *testing.T) {
	art := &domain.Event{ID: "e-art", Title: "Art Jam"}
	eventRepo := &mockEventRepository{events: map[string]*domain.Event{"e-art": art}}
	confirmed := domain.StatusConfirmed
	regRepo := &mockRegistrationRepository{
		regsByRole: []*domain.Registration{
			{ID: "r1", EventID: "e-art", RoleAtRegistration: domain.RoleParticipant, Status: domain.StatusConfirmed},
			{ID: "r2", EventID: "e-art", RoleAtRegistration: domain.RoleParticipant, Status: domain.StatusRegistered},
			{ID: "r3", EventID: "e-art", RoleAtRegistration: domain.RoleVolunteer, Status: domain.StatusConfirmed},
		},
	}
	svc, _ := newTestRosterService(eventRepo, regRepo, &mockUserRepository{}, &mockEmailService{}, time.Now())

	got, err := svc.ListRegistrationsByRole(context.Background(), domain.RoleParticipant, &confirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Registration.ID != "r1" {
		t.Fatalf("expected only r1, got %v", got)
	}

	if _, err := svc.ListRegistrationsByRole(context.Background(), domain.Role("admin"), nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown role, got %v", err)
	}
}
