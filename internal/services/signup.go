package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"communityprogram/internal/domain"
)

type signupService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	clock            domain.Clock
	logger           *slog.Logger
	contextTimeout   time.Duration
}

// NewSignupService creates a SignupService with the given repositories.
func NewSignupService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	clock domain.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.SignupService {
	return &signupService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		clock:            clock,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

func invalid(reason string) *domain.ValidationResult {
	return &domain.ValidationResult{Valid: false, Reason: reason}
}

// ValidateSelection checks the candidate against the basket first, then the
// user's persisted registrations. The persisted check is best-effort: a store
// read failure degrades to basket-only validation rather than blocking the
// signup, and staff review catches the rare double-booking that slips in.
func (s *signupService) ValidateSelection(ctx context.Context, candidate *domain.Event, basket *domain.Basket, userID string) *domain.ValidationResult {
	for _, item := range basket.Items() {
		if item.ID == candidate.ID {
			return invalid(fmt.Sprintf("%q is already in your selection.", item.Title))
		}
		if candidate.Range().Overlaps(item.Range()) {
			return invalid(fmt.Sprintf("Schedule conflict: this overlaps with %q already in your selection.", item.Title))
		}
	}

	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "conflict check degraded to basket-only", "user_id", userID, "err", err)
		return &domain.ValidationResult{Valid: true}
	}

	eventsByID := make(map[string]*domain.Event)
	for _, reg := range regs {
		if reg.EventID == candidate.ID {
			return invalid(fmt.Sprintf("You are already registered for %q.", candidate.Title))
		}
		existing, ok := eventsByID[reg.EventID]
		if !ok {
			existing, err = s.eventRepo.GetByID(ctx, reg.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// Event deleted but registration remains; skip this entry.
					continue
				}
				s.logger.WarnContext(ctx, "conflict check degraded to basket-only", "user_id", userID, "err", err)
				return &domain.ValidationResult{Valid: true}
			}
			eventsByID[reg.EventID] = existing
		}
		if candidate.Range().Overlaps(existing.Range()) {
			return invalid(fmt.Sprintf("Schedule conflict: you are already registered for %q at the same time.", existing.Title))
		}
	}

	return &domain.ValidationResult{Valid: true}
}

func (s *signupService) AddToBasket(ctx context.Context, candidate *domain.Event, basket *domain.Basket, userID string) (*domain.ValidationResult, error) {
	if candidate == nil || basket == nil {
		return nil, domain.ErrInvalidInput
	}
	result := s.ValidateSelection(ctx, candidate, basket, userID)
	if result.Valid {
		basket.Add(candidate)
	}
	return result, nil
}

// Checkout persists one registration per basket item. Idempotent per
// (user, event): an existing registration is returned as-is. The basket is
// cleared only when every item has been handled.
func (s *signupService) Checkout(ctx context.Context, basket *domain.Basket, userID string, role domain.Role) ([]*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if basket == nil || !role.Valid() {
		return nil, domain.ErrInvalidInput
	}

	var regs []*domain.Registration
	for _, item := range basket.Items() {
		if existing, err := s.registrationRepo.GetByEventAndUser(ctx, item.ID, userID); err == nil {
			regs = append(regs, existing)
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get registration: %w", err)
		}

		reg := domain.NewRegistration(userID, item.ID, role, s.clock.Now())
		if err := s.registrationRepo.Create(ctx, reg); err != nil {
			return nil, fmt.Errorf("create registration: %w", err)
		}
		regs = append(regs, reg)
	}

	basket.Clear()
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, nil
}

func (s *signupService) ListMyRegistrations(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	// Fetch events one by one (N+1). Registration counts are small enough
	// that this stays simple.
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
