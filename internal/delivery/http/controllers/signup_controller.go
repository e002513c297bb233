package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"communityprogram/internal/delivery/http/helpers"
	"communityprogram/internal/delivery/http/middleware"
	"communityprogram/internal/domain"
)

// uuidRegexSignup matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegexSignup = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type SignupController struct {
	Logger        *slog.Logger
	Service       domain.SignupService
	EventsService domain.ScheduleService
}

func NewSignupController(logger *slog.Logger, svc domain.SignupService, events domain.ScheduleService) *SignupController {
	return &SignupController{
		Logger:        logger,
		Service:       svc,
		EventsService: events,
	}
}

// The basket lives in the browser session; stateless endpoints receive the
// current selection as event IDs and rebuild the basket per request.
func (c *SignupController) buildBasket(r *http.Request, w http.ResponseWriter, eventIDs []string) (*domain.Basket, bool) {
	basket := domain.NewBasket()
	for _, id := range eventIDs {
		ev, err := c.EventsService.GetEvent(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown event in selection: "+id)
				return nil, false
			}
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
			return nil, false
		}
		basket.Add(ev)
	}
	return basket, true
}

// ValidateSelectionRequest is the request body for POST /signup/validate.
type ValidateSelectionRequest struct {
	EventID        string   `json:"event_id"`
	BasketEventIDs []string `json:"basket_event_ids"`
}

// Validate implements helpers.Validator.
func (r *ValidateSelectionRequest) Validate() []string {
	var problems []string
	if !uuidRegexSignup.MatchString(r.EventID) {
		problems = append(problems, "event_id must be a UUID")
	}
	for _, id := range r.BasketEventIDs {
		if !uuidRegexSignup.MatchString(id) {
			problems = append(problems, "basket_event_ids must be UUIDs")
			break
		}
	}
	return problems
}

// ValidateSelection godoc
// @Summary Check a prospective selection for schedule conflicts
// @Description Validates the event against the current basket and the user's persisted registrations. A store read failure degrades to basket-only validation.
// @Tags signup
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.ValidateSelectionRequest true "Candidate and current basket"
// @Success 200 {object} helpers.APIResponse "data: ValidationResult"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /signup/validate [post]
func (c *SignupController) ValidateSelection(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req ValidateSelectionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	candidate, err := c.EventsService.GetEvent(r.Context(), req.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	basket, ok := c.buildBasket(r, w, req.BasketEventIDs)
	if !ok {
		return
	}

	result := c.Service.ValidateSelection(r.Context(), candidate, basket, userID)
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// CheckoutRequest is the request body for POST /signup/checkout.
type CheckoutRequest struct {
	EventIDs []string `json:"event_ids"`
	Role     string   `json:"role"`
}

// Validate implements helpers.Validator.
func (r *CheckoutRequest) Validate() []string {
	var problems []string
	if len(r.EventIDs) == 0 {
		problems = append(problems, "event_ids is required")
	}
	for _, id := range r.EventIDs {
		if !uuidRegexSignup.MatchString(id) {
			problems = append(problems, "event_ids must be UUIDs")
			break
		}
	}
	if !domain.Role(r.Role).Valid() {
		problems = append(problems, "role must be participant or volunteer")
	}
	return problems
}

// Checkout godoc
// @Summary Persist the basket as registrations
// @Description Creates one registered-status registration per selected event. Idempotent per (user, event).
// @Tags signup
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CheckoutRequest true "Selected events and role"
// @Success 201 {object} helpers.APIResponse "data: []Registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /signup/checkout [post]
func (c *SignupController) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req CheckoutRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	basket, ok := c.buildBasket(r, w, req.EventIDs)
	if !ok {
		return
	}

	regs, err := c.Service.Checkout(r.Context(), basket, userID, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, regs)
}

// ListMyRegistrations godoc
// @Summary List the current user's registrations with their events
// @Tags signup
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data: []RegistrationWithEvent"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/registrations [get]
func (c *SignupController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	regs, err := c.Service.ListMyRegistrations(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}
