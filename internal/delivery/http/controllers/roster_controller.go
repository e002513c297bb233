package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"communityprogram/internal/delivery/http/helpers"
	"communityprogram/internal/domain"
)

// uuidRegexRoster matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegexRoster = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type RosterController struct {
	Logger  *slog.Logger
	Service domain.RosterService
}

func NewRosterController(logger *slog.Logger, svc domain.RosterService) *RosterController {
	return &RosterController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *RosterController) loadRoster(w http.ResponseWriter, r *http.Request) (*domain.Roster, bool) {
	eventID := r.PathValue("eventID")
	if !uuidRegexRoster.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return nil, false
	}
	roster, err := c.Service.LoadRoster(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return nil, false
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return nil, false
	}
	return roster, true
}

// GetRoster godoc
// @Summary Get an event's roster split into participants and volunteers
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data: Roster"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/events/{eventID}/roster [get]
func (c *RosterController) GetRoster(w http.ResponseWriter, r *http.Request) {
	roster, ok := c.loadRoster(w, r)
	if !ok {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, roster)
}

// StatusEdit is one staged status change in a confirmation request.
type StatusEdit struct {
	RegistrationID string `json:"registration_id"`
	Status         string `json:"status"`
}

// SendConfirmationsRequest is the request body for POST /staff/events/{eventID}/confirmations.
// The staff client stages status edits locally and submits them all at once.
type SendConfirmationsRequest struct {
	Statuses []StatusEdit `json:"statuses"`
}

// Validate implements helpers.Validator.
func (r *SendConfirmationsRequest) Validate() []string {
	for _, edit := range r.Statuses {
		if edit.RegistrationID == "" {
			return []string{"registration_id is required"}
		}
		if !domain.Status(edit.Status).Valid() {
			return []string{"status must be registered, confirmed, or waitlisted"}
		}
	}
	return nil
}

// ConfirmationOutcome is the success payload for the confirmation and
// attendance endpoints.
type ConfirmationOutcome struct {
	Message           string `json:"message"`
	ConfirmationsSent bool   `json:"confirmations_sent"`
}

// SendConfirmations godoc
// @Summary Commit staged statuses and email confirmed and waitlisted registrants
// @Description Applies the staged status edits to the event roster, commits them in one atomic batch, and sends confirmation/waitlist emails. With no confirmed or waitlisted registrants the outcome message says there is nothing to send.
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.SendConfirmationsRequest true "Staged status edits"
// @Success 200 {object} helpers.APIResponse "data: ConfirmationOutcome"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/events/{eventID}/confirmations [post]
func (c *RosterController) SendConfirmations(w http.ResponseWriter, r *http.Request) {
	var req SendConfirmationsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	roster, ok := c.loadRoster(w, r)
	if !ok {
		return
	}

	for _, edit := range req.Statuses {
		if err := c.Service.SetStatus(roster, edit.RegistrationID, domain.Status(edit.Status)); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown registration: "+edit.RegistrationID)
				return
			}
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
	}

	message, err := c.Service.SendConfirmations(r.Context(), roster)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, message)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ConfirmationOutcome{
		Message:           message,
		ConfirmationsSent: roster.ConfirmationsSent,
	})
}

// AttendanceEdit is one staged attendance record in an attendance request.
type AttendanceEdit struct {
	RegistrationID string `json:"registration_id"`
	Attendance     string `json:"attendance"`
}

// SubmitAttendanceRequest is the request body for POST /staff/events/{eventID}/attendance.
type SubmitAttendanceRequest struct {
	Entries []AttendanceEdit `json:"entries"`
}

// Validate implements helpers.Validator.
func (r *SubmitAttendanceRequest) Validate() []string {
	for _, edit := range r.Entries {
		if edit.RegistrationID == "" {
			return []string{"registration_id is required"}
		}
		if !domain.Attendance(edit.Attendance).Valid() {
			return []string{"attendance must be present or absent"}
		}
	}
	return nil
}

// SubmitAttendance godoc
// @Summary Record attendance for confirmed registrants in one atomic batch
// @Description Stages the given attendance values on the event roster, then commits attendance and the submission timestamp for every confirmed registrant. The outcome message reports recorded / total confirmed counts.
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.SubmitAttendanceRequest true "Staged attendance values"
// @Success 200 {object} helpers.APIResponse "data: ConfirmationOutcome"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/events/{eventID}/attendance [post]
func (c *RosterController) SubmitAttendance(w http.ResponseWriter, r *http.Request) {
	var req SubmitAttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	roster, ok := c.loadRoster(w, r)
	if !ok {
		return
	}

	for _, edit := range req.Entries {
		if err := c.Service.SetAttendance(roster, edit.RegistrationID, domain.Attendance(edit.Attendance)); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown registration: "+edit.RegistrationID)
				return
			}
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "attendance can only be recorded for confirmed registrations that are not yet submitted")
			return
		}
	}

	message, err := c.Service.SubmitAttendance(r.Context(), roster)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, message)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ConfirmationOutcome{
		Message:           message,
		ConfirmationsSent: roster.ConfirmationsSent,
	})
}

// ListRegistrations godoc
// @Summary List registrations for one population, optionally filtered by status
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param role query string true "participant or volunteer"
// @Param status query string false "registered, confirmed, or waitlisted"
// @Success 200 {object} helpers.APIResponse "data: []RegistrationWithEvent"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/registrations [get]
func (c *RosterController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))
	if !role.Valid() {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "role must be participant or volunteer")
		return
	}
	var status *domain.Status
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.Status(s)
		if !st.Valid() {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "status must be registered, confirmed, or waitlisted")
			return
		}
		status = &st
	}

	regs, err := c.Service.ListRegistrationsByRole(r.Context(), role, status)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}
