package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"communityprogram/internal/delivery/http/helpers"
	"communityprogram/internal/domain"
)

// uuidRegexProgram matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegexProgram = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type ProgramController struct {
	Logger  *slog.Logger
	Service domain.ScheduleService
}

func NewProgramController(logger *slog.Logger, svc domain.ScheduleService) *ProgramController {
	return &ProgramController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateProgramRequest is the request body for POST /staff/programs.
// Weekdays are 0 (Sunday) through 6 (Saturday); selecting more than one
// produces a series of sibling events sharing a series ID.
type CreateProgramRequest struct {
	Title                string `json:"title"`
	Date                 string `json:"date"`
	StartTime            string `json:"start_time"`
	EndTime              string `json:"end_time"`
	Weekdays             []int  `json:"weekdays"`
	MinCommitment        int    `json:"min_commitment"`
	WheelchairAccessible bool   `json:"wheelchair_accessible"`
	ContactIC            string `json:"contact_ic"`
	Location             string `json:"location"`
	Description          string `json:"description"`
	Cost                 string `json:"cost"`
	ImageURL             string `json:"image_url"`

	date time.Time
}

// Validate implements helpers.Validator.
func (r *CreateProgramRequest) Validate() []string {
	var problems []string
	if strings.TrimSpace(r.Title) == "" {
		problems = append(problems, "title is required")
	}
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		problems = append(problems, "date must be in YYYY-MM-DD form")
	}
	r.date = date
	for _, wd := range r.Weekdays {
		if wd < 0 || wd > 6 {
			problems = append(problems, "weekdays must be 0 (Sunday) through 6 (Saturday)")
			break
		}
	}
	return problems
}

func (r *CreateProgramRequest) toInput() *domain.ProgramInput {
	weekdays := make([]time.Weekday, 0, len(r.Weekdays))
	for _, wd := range r.Weekdays {
		weekdays = append(weekdays, time.Weekday(wd))
	}
	return &domain.ProgramInput{
		Title:                r.Title,
		Date:                 r.date,
		StartTime:            r.StartTime,
		EndTime:              r.EndTime,
		Weekdays:             weekdays,
		MinCommitment:        r.MinCommitment,
		WheelchairAccessible: r.WheelchairAccessible,
		ContactIC:            r.ContactIC,
		Location:             r.Location,
		Description:          r.Description,
		Cost:                 r.Cost,
		ImageURL:             r.ImageURL,
	}
}

// CreateProgram godoc
// @Summary Create a program, expanding weekday selections into event instances
// @Description Creates one event, or one per selected weekday when more than one weekday is chosen. Sibling instances share a series ID.
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateProgramRequest true "Program form"
// @Success 201 {object} helpers.APIResponse "data: []Event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/programs [post]
func (c *ProgramController) CreateProgram(w http.ResponseWriter, r *http.Request) {
	var req CreateProgramRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	events, err := c.Service.CreateProgram(r.Context(), req.toInput())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, events)
}

// ListEvents godoc
// @Summary List all events
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse "data: []Event"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *ProgramController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEvents(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get one event by ID
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data: Event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *ProgramController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegexProgram.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEventRequest is the request body for PATCH /staff/events/{eventID}.
// Omitted fields are left unchanged; cost null-vs-omitted distinguishes
// "make it free" from "no change".
type UpdateEventRequest struct {
	Title                *string    `json:"title"`
	Start                *time.Time `json:"start"`
	End                  *time.Time `json:"end"`
	WheelchairAccessible *bool      `json:"wheelchair_accessible"`
	Cost                 *float64   `json:"cost"`
	ClearCost            bool       `json:"clear_cost"`
	ContactIC            *string    `json:"contact_ic"`
	Location             *string    `json:"location"`
	Description          *string    `json:"description"`
	ImageURL             *string    `json:"image_url"`
}

// UpdateEvent godoc
// @Summary Update event details
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UpdateEventRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data: Event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/events/{eventID} [patch]
func (c *ProgramController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegexProgram.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	update := &domain.EventUpdate{
		Title:                req.Title,
		Start:                req.Start,
		End:                  req.End,
		WheelchairAccessible: req.WheelchairAccessible,
		Cost:                 req.Cost,
		ClearCost:            req.ClearCost,
		ContactIC:            req.ContactIC,
		Location:             req.Location,
		Description:          req.Description,
		ImageURL:             req.ImageURL,
	}

	event, err := c.Service.UpdateEvent(r.Context(), eventID, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "event must end after it starts")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
