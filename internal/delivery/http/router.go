package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"communityprogram/internal/delivery/http/controllers"
	"communityprogram/internal/delivery/http/middleware"
	"communityprogram/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	programController *controllers.ProgramController,
	signupController *controllers.SignupController,
	rosterController *controllers.RosterController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier)

	// Public event browsing
	mux.HandleFunc("GET /events", programController.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", programController.GetEvent)

	// Signup flow
	mux.HandleFunc("POST /signup/validate", requireAuth(signupController.ValidateSelection))
	mux.HandleFunc("POST /signup/checkout", requireAuth(signupController.Checkout))
	mux.HandleFunc("GET /me/registrations", requireAuth(signupController.ListMyRegistrations))

	// Staff tooling
	mux.HandleFunc("POST /staff/programs", requireAuth(programController.CreateProgram))
	mux.HandleFunc("PATCH /staff/events/{eventID}", requireAuth(programController.UpdateEvent))
	mux.HandleFunc("GET /staff/events/{eventID}/roster", requireAuth(rosterController.GetRoster))
	mux.HandleFunc("POST /staff/events/{eventID}/confirmations", requireAuth(rosterController.SendConfirmations))
	mux.HandleFunc("POST /staff/events/{eventID}/attendance", requireAuth(rosterController.SubmitAttendance))
	mux.HandleFunc("GET /staff/registrations", requireAuth(rosterController.ListRegistrations))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
