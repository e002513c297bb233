// @title Community Program Registration API
// @version 1.0
// @description Event signup, conflict checking, and staff roster review for a community program.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"

	"communityprogram/config"
	_ "communityprogram/docs"
	"communityprogram/internal/adapters/auth"
	"communityprogram/internal/adapters/email"
	delivery "communityprogram/internal/delivery/http"
	"communityprogram/internal/delivery/http/controllers"
	"communityprogram/internal/delivery/http/middleware"
	"communityprogram/internal/repository/postgres"
	"communityprogram/internal/services"
)

const serviceTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	userRepo := postgres.NewUserRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}

	clock := services.NewSystemClock()
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	scheduleService := services.NewScheduleService(eventRepo, clock, serviceTimeout)
	signupService := services.NewSignupService(eventRepo, registrationRepo, clock, logger, serviceTimeout)
	rosterService := services.NewRosterService(eventRepo, registrationRepo, userRepo, emailService, clock, logger, serviceTimeout)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	programController := controllers.NewProgramController(logger, scheduleService)
	signupController := controllers.NewSignupController(logger, signupService, scheduleService)
	rosterController := controllers.NewRosterController(logger, rosterService)

	mux := delivery.NewRouter(programController, signupController, rosterController, verifier)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.CORS(cfg.AllowedOrigins, handler)

	logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
