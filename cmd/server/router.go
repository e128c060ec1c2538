package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/avschaefer/cloudhire-ai-api/internal/api"
	apimiddleware "github.com/avschaefer/cloudhire-ai-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	submitHandler := api.NewSubmitHandler(app.jobService, app.logger)
	gradeTaskHandler := api.NewGradeTaskHandler(app.gradingService, app.logger)
	auth := apimiddleware.NewAuthMiddleware(app.config.Auth.BearerToken)

	// Public submission endpoint, guarded by the shared bearer token.
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/grade_jobs/submit", submitHandler.Submit)
		})
	})

	// Internal endpoint the task queue delivers grading work to.
	r.Route("/internal", func(r chi.Router) {
		r.Use(app.oidc.Verify)
		r.Post("/tasks/grade", gradeTaskHandler.HandleGradeTask)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"ok":true}`)); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
