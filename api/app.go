// Package api exposes the catalog QA pipeline over HTTP: analyze/normalize
// for the plain layout, the conversion pair, batch forwarding, and the
// session proxy the frontend uses for authentication.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"catalogqa/domain/catalog"
	"catalogqa/internal/config"
	"catalogqa/internal/errors"
	"catalogqa/internal/forward"
	"catalogqa/internal/uploads"
)

// App wires the HTTP surface.
type App struct {
	router  *chi.Mux
	cfg     *config.Config
	uploads *uploads.Cache
	sender  *forward.Sender
	client  *http.Client
}

// NewApp creates the application router.
func NewApp(cfg *config.Config, cache *uploads.Cache, sender *forward.Sender) *App {
	app := &App{
		router:  chi.NewRouter(),
		cfg:     cfg,
		uploads: cache,
		sender:  sender,
		client:  &http.Client{Timeout: proxyTimeout},
	}

	app.setupMiddleware()
	app.setupRoutes()
	return app
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
	a.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		ExposedHeaders: []string{
			"X-Rows-Before",
			"X-Rows-OK",
			"X-Rows-Corrected",
			"X-Errors-Count",
			"X-Codes-Fixed",
			"Content-Disposition",
		},
	}))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Post("/catalog/analyze", a.handleAnalyze)
	a.router.Post("/catalog/normalize", a.handleNormalize)

	a.router.Post("/conversion/analyze", a.handleConversionAnalyze)
	a.router.Post("/conversion/excel", a.handleConversionExcel)

	a.router.Post("/send/batch", a.handleSendBatch)

	a.router.Get("/session/commerce", a.handleCommerceProxy)
}

// Handler returns the app's root handler.
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError encodes the JSON error envelope. AppError messages, causes
// and codes map onto the error/cause/code fields; anything else reports
// code UNKNOWN.
func (a *App) writeError(w http.ResponseWriter, status int, err error) {
	body := map[string]interface{}{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	}
	if appErr, ok := err.(*errors.AppError); ok {
		body["error"] = appErr.Message
		if appErr.Cause != nil {
			body["cause"] = appErr.Cause.Error()
		}
	}
	a.writeJSON(w, status, body)
}

// writePipelineError maps structural pipeline failures to 400 and
// everything else to 500.
func (a *App) writePipelineError(w http.ResponseWriter, err error) {
	if catalog.IsStructural(err) {
		a.writeError(w, http.StatusBadRequest, errors.ParseFailure("workbook cannot be processed", err))
		return
	}
	a.writeError(w, http.StatusInternalServerError, errors.Wrap(err, "pipeline run failed"))
}
