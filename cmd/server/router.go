package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/smart-card/smartcard-api/internal/api"
	apiMiddleware "github.com/smart-card/smartcard-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	generationHandler := api.NewGenerationHandler(app.generationService, app.logger)
	downloadHandler := api.NewDownloadHandler(app.downloadService)
	contentHandler := api.NewContentHandler(app.summaryService, app.webFetchService, app.logger)

	fileID := "/{" + api.FileIDParam + "}"

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", generationHandler.Generate)

		r.Get("/download-html"+fileID, downloadHandler.DownloadHTML)
		r.Get("/download-image"+fileID, downloadHandler.DownloadImage)
		r.Get("/download-card"+fileID, downloadHandler.DownloadCard)

		r.Post("/summarize", contentHandler.Summarize)
		r.Post("/fetch-web", contentHandler.FetchWeb)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
