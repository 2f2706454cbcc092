package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"csvstats/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// db may be nil when datasets are kept in memory; /health then reports the process only.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.DatasetService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/upload", UploadFiles(svc))
	app.Get("/lastRecords/:filename", LastRecords(svc))
	app.Get("/resultFilter", ResultFilter(svc))
}
