package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/CandidateLens/app/controllers"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/constants"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/env"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get(constants.DocsRoute, controllers.HandleDocsAPI)

	app.Get(constants.PublicRoute, controllers.HandleDashboard)

	uploadLimit := newLimiter(env.GetEnvInt("UPLOAD_RATE_LIMIT", 20), time.Minute, controllers.HandleFlashUploadRateLimit)
	app.Post(constants.UploadRoute, uploadLimit, controllers.HandleUpload)

	// Dataset pages and chart images
	app.Get("/datasets/:uuid", controllers.HandleDatasetPage)
	app.Get("/datasets/:uuid/charts/:kind", controllers.HandleChart)

	// Short share URLs
	app.Get("/d/:sharelink", controllers.HandleShareLink)

	// Flash helpers
	app.Get("/flash/upload-rate-limit", controllers.HandleFlashUploadRateLimit)
}
