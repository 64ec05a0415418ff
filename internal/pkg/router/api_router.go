package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	apiv1 "github.com/ManuelReschke/CandidateLens/internal/api/v1"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/env"
)

// ApiRouter mounts the versioned JSON API under /api
type ApiRouter struct{}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	limit := env.GetEnvInt("API_RATE_LIMIT", 60)
	api := app.Group("/api", cors.New(), newLimiter(limit, time.Minute, nil))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"name":     "candidatelens",
			"versions": []string{"v1"},
			"docs":     "/docs/api/v1",
		})
	})

	apiv1.RegisterHandlers(api.Group("/v1"), apiv1.NewAPIServer())
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
