package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// ServerInterface is the set of operations documented in public/docs/v1/openapi.yml
type ServerInterface interface {
	// Health check
	// (GET /ping)
	GetPing(c *fiber.Ctx) error
	// Recently processed datasets
	// (GET /datasets)
	ListDatasets(c *fiber.Ctx) error
	// Upload one or more CSV files
	// (POST /datasets)
	PostDatasets(c *fiber.Ctx) error
	// Report of a processed dataset
	// (GET /datasets/{uuid})
	GetDataset(c *fiber.Ctx, uuid string) error
	// Aggregate counters
	// (GET /statistics)
	GetStatistics(c *fiber.Ctx) error
	// Uploads per day
	// (GET /statistics/daily)
	GetDailyStatistics(c *fiber.Ctx) error
}

// ServerInterfaceWrapper converts fiber contexts to parameters
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (siw *ServerInterfaceWrapper) GetPing(c *fiber.Ctx) error {
	return siw.Handler.GetPing(c)
}

func (siw *ServerInterfaceWrapper) ListDatasets(c *fiber.Ctx) error {
	return siw.Handler.ListDatasets(c)
}

func (siw *ServerInterfaceWrapper) PostDatasets(c *fiber.Ctx) error {
	return siw.Handler.PostDatasets(c)
}

func (siw *ServerInterfaceWrapper) GetDataset(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "uuid missing"})
	}
	return siw.Handler.GetDataset(c, uuid)
}

func (siw *ServerInterfaceWrapper) GetStatistics(c *fiber.Ctx) error {
	return siw.Handler.GetStatistics(c)
}

func (siw *ServerInterfaceWrapper) GetDailyStatistics(c *fiber.Ctx) error {
	return siw.Handler.GetDailyStatistics(c)
}

// RegisterHandlers mounts every operation on router
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.Get("/ping", wrapper.GetPing)
	router.Get("/datasets", wrapper.ListDatasets)
	router.Post("/datasets", wrapper.PostDatasets)
	router.Get("/datasets/:uuid", wrapper.GetDataset)
	router.Get("/statistics", wrapper.GetStatistics)
	router.Get("/statistics/daily", wrapper.GetDailyStatistics)
}
