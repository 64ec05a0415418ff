package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/ManuelReschke/CandidateLens/app/controllers"
)

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// ListDatasets returns the newest datasets
func (s *APIServer) ListDatasets(c *fiber.Ctx) error {
	return controllers.HandleAPIListDatasets(c)
}

// PostDatasets processes the uploaded files the same way the dashboard does
func (s *APIServer) PostDatasets(c *fiber.Ctx) error {
	return controllers.HandleAPIUploadDatasets(c)
}

// GetDataset returns the report of a dataset.
// Controller reads uuid from route params; wrapper already checked it.
func (s *APIServer) GetDataset(c *fiber.Ctx, uuid string) error {
	return controllers.HandleAPIGetDataset(c)
}

// GetStatistics returns the aggregate counters
func (s *APIServer) GetStatistics(c *fiber.Ctx) error {
	return controllers.HandleAPIStatistics(c)
}

// GetDailyStatistics returns the upload history
func (s *APIServer) GetDailyStatistics(c *fiber.Ctx) error {
	return controllers.HandleAPIDailyStatistics(c)
}
