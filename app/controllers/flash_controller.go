package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
)

// HandleFlashUploadRateLimit sets a flash error and redirects to home
func HandleFlashUploadRateLimit(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type":    "error",
		"message": "Limite de envios atingido. Aguarde um momento e tente novamente.",
	}
	flash.WithError(c, fm)
	if isHTMXRequest(c) {
		c.Set("HX-Redirect", "/")
		return c.Status(fiber.StatusTooManyRequests).SendString(fm["message"].(string))
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}
