package api

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func SetupRouter(app *fiber.App, handler *ChatHandler) {
	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"ok":      true,
			"version": os.Getenv("APP_VERSION"),
		})
	})

	apiGroup := app.Group("/api")
	apiGroup.Post("/process", handler.HandleProcess)
	apiGroup.Post("/stream_process", handler.HandleStreamProcess)
	apiGroup.Post("/transcribe", handler.HandleTranscribe)

	apiGroup.Post("/register", handler.HandleRegister)
	apiGroup.Post("/login", handler.HandleLogin)
	apiGroup.Post("/logout", handler.HandleLogout)
	apiGroup.Get("/me", handler.HandleMe)
}
