package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type statusResponse struct {
	Status string `json:"status"`
}

type corsTestResponse struct {
	Message   string    `json:"message"`
	Origin    string    `json:"origin,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func banner(c *fiber.Ctx) error {
	return c.SendString("This is the v1 API")
}

func health(c *fiber.Ctx) error {
	return c.JSON(statusResponse{Status: "ok"})
}

// ready answers 503 while ping fails.
func ready(ping func(context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(statusResponse{Status: "unavailable"})
		}
		return c.JSON(statusResponse{Status: "ok"})
	}
}

func corsTest(c *fiber.Ctx) error {
	return c.JSON(corsTestResponse{
		Message:   "CORS is working!",
		Origin:    c.Get(fiber.HeaderOrigin),
		Timestamp: time.Now().UTC(),
	})
}
