package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

func statusColor(status int) string {
	switch {
	case status >= fiber.StatusInternalServerError:
		return colorRed
	case status >= fiber.StatusBadRequest:
		return colorYellow
	default:
		return colorGreen
	}
}

// LoggingMiddleware writes one line per request. Handler errors are rendered by the
// app error handler first so the logged status is the one the client receives.
func LoggingMiddleware(logger *log.Logger, colors bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		line := "%s %s %s %d %v %q"
		args := []interface{}{c.IP(), c.Method(), c.Path(), status, time.Since(start), c.Get(fiber.HeaderUserAgent)}
		if colors {
			line = "%s %s %s " + statusColor(status) + "%d" + colorReset + " %v %q"
		}
		if err != nil {
			line += " error=%v"
			args = append(args, err)
		}
		logger.Printf(line, args...)

		return nil
	}
}
