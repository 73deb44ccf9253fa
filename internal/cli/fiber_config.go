package cli

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse/internal/httpx"
)

// createFiberConfig returns Fiber configuration.
func createFiberConfig(appName string) fiber.Config {
	return fiber.Config{
		AppName: appName,
		// Use X-Forwarded-For to get real client IP behind reverse proxy
		ProxyHeader:  fiber.HeaderXForwardedFor,
		ErrorHandler: jsonErrorHandler,
	}
}

// jsonErrorHandler renders unhandled errors with the API error envelope.
func jsonErrorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	return httpx.Error(c, code, message)
}
