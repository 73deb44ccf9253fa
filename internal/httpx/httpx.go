package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
)

// JSON writes a JSON payload with the provided status code.
func JSON(c fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(payload)
}

// Error writes a standard error envelope.
func Error(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// ReadJSON decodes the request body as JSON into dst, rejecting unknown fields.
func ReadJSON(c fiber.Ctx, dst any) error {
	body := c.Body()
	if len(body) == 0 {
		return fmt.Errorf("request body is empty")
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// QueryInt fetches an integer query parameter with a default value.
func QueryInt(c fiber.Ctx, key string, defaultValue int) int {
	val := c.Query(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// QueryString fetches a query string parameter with a default value.
func QueryString(c fiber.Ctx, key, defaultValue string) string {
	val := c.Query(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// QueryLookup adapts the request query to a plain key lookup.
func QueryLookup(c fiber.Ctx) func(string) string {
	return func(key string) string {
		return c.Query(key)
	}
}
