package api

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Aquabet/webapp/internal/metrics"
	"github.com/Aquabet/webapp/internal/model"
	"github.com/Aquabet/webapp/internal/service"
)

// Pinger checks relational-store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	cacheControlValue = "no-cache, no-store, must-revalidate"
	userLocalsKey     = "user"
	pingTimeout       = 2 * time.Second
)

// CacheControl stamps every response with the no-store headers the health
// contract requires on all endpoints.
func CacheControl() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, cacheControlValue)
		c.Set("Pragma", "no-cache")
		return c.Next()
	}
}

// DatabaseGate short-circuits with 503 before any handler runs when the
// store is unreachable.
func DatabaseGate(pinger Pinger, m metrics.Emitter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), pingTimeout)
		defer cancel()

		start := time.Now()
		err := pinger.Ping(ctx)
		metrics.Since(m, "health.db", start)

		if err != nil {
			slog.Error("database unreachable", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Service Unavailable"})
		}
		return c.Next()
	}
}

// BasicAuth resolves the user behind the HTTP Basic credentials and injects
// it into the request locals.
func BasicAuth(users service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, password, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required!"})
		}

		user, err := users.Authenticate(c.Context(), email, password)
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		case err != nil:
			slog.Error("authentication lookup failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not authenticate user"})
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

func parseBasicAuth(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}

// AuthenticatedUser returns the user resolved by BasicAuth, or nil.
func AuthenticatedUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(userLocalsKey).(*model.User)
	return user
}

// Measure counts an invocation and times the rest of the chain under name.
func Measure(m metrics.Emitter, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m.Count(name)
		defer metrics.Since(m, name, time.Now())
		return c.Next()
	}
}
