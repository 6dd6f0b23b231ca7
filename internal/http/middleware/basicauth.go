package middleware

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"

	"hrdocs/internal/auth"
)

// ActorLocalKey is the key under which the authenticated subject is stored
// in Fiber's context locals.
const ActorLocalKey = "actor"

// BasicAuth guards routes with HTTP Basic authentication delegated to the
// Authenticator. On success the subject is stored in context locals; on any
// failure the request is aborted with 401 and no detail about the mismatch.
func BasicAuth(a auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, password, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c)
		}

		claims, err := a.Authenticate(c.UserContext(), username, password)
		if err != nil {
			return unauthorized(c)
		}

		c.Locals(ActorLocalKey, claims.Subject)
		return c.Next()
	}
}

// ActorFromCtx returns the authenticated subject stored by BasicAuth.
func ActorFromCtx(c *fiber.Ctx) string {
	if v, ok := c.Locals(ActorLocalKey).(string); ok {
		return v
	}
	return ""
}

func parseBasicAuth(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	username, password, ok = strings.Cut(string(decoded), ":")
	return username, password, ok
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="hrdocs"`)
	return fiber.NewError(fiber.StatusUnauthorized, "authorization required")
}
