package middleware

import (
	"bytes"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	"learnity/backend/config"
	"learnity/backend/models"
	"learnity/backend/testutil"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) (*fiber.App, *config.Config, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler(nil)})
	app.Use(LoggingMiddleware(log.New(&buf, "", 0), false))
	cfg := &config.Config{JWTSecret: "mw-secret", JWTExpiration: time.Hour}
	return app, cfg, &buf
}

func TestAuthMiddlewareAndRoles(t *testing.T) {
	app, cfg, buf := newApp(t)
	db := testutil.NewDB(t)
	student := testutil.CreateUser(t, db, models.RoleStudent, "s@example.com", 0)
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "a@example.com", 0)

	app.Get("/me", AuthMiddleware(db, cfg), func(c *fiber.Ctx) error {
		user, err := utils.CurrentUser(c)
		if err != nil {
			return err
		}
		return c.SendString(user.Email)
	})
	app.Get("/admin", AuthMiddleware(db, cfg), AdminMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	token := func(u *models.User) string {
		tok, err := utils.GenerateJWTToken(u.ID, u.Role, cfg.JWTSecret, time.Hour)
		require.NoError(t, err)
		return "Bearer " + tok
	}
	do := func(path, auth string) int {
		req := httptest.NewRequest("GET", path, nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusUnauthorized, do("/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, do("/me", "Bearer garbage"))
	assert.Equal(t, fiber.StatusOK, do("/me", token(student)))
	assert.Equal(t, fiber.StatusForbidden, do("/admin", token(student)))
	assert.Equal(t, fiber.StatusOK, do("/admin", token(admin)))

	require.NoError(t, db.Model(student).Update("is_active", false).Error)
	assert.Equal(t, fiber.StatusForbidden, do("/me", token(student)))

	assert.Contains(t, buf.String(), "GET /admin 200")
	assert.Contains(t, buf.String(), "GET /me 401")
}

func TestOptionalAuthIgnoresBadTokens(t *testing.T) {
	app, cfg, _ := newApp(t)
	db := testutil.NewDB(t)

	app.Get("/", OptionalAuth(db, cfg), func(c *fiber.Ctx) error {
		if _, err := utils.CurrentUser(c); err != nil {
			return c.SendString("anonymous")
		}
		return c.SendString("user")
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
