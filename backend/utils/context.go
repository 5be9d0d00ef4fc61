package utils

import (
	"learnity/backend/models"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUser   = "user"
	LocalUserID = "user_id"
)

// CurrentUser returns the user AuthMiddleware stored on the request.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(LocalUser).(*models.User)
	if !ok || user == nil {
		return nil, UnauthorizedErr("authentication required")
	}
	return user, nil
}

// ParamID parses a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, BadRequestErr("invalid " + name)
	}
	return uint(id), nil
}
