package middleware

import (
	"errors"

	"learnity/backend/config"
	"learnity/backend/models"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func authenticate(c *fiber.Ctx, db *gorm.DB, cfg *config.Config) (*models.User, error) {
	claims, err := utils.ParseJWTToken(utils.BearerToken(c.Get(fiber.HeaderAuthorization)), cfg.JWTSecret)
	if err != nil {
		return nil, utils.UnauthorizedErr("invalid or missing token")
	}

	var user models.User
	if err := db.WithContext(c.UserContext()).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.UnauthorizedErr("user no longer exists")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, utils.ForbiddenErr("account is suspended")
	}
	return &user, nil
}

// AuthMiddleware requires a valid token and stores the user in c.Locals("user").
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authenticate(c, db, cfg)
		if err != nil {
			return err
		}
		c.Locals(utils.LocalUser, user)
		c.Locals(utils.LocalUserID, user.ID)
		return c.Next()
	}
}

// OptionalAuth loads the user when a token is present and ignores the request otherwise.
func OptionalAuth(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		if user, err := authenticate(c, db, cfg); err == nil {
			c.Locals(utils.LocalUser, user)
			c.Locals(utils.LocalUserID, user.ID)
		}
		return c.Next()
	}
}

// RequireRoles must run after AuthMiddleware.
func RequireRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		user, err := utils.CurrentUser(c)
		if err != nil {
			return err
		}
		if !allowed[user.Role] {
			return utils.ForbiddenErr("you do not have access to this resource")
		}
		return c.Next()
	}
}

func AdminMiddleware() fiber.Handler {
	return RequireRoles(models.RoleAdmin)
}
