package controllers

import (
	"learnity/backend/config"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewAuthController(db *gorm.DB, cfg *config.Config, svc *services.Services) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Svc: svc}
}

type RegisterRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Role        string `json:"role" validate:"required,oneof=student teacher"`
	Bio         string `json:"bio" validate:"max=2000"`
	Expertise   string `json:"expertise" validate:"max=500"`
	Credentials string `json:"credentials" validate:"max=2000"`
	HourlyRate  int64  `json:"hourly_rate" validate:"gte=0"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates a student account, or a pending teacher with an application for admin review
// @Tags auth
// @Accept json
// @Produce json
// @Param input body RegisterRequest true "Registration data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	user, token, err := ac.Svc.Auth.Register(c.UserContext(), services.RegisterInput{
		Name:        input.Name,
		Email:       input.Email,
		Password:    input.Password,
		Role:        input.Role,
		Bio:         input.Bio,
		Expertise:   input.Expertise,
		Credentials: input.Credentials,
		HourlyRate:  input.HourlyRate,
	})
	if err != nil {
		return err
	}

	return utils.Created(c, fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param input body LoginRequest true "Login credentials"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	user, token, err := ac.Svc.Auth.Login(c.UserContext(), input.Email, input.Password, services.ClientInfo{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return err
	}

	return utils.OK(c, fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	current, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	user, err := ac.Svc.Auth.Me(c.UserContext(), current.ID)
	if err != nil {
		return err
	}
	return utils.OK(c, user)
}
