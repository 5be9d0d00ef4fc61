package controllers

import (
	"learnity/backend/config"
	"learnity/backend/models"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewAdminController(db *gorm.DB, cfg *config.Config, svc *services.Services) *AdminController {
	return &AdminController{DB: db, Cfg: cfg, Svc: svc}
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// GetApplications godoc
// @Summary List teacher applications
// @Tags admin
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Success 200 {object} utils.PaginatedResponse
// @Security ApiKeyAuth
// @Router /admin/teacher-applications [get]
func (ac *AdminController) GetApplications(c *fiber.Ctx) error {
	page := utils.PageFromQuery(c)
	status := c.Query("status", models.ApplicationPending)

	apps, total, err := ac.Svc.Admin.Applications(c.UserContext(), status, page)
	if err != nil {
		return err
	}
	return utils.Paginate(c, apps, total, page)
}

func (ac *AdminController) ApproveApplication(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	admin, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	app, err := ac.Svc.Admin.Approve(c.UserContext(), admin, id)
	if err != nil {
		return err
	}
	return utils.OK(c, app)
}

func (ac *AdminController) RejectApplication(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	admin, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	var input RejectRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	app, err := ac.Svc.Admin.Reject(c.UserContext(), admin, id, input.Reason)
	if err != nil {
		return err
	}
	return utils.OK(c, app)
}

func (ac *AdminController) GetUsers(c *fiber.Ctx) error {
	page := utils.PageFromQuery(c)
	users, total, err := ac.Svc.Admin.Users(c.UserContext(), services.UserFilter{
		Role:   c.Query("role"),
		Search: c.Query("search"),
	}, page)
	if err != nil {
		return err
	}
	return utils.Paginate(c, users, total, page)
}

func (ac *AdminController) setActive(active bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := utils.ParamID(c, "id")
		if err != nil {
			return err
		}
		admin, err := utils.CurrentUser(c)
		if err != nil {
			return err
		}

		user, err := ac.Svc.Admin.SetActive(c.UserContext(), admin, id, active)
		if err != nil {
			return err
		}
		return utils.OK(c, user)
	}
}

func (ac *AdminController) SuspendUser() fiber.Handler  { return ac.setActive(false) }
func (ac *AdminController) ActivateUser() fiber.Handler { return ac.setActive(true) }

func (ac *AdminController) GetAuditLogs(c *fiber.Ctx) error {
	page := utils.PageFromQuery(c)
	logs, total, err := ac.Svc.Admin.AuditLogs(c.UserContext(), c.Query("action"), page)
	if err != nil {
		return err
	}
	return utils.Paginate(c, logs, total, page)
}

func (ac *AdminController) GetSecurityEvents(c *fiber.Ctx) error {
	page := utils.PageFromQuery(c)
	events, total, err := ac.Svc.Admin.SecurityEvents(c.UserContext(), c.Query("type"), page)
	if err != nil {
		return err
	}
	return utils.Paginate(c, events, total, page)
}

// GetStats godoc
// @Summary Platform statistics
// @Tags admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /admin/stats [get]
func (ac *AdminController) GetStats(c *fiber.Ctx) error {
	stats, err := ac.Svc.Admin.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return utils.OK(c, stats)
}
