package controllers

import (
	"strings"

	"learnity/backend/config"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LiveController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewLiveController(db *gorm.DB, cfg *config.Config, svc *services.Services) *LiveController {
	return &LiveController{DB: db, Cfg: cfg, Svc: svc}
}

type LiveRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	StartsAt        string `json:"starts_at" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=15,max=480"`
}

// ScheduleLive godoc
// @Summary Schedule a live class for a course
// @Tags teacher
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body LiveRequest true "Live session"
// @Success 201 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /teacher/courses/{id}/live [post]
func (lc *LiveController) ScheduleLive(c *fiber.Ctx) error {
	courseID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	var input LiveRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}
	startsAt, err := parseStartsAt(input.StartsAt)
	if err != nil {
		return err
	}

	live, err := lc.Svc.Live.Schedule(c.UserContext(), user, courseID, services.LiveInput{
		Title:           strings.TrimSpace(input.Title),
		StartsAt:        startsAt,
		DurationMinutes: input.DurationMinutes,
	})
	if err != nil {
		return err
	}
	return utils.Created(c, live)
}

func (lc *LiveController) Upcoming(c *fiber.Ctx) error {
	courseID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	sessions, err := lc.Svc.Live.Upcoming(c.UserContext(), user, courseID)
	if err != nil {
		return err
	}
	return utils.OK(c, sessions)
}

// Join returns the room URL once the join window is open.
func (lc *LiveController) Join(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	info, err := lc.Svc.Live.Join(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return utils.OK(c, info)
}

func (lc *LiveController) Cancel(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	live, err := lc.Svc.Live.Cancel(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return utils.OK(c, live)
}
