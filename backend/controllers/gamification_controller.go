package controllers

import (
	"learnity/backend/config"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type GamificationController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewGamificationController(db *gorm.DB, cfg *config.Config, svc *services.Services) *GamificationController {
	return &GamificationController{DB: db, Cfg: cfg, Svc: svc}
}

func (gc *GamificationController) Me(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	summary, err := gc.Svc.Gamification.Summary(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return utils.OK(c, summary)
}

func (gc *GamificationController) Badges(c *fiber.Ctx) error {
	badges, err := gc.Svc.Gamification.Badges(c.UserContext())
	if err != nil {
		return err
	}
	return utils.OK(c, badges)
}

// Leaderboard godoc
// @Summary Top learners by XP
// @Tags gamification
// @Produce json
// @Param limit query int false "Entries to return (max 100)"
// @Success 200 {object} utils.SuccessResponse
// @Router /leaderboard [get]
func (gc *GamificationController) Leaderboard(c *fiber.Ctx) error {
	entries, err := gc.Svc.Gamification.Leaderboard(c.UserContext(), c.QueryInt("limit", services.DefaultLeaderboardLimit))
	if err != nil {
		return err
	}
	return utils.OK(c, entries)
}
