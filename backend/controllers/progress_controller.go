package controllers

import (
	"errors"

	"learnity/backend/config"
	"learnity/backend/models"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewProgressController(db *gorm.DB, cfg *config.Config, svc *services.Services) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Svc: svc}
}

type WatchRequest struct {
	WatchedSeconds int `json:"watched_seconds" validate:"gte=0"`
}

// RecordWatch godoc
// @Summary Report watched seconds of a lesson
// @Description Watched time never decreases; the lesson completes once 90% is watched
// @Tags progress
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param input body WatchRequest true "Watched seconds"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id}/progress [post]
func (pc *ProgressController) RecordWatch(c *fiber.Ctx) error {
	lessonID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	var input WatchRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	outcome, err := pc.Svc.Progress.RecordWatch(c.UserContext(), user.ID, lessonID, input.WatchedSeconds)
	if err != nil {
		return err
	}
	return utils.OK(c, outcome)
}

// CompleteLesson godoc
// @Summary Mark a lesson completed
// @Tags progress
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id}/complete [post]
func (pc *ProgressController) CompleteLesson(c *fiber.Ctx) error {
	lessonID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	outcome, err := pc.Svc.Progress.Complete(c.UserContext(), user.ID, lessonID)
	if err != nil {
		return err
	}
	return utils.OK(c, outcome)
}

func (pc *ProgressController) CourseProgress(c *fiber.Ctx) error {
	courseID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	progress, err := pc.Svc.Progress.CourseProgress(c.UserContext(), user.ID, courseID)
	if err != nil {
		return err
	}
	return utils.OK(c, progress)
}

func (pc *ProgressController) MyCertificates(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	var certificates []models.Certificate
	if err := pc.DB.WithContext(c.UserContext()).
		Preload("Course").
		Where("user_id = ?", user.ID).
		Order("issued_at DESC").
		Find(&certificates).Error; err != nil {
		return err
	}
	return utils.OK(c, certificates)
}

// VerifyCertificate is public: it confirms a certificate number and who earned it.
func (pc *ProgressController) VerifyCertificate(c *fiber.Ctx) error {
	db := pc.DB.WithContext(c.UserContext())

	var certificate models.Certificate
	if err := db.Preload("Course").Where("number = ?", c.Params("number")).First(&certificate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundErr("certificate")
		}
		return err
	}

	var holder models.User
	if err := db.Select("id", "name").First(&holder, certificate.UserID).Error; err != nil {
		return err
	}

	courseTitle := ""
	if certificate.Course != nil {
		courseTitle = certificate.Course.Title
	}
	return utils.OK(c, fiber.Map{
		"valid":     true,
		"number":    certificate.Number,
		"issued_at": certificate.IssuedAt,
		"holder":    holder.Name,
		"course":    courseTitle,
		"course_id": certificate.CourseID,
	})
}
