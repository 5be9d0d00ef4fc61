package controllers

import (
	"learnity/backend/config"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EnrollmentController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewEnrollmentController(db *gorm.DB, cfg *config.Config, svc *services.Services) *EnrollmentController {
	return &EnrollmentController{DB: db, Cfg: cfg, Svc: svc}
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Free courses enroll directly; paid courses are charged to the wallet
// @Tags enrollment
// @Produce json
// @Param id path int true "Course ID"
// @Success 201 {object} utils.SuccessResponse
// @Failure 402 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (ec *EnrollmentController) Enroll(c *fiber.Ctx) error {
	courseID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	enrollment, err := ec.Svc.Enrollment.Enroll(c.UserContext(), user, courseID)
	if err != nil {
		return err
	}
	return utils.Created(c, enrollment)
}

func (ec *EnrollmentController) MyEnrollments(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	enrollments, err := ec.Svc.Enrollment.ListForStudent(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return utils.OK(c, enrollments)
}
