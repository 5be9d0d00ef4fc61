package controllers

import (
	"learnity/backend/config"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ReviewController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewReviewController(db *gorm.DB, cfg *config.Config, svc *services.Services) *ReviewController {
	return &ReviewController{DB: db, Cfg: cfg, Svc: svc}
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// CreateReview godoc
// @Summary Review a course
// @Description Enrolled students only, one review per course
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body ReviewRequest true "Review"
// @Success 201 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/reviews [post]
func (rc *ReviewController) CreateReview(c *fiber.Ctx) error {
	courseID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	var input ReviewRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	review, err := rc.Svc.Reviews.Create(c.UserContext(), user.ID, courseID, services.ReviewInput{
		Rating:  input.Rating,
		Comment: input.Comment,
	})
	if err != nil {
		return err
	}
	return utils.Created(c, review)
}

func (rc *ReviewController) UpdateReview(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	var input ReviewRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	review, err := rc.Svc.Reviews.Update(c.UserContext(), user.ID, id, services.ReviewInput{
		Rating:  input.Rating,
		Comment: input.Comment,
	})
	if err != nil {
		return err
	}
	return utils.OK(c, review)
}

func (rc *ReviewController) DeleteReview(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	if err := rc.Svc.Reviews.Delete(c.UserContext(), user, id); err != nil {
		return err
	}
	return utils.Message(c, "review deleted")
}

// GetCourseReviews godoc
// @Summary List course reviews
// @Tags reviews
// @Produce json
// @Param id path int true "Course ID"
// @Param page query int false "Page number"
// @Success 200 {object} utils.PaginatedResponse
// @Router /courses/{id}/reviews [get]
func (rc *ReviewController) GetCourseReviews(c *fiber.Ctx) error {
	courseID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	page := utils.PageFromQuery(c)

	reviews, total, err := rc.Svc.Reviews.List(c.UserContext(), courseID, page)
	if err != nil {
		return err
	}
	return utils.Paginate(c, reviews, total, page)
}
