package controllers

import (
	"time"

	"learnity/backend/config"
	"learnity/backend/models"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const recommendationLimit = 3

type DashboardController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewDashboardController(db *gorm.DB, cfg *config.Config, svc *services.Services) *DashboardController {
	return &DashboardController{DB: db, Cfg: cfg, Svc: svc}
}

func upcomingOnly(sessions []models.TutoringSession, now time.Time) []models.TutoringSession {
	out := make([]models.TutoringSession, 0, len(sessions))
	for _, s := range sessions {
		if s.EndsAt().After(now) {
			out = append(out, s)
		}
	}
	return out
}

// recommendedCourses picks top rated published courses in the categories the student
// already studies, excluding courses they are enrolled in.
func (dc *DashboardController) recommendedCourses(db *gorm.DB, studentID uint, enrollments []models.Enrollment) ([]models.Course, error) {
	enrolled := make([]uint, 0, len(enrollments))
	categories := map[string]bool{}
	for _, e := range enrollments {
		enrolled = append(enrolled, e.CourseID)
		if e.Course != nil && e.Course.Category != "" {
			categories[e.Course.Category] = true
		}
	}

	q := db.Where("status = ? AND teacher_id <> ?", models.CoursePublished, studentID)
	if len(enrolled) > 0 {
		q = q.Where("id NOT IN ?", enrolled)
	}
	if len(categories) > 0 {
		list := make([]string, 0, len(categories))
		for c := range categories {
			list = append(list, c)
		}
		q = q.Where("category IN ?", list)
	}

	var courses []models.Course
	err := q.Order("average_rating DESC, review_count DESC, id DESC").Limit(recommendationLimit).Find(&courses).Error
	return courses, err
}

// StudentDashboard godoc
// @Summary Student dashboard
// @Description Enrollments with progress, gamification summary, upcoming tutoring sessions and recommendations
// @Tags dashboard
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /dashboard/student [get]
func (dc *DashboardController) StudentDashboard(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	enrollments, err := dc.Svc.Enrollment.ListForStudent(ctx, user.ID)
	if err != nil {
		return err
	}
	summary, err := dc.Svc.Gamification.Summary(ctx, user.ID)
	if err != nil {
		return err
	}

	requested, err := dc.Svc.Tutoring.List(ctx, user, services.SessionFilter{Role: models.RoleStudent, Status: models.SessionRequested})
	if err != nil {
		return err
	}
	accepted, err := dc.Svc.Tutoring.List(ctx, user, services.SessionFilter{Role: models.RoleStudent, Status: models.SessionAccepted})
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	recommended, err := dc.recommendedCourses(dc.DB.WithContext(ctx), user.ID, enrollments)
	if err != nil {
		return err
	}

	wallet, err := dc.Svc.Wallet.Get(ctx, user.ID)
	if err != nil {
		return err
	}

	return utils.OK(c, fiber.Map{
		"enrollments":       enrollments,
		"gamification":      summary,
		"upcoming_sessions": upcomingOnly(append(accepted, requested...), now),
		"recommendations":   recommended,
		"wallet_balance":    wallet.Balance,
	})
}

// TeacherDashboard godoc
// @Summary Teacher dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /dashboard/teacher [get]
func (dc *DashboardController) TeacherDashboard(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	db := dc.DB.WithContext(ctx)

	var courses []models.Course
	if err := db.Where("teacher_id = ?", user.ID).Order("created_at DESC, id DESC").Find(&courses).Error; err != nil {
		return err
	}

	var students int64
	if err := db.Model(&models.Enrollment{}).
		Distinct("student_id").
		Where("course_id IN (?)", db.Model(&models.Course{}).Select("id").Where("teacher_id = ?", user.ID)).
		Count(&students).Error; err != nil {
		return err
	}

	var earnings int64
	if err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND status = ? AND type IN ?", user.ID, models.TxCompleted,
			[]string{models.TxCourseSale, models.TxSessionEarning}).
		Scan(&earnings).Error; err != nil {
		return err
	}

	pending, err := dc.Svc.Tutoring.List(ctx, user, services.SessionFilter{Role: models.RoleTeacher, Status: models.SessionRequested})
	if err != nil {
		return err
	}
	accepted, err := dc.Svc.Tutoring.List(ctx, user, services.SessionFilter{Role: models.RoleTeacher, Status: models.SessionAccepted})
	if err != nil {
		return err
	}

	wallet, err := dc.Svc.Wallet.Get(ctx, user.ID)
	if err != nil {
		return err
	}

	return utils.OK(c, fiber.Map{
		"courses":           courses,
		"total_students":    students,
		"earnings":          earnings,
		"wallet_balance":    wallet.Balance,
		"pending_requests":  pending,
		"upcoming_sessions": upcomingOnly(accepted, time.Now().UTC()),
	})
}
