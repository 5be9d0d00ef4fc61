package controllers

import (
	"sort"
	"time"

	"learnity/backend/config"
	"learnity/backend/models"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewAnalyticsController(db *gorm.DB, cfg *config.Config, svc *services.Services) *AnalyticsController {
	return &AnalyticsController{DB: db, Cfg: cfg, Svc: svc}
}

type StudentProgress struct {
	StudentID        uint       `json:"student_id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Status           string     `json:"status"`
	ProgressPercent  float64    `json:"progress_percent"`
	CompletedLessons int        `json:"completed_lessons"`
	EnrolledAt       time.Time  `json:"enrolled_at"`
	LastAccessedAt   *time.Time `json:"last_accessed_at"`
	CompletedAt      *time.Time `json:"completed_at"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// parsePeriod reads start_date and end_date (YYYY-MM-DD), defaulting to the last 30 days.
func parsePeriod(c *fiber.Ctx) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return start, end, utils.BadRequestErr("invalid start_date format, use YYYY-MM-DD")
		}
		start = t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return start, end, utils.BadRequestErr("invalid end_date format, use YYYY-MM-DD")
		}
		end = t.Add(24*time.Hour - time.Nanosecond)
	}
	if end.Before(start) {
		return start, end, utils.BadRequestErr("end_date is before start_date")
	}
	return start, end, nil
}

func enrollmentTrend(enrollments []models.Enrollment, start, end time.Time) []DailyCount {
	buckets := map[string]int{}
	for _, e := range enrollments {
		created := e.CreatedAt.UTC()
		if created.Before(start) || created.After(end) {
			continue
		}
		buckets[created.Format("2006-01-02")]++
	}
	trend := make([]DailyCount, 0, len(buckets))
	for day, count := range buckets {
		trend = append(trend, DailyCount{Date: day, Count: count})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })
	return trend
}

// GetCourseAnalytics godoc
// @Summary Course analytics
// @Description Per-student progress, completion rate, quiz results and daily enrollments for the owner or an admin
// @Tags teacher
// @Produce json
// @Param id path int true "Course ID"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /teacher/courses/{id}/analytics [get]
func (ac *AnalyticsController) GetCourseAnalytics(c *fiber.Ctx) error {
	courseID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	start, end, err := parsePeriod(c)
	if err != nil {
		return err
	}

	db := ac.DB.WithContext(c.UserContext())
	var course models.Course
	if err := db.First(&course, courseID).Error; err != nil {
		return utils.NotFoundErr("course")
	}
	if !user.IsAdmin() && course.TeacherID != user.ID {
		return utils.ForbiddenErr("you do not own this course")
	}

	var enrollments []models.Enrollment
	if err := db.Where("course_id = ?", course.ID).Order("created_at ASC").Find(&enrollments).Error; err != nil {
		return err
	}

	studentIDs := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		studentIDs = append(studentIDs, e.StudentID)
	}

	users := map[uint]models.User{}
	completed := map[uint]int{}
	if len(studentIDs) > 0 {
		var rows []models.User
		if err := db.Where("id IN ?", studentIDs).Find(&rows).Error; err != nil {
			return err
		}
		for _, u := range rows {
			users[u.ID] = u
		}

		type countRow struct {
			UserID uint
			Total  int
		}
		var counts []countRow
		if err := db.Model(&models.LessonProgress{}).
			Select("user_id, COUNT(*) AS total").
			Where("course_id = ? AND completed = ?", course.ID, true).
			Group("user_id").
			Scan(&counts).Error; err != nil {
			return err
		}
		for _, r := range counts {
			completed[r.UserID] = r.Total
		}
	}

	students := make([]StudentProgress, 0, len(enrollments))
	finished := 0
	var progressSum float64
	for _, e := range enrollments {
		u := users[e.StudentID]
		if e.Status == models.EnrollmentCompleted {
			finished++
		}
		progressSum += e.ProgressPercent
		students = append(students, StudentProgress{
			StudentID:        e.StudentID,
			Name:             u.Name,
			Email:            u.Email,
			Status:           e.Status,
			ProgressPercent:  e.ProgressPercent,
			CompletedLessons: completed[e.StudentID],
			EnrolledAt:       e.CreatedAt,
			LastAccessedAt:   e.LastAccessedAt,
			CompletedAt:      e.CompletedAt,
		})
	}

	var quizStats struct {
		Attempts     int64
		AverageScore float64
	}
	if err := db.Model(&models.QuizAttempt{}).
		Select("COUNT(*) AS attempts, COALESCE(AVG(score), 0) AS average_score").
		Where("quiz_id IN (?)", db.Model(&models.Quiz{}).Select("id").Where("course_id = ?", course.ID)).
		Scan(&quizStats).Error; err != nil {
		return err
	}

	completionRate, averageProgress := 0.0, 0.0
	if n := len(enrollments); n > 0 {
		completionRate = float64(finished) / float64(n) * 100
		averageProgress = progressSum / float64(n)
	}

	return utils.OK(c, fiber.Map{
		"course_id":        course.ID,
		"total_students":   len(enrollments),
		"completed":        finished,
		"completion_rate":  completionRate,
		"average_progress": averageProgress,
		"average_rating":   course.AverageRating,
		"review_count":     course.ReviewCount,
		"quiz_attempts":    quizStats.Attempts,
		"quiz_avg_score":   quizStats.AverageScore,
		"students":         students,
		"enrollment_trend": enrollmentTrend(enrollments, start, end),
		"period": fiber.Map{
			"start_date": start.Format("2006-01-02"),
			"end_date":   end.Format("2006-01-02"),
		},
	})
}
