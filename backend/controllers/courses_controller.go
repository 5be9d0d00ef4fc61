package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"learnity/backend/config"
	"learnity/backend/models"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, svc *services.Services) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Svc: svc}
}

type CourseRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	ShortDesc    string `json:"short_desc" validate:"max=500"`
	Description  string `json:"description" validate:"max=20000"`
	Category     string `json:"category" validate:"max=100"`
	Level        string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price        int64  `json:"price" validate:"gte=0"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
}

type SectionRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Position *int   `json:"position" validate:"omitempty,gte=1"`
}

type LessonRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=5000"`
	VideoURL        string `json:"video_url" validate:"omitempty,url"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
	IsPreview       bool   `json:"is_preview"`
	XPReward        *int   `json:"xp_reward" validate:"omitempty,gte=0,lte=1000"`
	Position        *int   `json:"position" validate:"omitempty,gte=1"`
}

// viewer is the optionally authenticated user.
func viewer(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(utils.LocalUser).(*models.User)
	return user
}

// uniqueSlug derives a slug from title, suffixing -2, -3... while it is taken.
func uniqueSlug(tx *gorm.DB, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "course"
	}
	candidate := base
	for n := 2; ; n++ {
		var count int64
		if err := tx.Unscoped().Model(&models.Course{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// ownedCourse loads a course the current user may edit.
func (cc *CoursesController) ownedCourse(c *fiber.Ctx, tx *gorm.DB, id uint) (*models.Course, *models.User, error) {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return nil, nil, err
	}
	var course models.Course
	if err := tx.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, utils.NotFoundErr("course")
		}
		return nil, nil, err
	}
	if !user.IsAdmin() && course.TeacherID != user.ID {
		return nil, nil, utils.ForbiddenErr("you do not own this course")
	}
	return &course, user, nil
}

func (cc *CoursesController) ownedSection(c *fiber.Ctx, tx *gorm.DB, id uint) (*models.Section, error) {
	var section models.Section
	if err := tx.First(&section, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundErr("section")
		}
		return nil, err
	}
	if _, _, err := cc.ownedCourse(c, tx, section.CourseID); err != nil {
		return nil, err
	}
	return &section, nil
}

func (cc *CoursesController) ownedLesson(c *fiber.Ctx, tx *gorm.DB, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := tx.First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundErr("lesson")
		}
		return nil, err
	}
	if _, _, err := cc.ownedCourse(c, tx, lesson.CourseID); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// nextPosition appends after the highest position under parentID.
func nextPosition(tx *gorm.DB, model interface{}, column string, parentID uint) (int, error) {
	var last int
	err := tx.Model(model).Select("COALESCE(MAX(position), 0)").Where(column+" = ?", parentID).Scan(&last).Error
	return last + 1, err
}

// GetCourses godoc
// @Summary List published courses
// @Tags courses
// @Produce json
// @Param search query string false "Title or description"
// @Param category query string false "Category"
// @Param level query string false "beginner, intermediate or advanced"
// @Param teacher_id query int false "Teacher"
// @Param free query bool false "Only free courses"
// @Param sort query string false "newest, rating or price"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse
// @Router /courses [get]
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	page := utils.PageFromQuery(c)
	q := cc.DB.WithContext(c.UserContext()).Model(&models.Course{}).Where("status = ?", models.CoursePublished)

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(short_desc) LIKE ?", like, like)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if level := c.Query("level"); level != "" {
		q = q.Where("level = ?", level)
	}
	if teacherID := c.QueryInt("teacher_id"); teacherID > 0 {
		q = q.Where("teacher_id = ?", teacherID)
	}
	if free, err := strconv.ParseBool(c.Query("free", "false")); err == nil && free {
		q = q.Where("price = 0")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return err
	}

	order := "published_at DESC, id DESC"
	switch c.Query("sort") {
	case "rating":
		order = "average_rating DESC, review_count DESC, id DESC"
	case "price":
		order = "price ASC, id DESC"
	}

	var courses []models.Course
	if err := q.Preload("Teacher").Order(order).Scopes(page.Scope).Find(&courses).Error; err != nil {
		return err
	}
	return utils.Paginate(c, courses, total, page)
}

// GetCourse godoc
// @Summary Course details
// @Description Accepts a numeric id or a slug; lesson videos are only exposed to enrolled students, the owner or previews
// @Tags courses
// @Produce json
// @Param id path string true "Course id or slug"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	db := cc.DB.WithContext(c.UserContext())
	key := c.Params("id")

	q := db.Preload("Teacher.TeacherProfile").
		Preload("Sections", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC, id ASC") }).
		Preload("Sections.Lessons", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC, id ASC") })
	if id, err := strconv.ParseUint(key, 10, 64); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("slug = ?", key)
	}

	var course models.Course
	if err := q.First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundErr("course")
		}
		return err
	}

	user := viewer(c)
	manager := user != nil && (user.IsAdmin() || course.TeacherID == user.ID)
	if course.Status != models.CoursePublished && !manager {
		return utils.NotFoundErr("course")
	}

	fullAccess := manager
	if !fullAccess && user != nil {
		var count int64
		if err := db.Model(&models.Enrollment{}).
			Where("student_id = ? AND course_id = ?", user.ID, course.ID).
			Count(&count).Error; err != nil {
			return err
		}
		fullAccess = count > 0
	}
	if !fullAccess {
		for si := range course.Sections {
			for li := range course.Sections[si].Lessons {
				if lesson := &course.Sections[si].Lessons[li]; !lesson.IsPreview {
					lesson.VideoURL = ""
				}
			}
		}
	}

	return utils.OK(c, fiber.Map{
		"course":   course,
		"enrolled": fullAccess && !manager,
	})
}

// CreateCourse godoc
// @Summary Create a draft course
// @Tags teacher
// @Accept json
// @Produce json
// @Param input body CourseRequest true "Course"
// @Success 201 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /teacher/courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	var input CourseRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	course := models.Course{
		TeacherID:    user.ID,
		Title:        strings.TrimSpace(input.Title),
		ShortDesc:    input.ShortDesc,
		Description:  input.Description,
		Category:     input.Category,
		Level:        input.Level,
		Price:        input.Price,
		ThumbnailURL: input.ThumbnailURL,
		Status:       models.CourseDraft,
	}
	if course.Level == "" {
		course.Level = "beginner"
	}

	err = cc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		s, err := uniqueSlug(tx, course.Title)
		if err != nil {
			return err
		}
		course.Slug = s
		return tx.Create(&course).Error
	})
	if err != nil {
		return err
	}
	return utils.Created(c, course)
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var input CourseRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	db := cc.DB.WithContext(c.UserContext())
	course, _, err := cc.ownedCourse(c, db, id)
	if err != nil {
		return err
	}

	level := input.Level
	if level == "" {
		level = course.Level
	}
	if err := db.Model(course).Updates(map[string]interface{}{
		"title":         strings.TrimSpace(input.Title),
		"short_desc":    input.ShortDesc,
		"description":   input.Description,
		"category":      input.Category,
		"level":         level,
		"price":         input.Price,
		"thumbnail_url": input.ThumbnailURL,
	}).Error; err != nil {
		return err
	}
	return utils.OK(c, course)
}

// DeleteCourse soft-deletes a course nobody is enrolled in.
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}

	err = cc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		course, _, err := cc.ownedCourse(c, tx, id)
		if err != nil {
			return err
		}
		var enrollments int64
		if err := tx.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollments).Error; err != nil {
			return err
		}
		if enrollments > 0 {
			return utils.ConflictErr("course has enrollments; archive it instead")
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Section{}).Error; err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
	if err != nil {
		return err
	}
	return utils.Message(c, "course deleted")
}

func (cc *CoursesController) PublishCourse(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}

	db := cc.DB.WithContext(c.UserContext())
	course, _, err := cc.ownedCourse(c, db, id)
	if err != nil {
		return err
	}

	var lessons int64
	if err := db.Model(&models.Lesson{}).Where("course_id = ?", course.ID).Count(&lessons).Error; err != nil {
		return err
	}
	if lessons == 0 {
		return utils.ValidationErr("a course needs at least one lesson to be published")
	}

	updates := map[string]interface{}{"status": models.CoursePublished}
	if course.PublishedAt == nil {
		updates["published_at"] = time.Now().UTC()
	}
	if err := db.Model(course).Updates(updates).Error; err != nil {
		return err
	}
	return utils.OK(c, course)
}

func (cc *CoursesController) ArchiveCourse(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}

	db := cc.DB.WithContext(c.UserContext())
	course, _, err := cc.ownedCourse(c, db, id)
	if err != nil {
		return err
	}
	if err := db.Model(course).Update("status", models.CourseArchived).Error; err != nil {
		return err
	}
	return utils.OK(c, course)
}

type TeacherCourse struct {
	models.Course
	Enrollments int64 `json:"enrollments"`
}

// GetTeacherCourses lists the current teacher's courses in every status.
func (cc *CoursesController) GetTeacherCourses(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	db := cc.DB.WithContext(c.UserContext())
	var courses []models.Course
	if err := db.Where("teacher_id = ?", user.ID).Order("created_at DESC, id DESC").Find(&courses).Error; err != nil {
		return err
	}

	type countRow struct {
		CourseID uint
		Total    int64
	}
	var rows []countRow
	if err := db.Model(&models.Enrollment{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN (?)", db.Model(&models.Course{}).Select("id").Where("teacher_id = ?", user.ID)).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CourseID] = r.Total
	}

	result := make([]TeacherCourse, 0, len(courses))
	for _, course := range courses {
		result = append(result, TeacherCourse{Course: course, Enrollments: counts[course.ID]})
	}
	return utils.OK(c, result)
}

func (cc *CoursesController) CreateSection(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var input SectionRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	var section models.Section
	err = cc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		course, _, err := cc.ownedCourse(c, tx, id)
		if err != nil {
			return err
		}
		position, err := nextPosition(tx, &models.Section{}, "course_id", course.ID)
		if err != nil {
			return err
		}
		if input.Position != nil {
			position = *input.Position
		}
		section = models.Section{CourseID: course.ID, Title: strings.TrimSpace(input.Title), Position: position}
		return tx.Create(&section).Error
	})
	if err != nil {
		return err
	}
	return utils.Created(c, section)
}

func (cc *CoursesController) UpdateSection(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var input SectionRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	db := cc.DB.WithContext(c.UserContext())
	section, err := cc.ownedSection(c, db, id)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{"title": strings.TrimSpace(input.Title)}
	if input.Position != nil {
		updates["position"] = *input.Position
	}
	if err := db.Model(section).Updates(updates).Error; err != nil {
		return err
	}
	return utils.OK(c, section)
}

func (cc *CoursesController) DeleteSection(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}

	err = cc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		section, err := cc.ownedSection(c, tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("section_id = ?", section.ID).Delete(&models.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(section).Error
	})
	if err != nil {
		return err
	}
	return utils.Message(c, "section deleted")
}

func (cc *CoursesController) CreateLesson(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var input LessonRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	var lesson models.Lesson
	err = cc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		section, err := cc.ownedSection(c, tx, id)
		if err != nil {
			return err
		}
		position, err := nextPosition(tx, &models.Lesson{}, "section_id", section.ID)
		if err != nil {
			return err
		}
		if input.Position != nil {
			position = *input.Position
		}
		xp := models.DefaultLessonXP
		if input.XPReward != nil {
			xp = *input.XPReward
		}
		lesson = models.Lesson{
			CourseID:        section.CourseID,
			SectionID:       section.ID,
			Title:           strings.TrimSpace(input.Title),
			Description:     input.Description,
			VideoURL:        input.VideoURL,
			DurationSeconds: input.DurationSeconds,
			Position:        position,
			IsPreview:       input.IsPreview,
			XPReward:        xp,
		}
		return tx.Create(&lesson).Error
	})
	if err != nil {
		return err
	}
	return utils.Created(c, lesson)
}

func (cc *CoursesController) UpdateLesson(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var input LessonRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	db := cc.DB.WithContext(c.UserContext())
	lesson, err := cc.ownedLesson(c, db, id)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"title":            strings.TrimSpace(input.Title),
		"description":      input.Description,
		"video_url":        input.VideoURL,
		"duration_seconds": input.DurationSeconds,
		"is_preview":       input.IsPreview,
	}
	if input.XPReward != nil {
		updates["xp_reward"] = *input.XPReward
	}
	if input.Position != nil {
		updates["position"] = *input.Position
	}
	if err := db.Model(lesson).Updates(updates).Error; err != nil {
		return err
	}
	return utils.OK(c, lesson)
}

func (cc *CoursesController) DeleteLesson(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}

	db := cc.DB.WithContext(c.UserContext())
	lesson, err := cc.ownedLesson(c, db, id)
	if err != nil {
		return err
	}
	if err := db.Delete(lesson).Error; err != nil {
		return err
	}
	return utils.Message(c, "lesson deleted")
}
