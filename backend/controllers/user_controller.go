package controllers

import (
	"strings"

	"learnity/backend/config"
	"learnity/backend/models"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewUserController(db *gorm.DB, cfg *config.Config, svc *services.Services) *UserController {
	return &UserController{DB: db, Cfg: cfg, Svc: svc}
}

// UpdateProfileRequest carries optional fields; only those present are changed.
type UpdateProfileRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=120"`
	AvatarURL  *string `json:"avatar_url" validate:"omitempty,url"`
	Bio        *string `json:"bio" validate:"omitempty,max=2000"`
	GradeLevel *string `json:"grade_level" validate:"omitempty,max=50"`
	Interests  *string `json:"interests" validate:"omitempty,max=500"`
	Headline   *string `json:"headline" validate:"omitempty,max=200"`
	Expertise  *string `json:"expertise" validate:"omitempty,max=500"`
	HourlyRate *int64  `json:"hourly_rate" validate:"omitempty,gte=0"`
}

type TeacherSummary struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	AvatarURL  string  `json:"avatar_url"`
	Headline   string  `json:"headline"`
	Bio        string  `json:"bio,omitempty"`
	Expertise  string  `json:"expertise"`
	HourlyRate int64   `json:"hourly_rate"`
	Rating     float64 `json:"rating"`
}

func teacherSummary(u *models.User) TeacherSummary {
	s := TeacherSummary{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
	if p := u.TeacherProfile; p != nil {
		s.Headline = p.Headline
		s.Bio = p.Bio
		s.Expertise = p.Expertise
		s.HourlyRate = p.HourlyRate
		s.Rating = p.Rating
	}
	return s
}

// GetProfile godoc
// @Summary Get user profile
// @Tags user
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	current, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	user, err := uc.Svc.Auth.Me(c.UserContext(), current.ID)
	if err != nil {
		return err
	}
	return utils.OK(c, user)
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Students may change bio, grade level and interests; teachers headline, bio, expertise and hourly rate
// @Tags user
// @Accept json
// @Produce json
// @Param input body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	current, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	var input UpdateProfileRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	err = uc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		userUpdates := map[string]interface{}{}
		if input.Name != nil {
			userUpdates["name"] = strings.TrimSpace(*input.Name)
		}
		if input.AvatarURL != nil {
			userUpdates["avatar_url"] = *input.AvatarURL
		}
		if len(userUpdates) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", current.ID).Updates(userUpdates).Error; err != nil {
				return err
			}
		}

		switch current.Role {
		case models.RoleStudent:
			updates := map[string]interface{}{}
			if input.Bio != nil {
				updates["bio"] = *input.Bio
			}
			if input.GradeLevel != nil {
				updates["grade_level"] = *input.GradeLevel
			}
			if input.Interests != nil {
				updates["interests"] = *input.Interests
			}
			if len(updates) == 0 {
				return nil
			}
			profile := models.StudentProfile{}
			if err := tx.Where(models.StudentProfile{UserID: current.ID}).FirstOrCreate(&profile).Error; err != nil {
				return err
			}
			return tx.Model(&profile).Updates(updates).Error

		case models.RoleTeacher:
			updates := map[string]interface{}{}
			if input.Bio != nil {
				updates["bio"] = *input.Bio
			}
			if input.Headline != nil {
				updates["headline"] = *input.Headline
			}
			if input.Expertise != nil {
				updates["expertise"] = *input.Expertise
			}
			if input.HourlyRate != nil {
				updates["hourly_rate"] = *input.HourlyRate
			}
			if len(updates) == 0 {
				return nil
			}
			profile := models.TeacherProfile{}
			if err := tx.Where(models.TeacherProfile{UserID: current.ID}).FirstOrCreate(&profile).Error; err != nil {
				return err
			}
			return tx.Model(&profile).Updates(updates).Error
		}
		return nil
	})
	if err != nil {
		return err
	}

	user, err := uc.Svc.Auth.Me(c.UserContext(), current.ID)
	if err != nil {
		return err
	}
	return utils.OK(c, user)
}

// ListTeachers returns approved, active teachers, best rated first.
func (uc *UserController) ListTeachers(c *fiber.Ctx) error {
	page := utils.PageFromQuery(c)
	q := uc.DB.WithContext(c.UserContext()).Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleTeacher, true)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR id IN (?)", like,
			uc.DB.Model(&models.TeacherProfile{}).Select("user_id").Where("LOWER(expertise) LIKE ?", like))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return err
	}

	var users []models.User
	if err := q.Preload("TeacherProfile").Order("id ASC").Scopes(page.Scope).Find(&users).Error; err != nil {
		return err
	}

	result := make([]TeacherSummary, 0, len(users))
	for i := range users {
		result = append(result, teacherSummary(&users[i]))
	}
	return utils.Paginate(c, result, total, page)
}

func (uc *UserController) GetTeacher(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}

	db := uc.DB.WithContext(c.UserContext())
	var teacher models.User
	if err := db.Preload("TeacherProfile").
		Where("id = ? AND role = ? AND is_active = ?", id, models.RoleTeacher, true).
		First(&teacher).Error; err != nil {
		return err
	}

	var courses []models.Course
	if err := db.Where("teacher_id = ? AND status = ?", teacher.ID, models.CoursePublished).
		Order("published_at DESC, id DESC").
		Find(&courses).Error; err != nil {
		return err
	}

	return utils.OK(c, fiber.Map{
		"teacher": teacherSummary(&teacher),
		"courses": courses,
	})
}
