package controllers

import (
	"errors"
	"strings"

	"learnity/backend/config"
	"learnity/backend/models"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuizController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Svc     *services.Services
	courses *CoursesController
}

func NewQuizController(db *gorm.DB, cfg *config.Config, svc *services.Services) *QuizController {
	return &QuizController{DB: db, Cfg: cfg, Svc: svc, courses: NewCoursesController(db, cfg, svc)}
}

type QuizRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=2000"`
	LessonID     *uint  `json:"lesson_id"`
	PassingScore *int   `json:"passing_score" validate:"omitempty,min=1,max=100"`
	XPReward     *int   `json:"xp_reward" validate:"omitempty,gte=0,lte=1000"`
	MaxAttempts  int    `json:"max_attempts" validate:"gte=0"`
}

type QuestionRequest struct {
	Prompt        string   `json:"prompt" validate:"required,max=2000"`
	Options       []string `json:"options" validate:"required,min=2,max=6,dive,required,max=500"`
	CorrectOption int      `json:"correct_option" validate:"gte=0"`
	Points        *int     `json:"points" validate:"omitempty,min=1,max=100"`
	Position      *int     `json:"position" validate:"omitempty,gte=1"`
}

type SubmitRequest struct {
	Answers map[uint]int `json:"answers" validate:"required"`
}

func (r *QuestionRequest) check() error {
	if r.CorrectOption >= len(r.Options) {
		return utils.ValidationErr("validation failed", map[string]string{
			"correct_option": "correct_option must index one of the options",
		})
	}
	return nil
}

func checkLesson(tx *gorm.DB, lessonID *uint, courseID uint) error {
	if lessonID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Lesson{}).Where("id = ? AND course_id = ?", *lessonID, courseID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return utils.ValidationErr("lesson does not belong to this course")
	}
	return nil
}

func (qc *QuizController) ownedQuiz(c *fiber.Ctx, tx *gorm.DB, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := tx.First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundErr("quiz")
		}
		return nil, err
	}
	if _, _, err := qc.courses.ownedCourse(c, tx, quiz.CourseID); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// CreateQuiz godoc
// @Summary Create a quiz in a course
// @Tags teacher
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body QuizRequest true "Quiz"
// @Success 201 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /teacher/courses/{id}/quizzes [post]
func (qc *QuizController) CreateQuiz(c *fiber.Ctx) error {
	courseID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var input QuizRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	var quiz models.Quiz
	err = qc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		course, _, err := qc.courses.ownedCourse(c, tx, courseID)
		if err != nil {
			return err
		}
		if err := checkLesson(tx, input.LessonID, course.ID); err != nil {
			return err
		}
		quiz = models.Quiz{
			CourseID:     course.ID,
			LessonID:     input.LessonID,
			Title:        strings.TrimSpace(input.Title),
			Description:  input.Description,
			PassingScore: models.DefaultPassingScore,
			XPReward:     models.DefaultQuizXP,
			MaxAttempts:  input.MaxAttempts,
		}
		if input.PassingScore != nil {
			quiz.PassingScore = *input.PassingScore
		}
		if input.XPReward != nil {
			quiz.XPReward = *input.XPReward
		}
		return tx.Create(&quiz).Error
	})
	if err != nil {
		return err
	}
	return utils.Created(c, quiz)
}

func (qc *QuizController) UpdateQuiz(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var input QuizRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	db := qc.DB.WithContext(c.UserContext())
	quiz, err := qc.ownedQuiz(c, db, id)
	if err != nil {
		return err
	}
	if err := checkLesson(db, input.LessonID, quiz.CourseID); err != nil {
		return err
	}

	updates := map[string]interface{}{
		"title":        strings.TrimSpace(input.Title),
		"description":  input.Description,
		"lesson_id":    input.LessonID,
		"max_attempts": input.MaxAttempts,
	}
	if input.PassingScore != nil {
		updates["passing_score"] = *input.PassingScore
	}
	if input.XPReward != nil {
		updates["xp_reward"] = *input.XPReward
	}
	if err := db.Model(quiz).Updates(updates).Error; err != nil {
		return err
	}
	return utils.OK(c, quiz)
}

func (qc *QuizController) AddQuestion(c *fiber.Ctx) error {
	quizID, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var input QuestionRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}
	if err := input.check(); err != nil {
		return err
	}

	var question models.Question
	err = qc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		quiz, err := qc.ownedQuiz(c, tx, quizID)
		if err != nil {
			return err
		}
		position, err := nextPosition(tx, &models.Question{}, "quiz_id", quiz.ID)
		if err != nil {
			return err
		}
		if input.Position != nil {
			position = *input.Position
		}
		question = models.Question{
			QuizID:        quiz.ID,
			Prompt:        strings.TrimSpace(input.Prompt),
			CorrectOption: input.CorrectOption,
			Points:        1,
			Position:      position,
		}
		if input.Points != nil {
			question.Points = *input.Points
		}
		if err := question.SetOptions(input.Options); err != nil {
			return err
		}
		return tx.Create(&question).Error
	})
	if err != nil {
		return err
	}
	return utils.Created(c, question)
}

func (qc *QuizController) ownedQuestion(c *fiber.Ctx, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := tx.First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundErr("question")
		}
		return nil, err
	}
	if _, err := qc.ownedQuiz(c, tx, question.QuizID); err != nil {
		return nil, err
	}
	return &question, nil
}

func (qc *QuizController) UpdateQuestion(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	var input QuestionRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}
	if err := input.check(); err != nil {
		return err
	}

	db := qc.DB.WithContext(c.UserContext())
	question, err := qc.ownedQuestion(c, db, id)
	if err != nil {
		return err
	}
	if err := question.SetOptions(input.Options); err != nil {
		return err
	}
	updates := map[string]interface{}{
		"prompt":         strings.TrimSpace(input.Prompt),
		"options":        question.Options,
		"correct_option": input.CorrectOption,
	}
	if input.Points != nil {
		updates["points"] = *input.Points
	}
	if input.Position != nil {
		updates["position"] = *input.Position
	}
	if err := db.Model(question).Updates(updates).Error; err != nil {
		return err
	}
	return utils.OK(c, question)
}

func (qc *QuizController) DeleteQuestion(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}

	db := qc.DB.WithContext(c.UserContext())
	question, err := qc.ownedQuestion(c, db, id)
	if err != nil {
		return err
	}
	if err := db.Delete(question).Error; err != nil {
		return err
	}
	return utils.Message(c, "question deleted")
}

// GetQuiz godoc
// @Summary Get a quiz
// @Description Enrolled students get the questions without answers; the owner gets everything
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id} [get]
func (qc *QuizController) GetQuiz(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	quiz, err := qc.Svc.Quiz.Get(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return utils.OK(c, quiz)
}

// SubmitAttempt godoc
// @Summary Submit quiz answers
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param input body SubmitRequest true "Answers keyed by question id"
// @Success 201 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id}/attempts [post]
func (qc *QuizController) SubmitAttempt(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	var input SubmitRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	result, err := qc.Svc.Quiz.Submit(c.UserContext(), user.ID, id, input.Answers)
	if err != nil {
		return err
	}
	return utils.Created(c, result)
}

func (qc *QuizController) MyAttempts(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	attempts, err := qc.Svc.Quiz.Attempts(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	return utils.OK(c, attempts)
}
