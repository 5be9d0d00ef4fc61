package controllers

import (
	"strings"
	"time"

	"learnity/backend/config"
	"learnity/backend/models"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SessionController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewSessionController(db *gorm.DB, cfg *config.Config, svc *services.Services) *SessionController {
	return &SessionController{DB: db, Cfg: cfg, Svc: svc}
}

type BookSessionRequest struct {
	TeacherID       uint   `json:"teacher_id" validate:"required"`
	Subject         string `json:"subject" validate:"required,max=200"`
	StartsAt        string `json:"starts_at" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=15,max=240"`
	Notes           string `json:"notes" validate:"max=2000"`
}

// parseStartsAt accepts RFC3339 timestamps.
func parseStartsAt(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, utils.ValidationErr("validation failed", map[string]string{
			"starts_at": "starts_at must be an RFC3339 timestamp",
		})
	}
	return t.UTC(), nil
}

// BookSession godoc
// @Summary Request a tutoring session
// @Description The price is held from the student wallet until the session is completed or refunded
// @Tags sessions
// @Accept json
// @Produce json
// @Param input body BookSessionRequest true "Booking"
// @Success 201 {object} utils.SuccessResponse
// @Failure 402 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /sessions [post]
func (sc *SessionController) BookSession(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	var input BookSessionRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}
	startsAt, err := parseStartsAt(input.StartsAt)
	if err != nil {
		return err
	}

	session, err := sc.Svc.Tutoring.Book(c.UserContext(), user, services.BookingInput{
		TeacherID:       input.TeacherID,
		Subject:         strings.TrimSpace(input.Subject),
		StartsAt:        startsAt,
		DurationMinutes: input.DurationMinutes,
		Notes:           input.Notes,
	})
	if err != nil {
		return err
	}
	return utils.Created(c, session)
}

type sessionAction func(*services.TutoringService, *fiber.Ctx, *models.User, uint) (*models.TutoringSession, error)

func (sc *SessionController) act(action sessionAction) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := utils.ParamID(c, "id")
		if err != nil {
			return err
		}
		user, err := utils.CurrentUser(c)
		if err != nil {
			return err
		}
		session, err := action(sc.Svc.Tutoring, c, user, id)
		if err != nil {
			return err
		}
		return utils.OK(c, session)
	}
}

func (sc *SessionController) Accept() fiber.Handler {
	return sc.act(func(s *services.TutoringService, c *fiber.Ctx, u *models.User, id uint) (*models.TutoringSession, error) {
		return s.Accept(c.UserContext(), u, id)
	})
}

func (sc *SessionController) Decline() fiber.Handler {
	return sc.act(func(s *services.TutoringService, c *fiber.Ctx, u *models.User, id uint) (*models.TutoringSession, error) {
		return s.Decline(c.UserContext(), u, id)
	})
}

func (sc *SessionController) Cancel() fiber.Handler {
	return sc.act(func(s *services.TutoringService, c *fiber.Ctx, u *models.User, id uint) (*models.TutoringSession, error) {
		return s.Cancel(c.UserContext(), u, id)
	})
}

func (sc *SessionController) Complete() fiber.Handler {
	return sc.act(func(s *services.TutoringService, c *fiber.Ctx, u *models.User, id uint) (*models.TutoringSession, error) {
		return s.Complete(c.UserContext(), u, id)
	})
}

func (sc *SessionController) GetSession() fiber.Handler {
	return sc.act(func(s *services.TutoringService, c *fiber.Ctx, u *models.User, id uint) (*models.TutoringSession, error) {
		return s.Get(c.UserContext(), u, id)
	})
}

func (sc *SessionController) ListSessions(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	filter := services.SessionFilter{Role: c.Query("role"), Status: c.Query("status")}
	if filter.Role != "" && filter.Role != models.RoleStudent && filter.Role != models.RoleTeacher {
		return utils.BadRequestErr("role must be student or teacher")
	}

	sessions, err := sc.Svc.Tutoring.List(c.UserContext(), user, filter)
	if err != nil {
		return err
	}
	return utils.OK(c, sessions)
}
