// Package services holds the transactional flows behind the API handlers.
package services

import (
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"learnity/backend/config"
	"learnity/backend/models"
	"learnity/backend/notify"
	"learnity/backend/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Deps struct {
	Redis   *redis.Client
	Mailer  notify.Mailer
	Gateway PaymentGateway
	Logger  *log.Logger
	Now     func() time.Time
}

type Services struct {
	Auth         *AuthService
	Wallet       *WalletService
	Enrollment   *EnrollmentService
	Progress     *ProgressService
	Quiz         *QuizService
	Gamification *GamificationService
	Reviews      *ReviewService
	Tutoring     *TutoringService
	Live         *LiveService
	Messaging    *MessagingService
	Admin        *AdminService
}

func New(db *gorm.DB, cfg *config.Config, deps Deps) *Services {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Mailer == nil {
		deps.Mailer = &notify.ConsoleMailer{Logger: deps.Logger}
	}
	if deps.Gateway == nil {
		deps.Gateway = SandboxGateway{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	board := &Leaderboard{DB: db, Redis: deps.Redis, Logger: deps.Logger}
	wallet := &WalletService{DB: db, Gateway: deps.Gateway}

	return &Services{
		Auth:         &AuthService{DB: db, Cfg: cfg, Now: deps.Now},
		Wallet:       wallet,
		Enrollment:   &EnrollmentService{DB: db, FeePercent: cfg.PlatformFeePercent, Now: deps.Now},
		Progress:     &ProgressService{DB: db, Board: board, Now: deps.Now},
		Quiz:         &QuizService{DB: db, Board: board, Now: deps.Now},
		Gamification: &GamificationService{DB: db, Board: board},
		Reviews:      &ReviewService{DB: db},
		Tutoring: &TutoringService{
			DB:           db,
			Mailer:       deps.Mailer,
			Logger:       deps.Logger,
			FeePercent:   cfg.PlatformFeePercent,
			VideoBaseURL: cfg.VideoBaseURL,
			Now:          deps.Now,
		},
		Live:      &LiveService{DB: db, VideoBaseURL: cfg.VideoBaseURL, Now: deps.Now},
		Messaging: &MessagingService{DB: db, Now: deps.Now},
		Admin:     &AdminService{DB: db, Mailer: deps.Mailer, Logger: deps.Logger, Now: deps.Now},
	}
}

func nowUTC(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

// isUniqueViolation recognises duplicate-key errors from postgres and sqlite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// notFound turns gorm.ErrRecordNotFound into a NOT_FOUND error for what.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFoundErr(what)
	}
	return err
}

func isEnrolled(tx *gorm.DB, userID, courseID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// canManageCourse reports whether user owns the course or is an admin.
func canManageCourse(user *models.User, course *models.Course) bool {
	return user.IsAdmin() || course.TeacherID == user.ID
}
