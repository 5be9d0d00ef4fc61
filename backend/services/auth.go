package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"learnity/backend/config"
	"learnity/backend/models"
	"learnity/backend/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	DB  *gorm.DB
	Cfg *config.Config
	Now func() time.Time
}

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Role        string // student or teacher
	Bio         string
	Expertise   string
	Credentials string
	HourlyRate  int64
}

// ClientInfo identifies where a login came from.
type ClientInfo struct {
	IP        string
	UserAgent string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) token(user *models.User) (string, error) {
	return utils.GenerateJWTToken(user.ID, user.Role, s.Cfg.JWTSecret, s.Cfg.JWTExpiration)
}

func emailTaken(tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := tx.Unscoped().Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// createAccount inserts the user with the rows every account owns: wallet and gamification progress.
func createAccount(tx *gorm.DB, user *models.User) error {
	if err := tx.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return utils.ConflictErr("email is already registered")
		}
		return err
	}
	if _, err := ensureWallet(tx, user.ID); err != nil {
		return err
	}
	_, err := ensureProgress(tx, user.ID)
	return err
}

// Register creates a student, or a pending teacher with an application awaiting admin review.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email := NormalizeEmail(in.Email)
	if in.Role != models.RoleStudent && in.Role != models.RoleTeacher {
		return nil, "", utils.ValidationErr("role must be student or teacher")
	}
	if in.HourlyRate < 0 {
		return nil, "", utils.ValidationErr("hourly_rate must not be negative")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		IsActive:     true,
	}
	if in.Role == models.RoleTeacher {
		user.Role = models.RolePendingTeacher
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, email)
		if err != nil {
			return err
		}
		if taken {
			return utils.ConflictErr("email is already registered")
		}
		if err := createAccount(tx, user); err != nil {
			return err
		}

		if user.Role == models.RoleStudent {
			profile := &models.StudentProfile{UserID: user.ID, Bio: in.Bio}
			if err := tx.Create(profile).Error; err != nil {
				return err
			}
			user.StudentProfile = profile
			return nil
		}
		return tx.Create(&models.TeacherApplication{
			UserID:      user.ID,
			Bio:         in.Bio,
			Expertise:   in.Expertise,
			Credentials: in.Credentials,
			HourlyRate:  in.HourlyRate,
			Status:      models.ApplicationPending,
		}).Error
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.token(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) securityEvent(db *gorm.DB, eventType, email string, userID *uint, client ClientInfo) error {
	return db.Create(&models.SecurityEvent{
		UserID:    userID,
		Email:     email,
		Type:      eventType,
		IP:        client.IP,
		UserAgent: client.UserAgent,
	}).Error
}

// Login checks credentials and records the outcome as a security event.
func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*models.User, string, error) {
	db := s.DB.WithContext(ctx)
	email = NormalizeEmail(email)

	var user models.User
	err := db.Preload("StudentProfile").Preload("TeacherProfile").Where("email = ?", email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		var userID *uint
		if user.ID != 0 {
			userID = &user.ID
		}
		if err := s.securityEvent(db, models.SecurityLoginFailed, email, userID, client); err != nil {
			return nil, "", err
		}
		return nil, "", utils.UnauthorizedErr("invalid email or password")
	}

	if !user.IsActive {
		if err := s.securityEvent(db, models.SecurityLoginBlocked, email, &user.ID, client); err != nil {
			return nil, "", err
		}
		return nil, "", utils.ForbiddenErr("account is suspended")
	}

	now := nowUTC(s.Now)
	if err := db.Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
		return nil, "", err
	}
	user.LastLoginAt = &now
	if err := s.securityEvent(db, models.SecurityLoginSuccess, email, &user.ID, client); err != nil {
		return nil, "", err
	}

	token, err := s.token(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Me loads a user with both profiles.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Preload("StudentProfile").Preload("TeacherProfile").First(&user, userID).Error
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// CreateAdmin inserts an admin account; used by the add_admin command.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" || len(password) < 8 {
		return nil, utils.ValidationErr("email and a password of at least 8 characters are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, email)
		if err != nil {
			return err
		}
		if taken {
			return utils.ConflictErr("email is already registered")
		}
		return createAccount(tx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
