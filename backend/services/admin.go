package services

import (
	"context"
	"log"
	"strings"
	"time"

	"learnity/backend/models"
	"learnity/backend/notify"
	"learnity/backend/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AdminService struct {
	DB     *gorm.DB
	Mailer notify.Mailer
	Logger *log.Logger
	Now    func() time.Time
}

type UserFilter struct {
	Role   string
	Search string
}

type Stats struct {
	UsersByRole       map[string]int64 `json:"users_by_role"`
	PublishedCourses  int64            `json:"published_courses"`
	Enrollments       int64            `json:"enrollments"`
	CompletedSessions int64            `json:"completed_sessions"`
	PlatformRevenue   int64            `json:"platform_revenue"`
}

func writeAudit(tx *gorm.DB, actorID uint, action, targetType string, targetID uint, meta map[string]interface{}) error {
	return tx.Create(&models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   datatypes.JSONMap(meta),
	}).Error
}

func (s *AdminService) notify(ctx context.Context, msg notify.Message) {
	if s.Mailer == nil {
		return
	}
	if err := s.Mailer.Send(ctx, msg); err != nil && s.Logger != nil {
		s.Logger.Printf("mail to %s failed: %v", msg.To, err)
	}
}

func (s *AdminService) Applications(ctx context.Context, status string, page utils.Page) ([]models.TeacherApplication, int64, error) {
	var (
		apps  []models.TeacherApplication
		total int64
	)
	q := s.DB.WithContext(ctx).Model(&models.TeacherApplication{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("User").Order("created_at ASC, id ASC").Scopes(page.Scope).Find(&apps).Error
	return apps, total, err
}

// review moves a pending application to status, failing with CONFLICT if it was already reviewed.
func review(tx *gorm.DB, app *models.TeacherApplication, adminID uint, status, reason string, now time.Time) error {
	res := tx.Model(&models.TeacherApplication{}).
		Where("id = ? AND status = ?", app.ID, models.ApplicationPending).
		Updates(map[string]interface{}{
			"status":           status,
			"reviewed_by":      adminID,
			"reviewed_at":      now,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ConflictErr("application has already been reviewed")
	}
	return tx.Preload("User").First(app, app.ID).Error
}

func loadApplication(tx *gorm.DB, id uint) (*models.TeacherApplication, error) {
	var app models.TeacherApplication
	if err := tx.Preload("User").First(&app, id).Error; err != nil {
		return nil, notFound(err, "application")
	}
	if app.Status != models.ApplicationPending {
		return nil, utils.ConflictErr("application has already been reviewed")
	}
	return &app, nil
}

// Approve promotes the applicant to teacher with a profile built from the application.
func (s *AdminService) Approve(ctx context.Context, admin *models.User, id uint) (*models.TeacherApplication, error) {
	now := nowUTC(s.Now)
	var app *models.TeacherApplication
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if app, err = loadApplication(tx, id); err != nil {
			return err
		}
		if err := review(tx, app, admin.ID, models.ApplicationApproved, "", now); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", app.UserID).Update("role", models.RoleTeacher).Error; err != nil {
			return err
		}

		profile := models.TeacherProfile{}
		if err := tx.Where(models.TeacherProfile{UserID: app.UserID}).FirstOrCreate(&profile).Error; err != nil {
			return err
		}
		if err := tx.Model(&profile).Updates(map[string]interface{}{
			"bio":         app.Bio,
			"expertise":   app.Expertise,
			"credentials": app.Credentials,
			"hourly_rate": app.HourlyRate,
		}).Error; err != nil {
			return err
		}
		return writeAudit(tx, admin.ID, models.AuditApproveTeacher, "teacher_application", app.ID, map[string]interface{}{
			"user_id": app.UserID,
		})
	})
	if err != nil {
		return nil, err
	}
	if app.User != nil {
		s.notify(ctx, notify.ApplicationApproved(app.User.Email, app.User.Name))
	}
	return app, nil
}

// Reject returns the applicant to the student role.
func (s *AdminService) Reject(ctx context.Context, admin *models.User, id uint, reason string) (*models.TeacherApplication, error) {
	now := nowUTC(s.Now)
	reason = strings.TrimSpace(reason)
	var app *models.TeacherApplication
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if app, err = loadApplication(tx, id); err != nil {
			return err
		}
		if err := review(tx, app, admin.ID, models.ApplicationRejected, reason, now); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("id = ? AND role = ?", app.UserID, models.RolePendingTeacher).
			Update("role", models.RoleStudent).Error; err != nil {
			return err
		}
		if err := tx.Where(models.StudentProfile{UserID: app.UserID}).FirstOrCreate(&models.StudentProfile{}).Error; err != nil {
			return err
		}
		return writeAudit(tx, admin.ID, models.AuditRejectTeacher, "teacher_application", app.ID, map[string]interface{}{
			"user_id": app.UserID,
			"reason":  reason,
		})
	})
	if err != nil {
		return nil, err
	}
	if app.User != nil {
		s.notify(ctx, notify.ApplicationRejected(app.User.Email, app.User.Name, reason))
	}
	return app, nil
}

func (s *AdminService) Users(ctx context.Context, f UserFilter, page utils.Page) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)
	q := s.DB.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	q = q.Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("id ASC").Scopes(page.Scope).Find(&users).Error
	return users, total, err
}

// SetActive suspends or reactivates an account. Admins cannot suspend themselves.
func (s *AdminService) SetActive(ctx context.Context, admin *models.User, userID uint, active bool) (*models.User, error) {
	if !active && admin.ID == userID {
		return nil, utils.ForbiddenErr("admins cannot suspend themselves")
	}
	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return notFound(err, "user")
		}
		if err := tx.Model(&user).Update("is_active", active).Error; err != nil {
			return err
		}
		action := models.AuditActivateUser
		if !active {
			action = models.AuditSuspendUser
		}
		return writeAudit(tx, admin.ID, action, "user", user.ID, map[string]interface{}{"email": user.Email})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AdminService) AuditLogs(ctx context.Context, action string, page utils.Page) ([]models.AuditLog, int64, error) {
	var (
		logs  []models.AuditLog
		total int64
	)
	q := s.DB.WithContext(ctx).Model(&models.AuditLog{})
	if action != "" {
		q = q.Where("action = ?", action)
	}
	q = q.Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("id DESC").Scopes(page.Scope).Find(&logs).Error
	return logs, total, err
}

func (s *AdminService) SecurityEvents(ctx context.Context, eventType string, page utils.Page) ([]models.SecurityEvent, int64, error) {
	var (
		events []models.SecurityEvent
		total  int64
	)
	q := s.DB.WithContext(ctx).Model(&models.SecurityEvent{})
	if eventType != "" {
		q = q.Where("type = ?", eventType)
	}
	q = q.Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("id DESC").Scopes(page.Scope).Find(&events).Error
	return events, total, err
}

type roleCount struct {
	Role  string
	Count int64
}

func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	db := s.DB.WithContext(ctx)
	stats := &Stats{UsersByRole: map[string]int64{}}

	var roles []roleCount
	if err := db.Model(&models.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&roles).Error; err != nil {
		return nil, err
	}
	for _, r := range roles {
		stats.UsersByRole[r.Role] = r.Count
	}

	if err := db.Model(&models.Course{}).Where("status = ?", models.CoursePublished).Count(&stats.PublishedCourses).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Enrollment{}).Count(&stats.Enrollments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.TutoringSession{}).Where("status = ?", models.SessionCompleted).Count(&stats.CompletedSessions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(fee), 0)").
		Where("status = ? AND type IN ?", models.TxCompleted, []string{models.TxCourseSale, models.TxSessionEarning}).
		Scan(&stats.PlatformRevenue).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
