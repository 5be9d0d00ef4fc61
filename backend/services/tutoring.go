package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"learnity/backend/models"
	"learnity/backend/notify"
	"learnity/backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinSessionMinutes = 15
	MaxSessionMinutes = 240
)

type TutoringService struct {
	DB           *gorm.DB
	Mailer       notify.Mailer
	Logger       *log.Logger
	FeePercent   int
	VideoBaseURL string
	Now          func() time.Time
}

type BookingInput struct {
	TeacherID       uint
	Subject         string
	StartsAt        time.Time
	DurationMinutes int
	Notes           string
}

type SessionFilter struct {
	Role   string // student or teacher; empty means both
	Status string
}

// SessionPrice charges the hourly rate pro rata.
func SessionPrice(hourlyRate int64, minutes int) int64 {
	return hourlyRate * int64(minutes) / 60
}

func validateSchedule(startsAt time.Time, minutes int, now time.Time) error {
	if minutes < MinSessionMinutes || minutes > MaxSessionMinutes {
		return utils.ValidationErr(fmt.Sprintf("duration_minutes must be between %d and %d", MinSessionMinutes, MaxSessionMinutes))
	}
	if !startsAt.After(now) {
		return utils.ValidationErr("starts_at must be in the future")
	}
	return nil
}

// activeSessions lists sessions of the user on the given side still holding a time slot.
func activeSessions(tx *gorm.DB, column string, userID uint) ([]models.TutoringSession, error) {
	var sessions []models.TutoringSession
	err := tx.Where(column+" = ? AND status IN ?", userID, []string{models.SessionRequested, models.SessionAccepted}).
		Find(&sessions).Error
	return sessions, err
}

func overlapsAny(sessions []models.TutoringSession, start, end time.Time) bool {
	for i := range sessions {
		if sessions[i].Overlaps(start, end) {
			return true
		}
	}
	return false
}

func (s *TutoringService) notify(ctx context.Context, msg notify.Message) {
	if s.Mailer == nil {
		return
	}
	if err := s.Mailer.Send(ctx, msg); err != nil && s.Logger != nil {
		s.Logger.Printf("mail to %s failed: %v", msg.To, err)
	}
}

// Book requests a session with a teacher and holds the price from the student's wallet.
func (s *TutoringService) Book(ctx context.Context, student *models.User, in BookingInput) (*models.TutoringSession, error) {
	now := nowUTC(s.Now)
	startsAt := in.StartsAt.UTC()
	if err := validateSchedule(startsAt, in.DurationMinutes, now); err != nil {
		return nil, err
	}
	if in.TeacherID == student.ID {
		return nil, utils.BadRequestErr("you cannot book a session with yourself")
	}

	var teacher models.User
	session := &models.TutoringSession{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("TeacherProfile").
			Where("id = ? AND role = ? AND is_active = ?", in.TeacherID, models.RoleTeacher, true).
			First(&teacher).Error; err != nil {
			return notFound(err, "teacher")
		}
		if teacher.TeacherProfile == nil {
			return utils.NotFoundErr("teacher profile")
		}

		end := startsAt.Add(time.Duration(in.DurationMinutes) * time.Minute)
		teacherSessions, err := activeSessions(tx, "teacher_id", teacher.ID)
		if err != nil {
			return err
		}
		if overlapsAny(teacherSessions, startsAt, end) {
			return utils.ConflictErr("the teacher is not available at that time")
		}
		studentSessions, err := activeSessions(tx, "student_id", student.ID)
		if err != nil {
			return err
		}
		if overlapsAny(studentSessions, startsAt, end) {
			return utils.ConflictErr("you already have a session at that time")
		}

		*session = models.TutoringSession{
			StudentID:       student.ID,
			TeacherID:       teacher.ID,
			Subject:         in.Subject,
			Notes:           in.Notes,
			StartsAt:        startsAt,
			DurationMinutes: in.DurationMinutes,
			Price:           SessionPrice(teacher.TeacherProfile.HourlyRate, in.DurationMinutes),
			Status:          models.SessionRequested,
		}
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		if session.Price > 0 {
			if _, err := post(tx, ledgerEntry{
				UserID:      student.ID,
				Type:        models.TxSessionPayment,
				Amount:      -session.Price,
				Description: "Tutoring session: " + session.Subject,
				RelatedType: "session",
				RelatedID:   session.ID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notify.SessionRequested(teacher.Email, teacher.Name, student.Name, session.Subject, session.StartsAt))
	return session, nil
}

// transition moves a session from one of the from states to next, updating extra columns.
// It fails with CONFLICT when another request changed the status first.
func transition(tx *gorm.DB, session *models.TutoringSession, from []string, next string, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": next}
	for k, v := range extra {
		updates[k] = v
	}
	res := tx.Model(&models.TutoringSession{}).
		Where("id = ? AND status IN ?", session.ID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ConflictErr(fmt.Sprintf("session cannot be %s from status %s", next, session.Status))
	}
	return tx.Preload("Student").Preload("Teacher").First(session, session.ID).Error
}

func refundSession(tx *gorm.DB, session *models.TutoringSession) error {
	if session.Price <= 0 {
		return nil
	}
	_, err := post(tx, ledgerEntry{
		UserID:      session.StudentID,
		Type:        models.TxRefund,
		Amount:      session.Price,
		Description: "Refund: " + session.Subject,
		RelatedType: "session",
		RelatedID:   session.ID,
	})
	return err
}

func (s *TutoringService) load(tx *gorm.DB, id uint) (*models.TutoringSession, error) {
	var session models.TutoringSession
	if err := tx.Preload("Student").Preload("Teacher").First(&session, id).Error; err != nil {
		return nil, notFound(err, "session")
	}
	return &session, nil
}

func (s *TutoringService) Accept(ctx context.Context, teacher *models.User, id uint) (*models.TutoringSession, error) {
	var session *models.TutoringSession
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = s.load(tx, id); err != nil {
			return err
		}
		if session.TeacherID != teacher.ID {
			return utils.ForbiddenErr("only the session teacher can accept it")
		}
		room := uuid.NewString()
		return transition(tx, session, []string{models.SessionRequested}, models.SessionAccepted, map[string]interface{}{
			"room_id":     room,
			"meeting_url": s.VideoBaseURL + "/" + room,
		})
	})
	if err != nil {
		return nil, err
	}
	if session.Student != nil {
		s.notify(ctx, notify.SessionAccepted(session.Student.Email, session.Student.Name, session.Subject, session.MeetingURL, session.StartsAt))
	}
	return session, nil
}

func (s *TutoringService) Decline(ctx context.Context, teacher *models.User, id uint) (*models.TutoringSession, error) {
	var session *models.TutoringSession
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = s.load(tx, id); err != nil {
			return err
		}
		if session.TeacherID != teacher.ID {
			return utils.ForbiddenErr("only the session teacher can decline it")
		}
		if err := transition(tx, session, []string{models.SessionRequested}, models.SessionDeclined, nil); err != nil {
			return err
		}
		return refundSession(tx, session)
	})
	if err != nil {
		return nil, err
	}
	if session.Student != nil {
		s.notify(ctx, notify.SessionDeclined(session.Student.Email, session.Student.Name, session.Subject))
	}
	return session, nil
}

// Cancel lets either party call off a session before it starts; the student is refunded.
func (s *TutoringService) Cancel(ctx context.Context, user *models.User, id uint) (*models.TutoringSession, error) {
	now := nowUTC(s.Now)
	var session *models.TutoringSession
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = s.load(tx, id); err != nil {
			return err
		}
		if session.StudentID != user.ID && session.TeacherID != user.ID {
			return utils.ForbiddenErr("you are not part of this session")
		}
		if !now.Before(session.StartsAt) {
			return utils.ConflictErr("session has already started")
		}
		if err := transition(tx, session, []string{models.SessionRequested, models.SessionAccepted}, models.SessionCancelled, map[string]interface{}{
			"cancelled_by": user.ID,
		}); err != nil {
			return err
		}
		return refundSession(tx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Complete releases the held payment to the teacher minus the platform fee.
func (s *TutoringService) Complete(ctx context.Context, teacher *models.User, id uint) (*models.TutoringSession, error) {
	now := nowUTC(s.Now)
	var session *models.TutoringSession
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = s.load(tx, id); err != nil {
			return err
		}
		if session.TeacherID != teacher.ID {
			return utils.ForbiddenErr("only the session teacher can complete it")
		}
		if now.Before(session.StartsAt) {
			return utils.ConflictErr("session has not started yet")
		}
		if err := transition(tx, session, []string{models.SessionAccepted}, models.SessionCompleted, map[string]interface{}{
			"completed_at": now,
		}); err != nil {
			return err
		}
		if session.Price <= 0 {
			return nil
		}
		fee := platformFee(session.Price, s.FeePercent)
		_, err = post(tx, ledgerEntry{
			UserID:      session.TeacherID,
			Type:        models.TxSessionEarning,
			Amount:      session.Price - fee,
			Fee:         fee,
			Description: "Tutoring session: " + session.Subject,
			RelatedType: "session",
			RelatedID:   session.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *TutoringService) List(ctx context.Context, user *models.User, f SessionFilter) ([]models.TutoringSession, error) {
	q := s.DB.WithContext(ctx).Preload("Student").Preload("Teacher")
	switch f.Role {
	case models.RoleStudent:
		q = q.Where("student_id = ?", user.ID)
	case models.RoleTeacher:
		q = q.Where("teacher_id = ?", user.ID)
	default:
		q = q.Where("student_id = ? OR teacher_id = ?", user.ID, user.ID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var sessions []models.TutoringSession
	err := q.Order("starts_at ASC, id ASC").Find(&sessions).Error
	return sessions, err
}

func (s *TutoringService) Get(ctx context.Context, user *models.User, id uint) (*models.TutoringSession, error) {
	session, err := s.load(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if session.StudentID != user.ID && session.TeacherID != user.ID && !user.IsAdmin() {
		return nil, utils.ForbiddenErr("you are not part of this session")
	}
	return session, nil
}
