package services

import (
	"context"
	"fmt"
	"time"

	"learnity/backend/models"
	"learnity/backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentService struct {
	DB         *gorm.DB
	FeePercent int
	Now        func() time.Time
}

func ensureCourseRoom(tx *gorm.DB, courseID uint) (*models.CourseRoom, error) {
	room := models.CourseRoom{}
	err := tx.Where(models.CourseRoom{CourseID: courseID}).
		Attrs(models.CourseRoom{RoomID: uuid.NewString()}).
		FirstOrCreate(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Enroll admits a student into a published course, charging the wallet for paid courses.
func (s *EnrollmentService) Enroll(ctx context.Context, student *models.User, courseID uint) (*models.Enrollment, error) {
	now := nowUTC(s.Now)
	var enrollment *models.Enrollment

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.Where("id = ? AND status = ?", courseID, models.CoursePublished).First(&course).Error; err != nil {
			return notFound(err, "course")
		}
		if course.TeacherID == student.ID {
			return utils.ForbiddenErr("teachers cannot enroll in their own course")
		}

		enrolled, err := isEnrolled(tx, student.ID, course.ID)
		if err != nil {
			return err
		}
		if enrolled {
			return utils.ConflictErr("already enrolled in this course")
		}

		enrollment = &models.Enrollment{
			StudentID:      student.ID,
			CourseID:       course.ID,
			Status:         models.EnrollmentActive,
			PricePaid:      course.Price,
			LastAccessedAt: &now,
		}
		if err := tx.Create(enrollment).Error; err != nil {
			if isUniqueViolation(err) {
				return utils.ConflictErr("already enrolled in this course")
			}
			return err
		}

		if !course.IsFree() {
			fee := platformFee(course.Price, s.FeePercent)
			desc := fmt.Sprintf("Course: %s", course.Title)
			if _, err := post(tx, ledgerEntry{
				UserID:      student.ID,
				Type:        models.TxCoursePurchase,
				Amount:      -course.Price,
				Description: desc,
				RelatedType: "course",
				RelatedID:   course.ID,
			}); err != nil {
				return err
			}
			if _, err := post(tx, ledgerEntry{
				UserID:      course.TeacherID,
				Type:        models.TxCourseSale,
				Amount:      course.Price - fee,
				Fee:         fee,
				Description: desc,
				RelatedType: "course",
				RelatedID:   course.ID,
			}); err != nil {
				return err
			}
		}

		if _, err := ensureCourseRoom(tx, course.ID); err != nil {
			return err
		}
		enrollment.Course = &course
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := s.DB.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC").
		Find(&enrollments).Error
	return enrollments, err
}
