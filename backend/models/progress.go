package models

import "time"

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
)

// Enrollment is unique per (student, course).
// UnlockedPosition is the highest section position ever opened for the student and never goes down.
type Enrollment struct {
	Model
	StudentID        uint       `gorm:"uniqueIndex:idx_enrollment_student_course;not null" json:"student_id"`
	CourseID         uint       `gorm:"uniqueIndex:idx_enrollment_student_course;index;not null" json:"course_id"`
	Course           *Course    `json:"course,omitempty"`
	Status           string     `gorm:"not null;default:active" json:"status"`
	ProgressPercent  float64    `json:"progress_percent"`
	UnlockedPosition int        `gorm:"not null;default:0" json:"unlocked_position"`
	PricePaid        int64      `json:"price_paid"`
	LastAccessedAt   *time.Time `json:"last_accessed_at"`
	CompletedAt      *time.Time `json:"completed_at"`
}

type LessonProgress struct {
	Model
	UserID         uint       `gorm:"uniqueIndex:idx_lesson_progress_user_lesson;not null" json:"user_id"`
	LessonID       uint       `gorm:"uniqueIndex:idx_lesson_progress_user_lesson;not null" json:"lesson_id"`
	CourseID       uint       `gorm:"index;not null" json:"course_id"`
	WatchedSeconds int        `json:"watched_seconds"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at"`
}

type Certificate struct {
	Model
	UserID   uint      `gorm:"uniqueIndex:idx_certificate_user_course;not null" json:"user_id"`
	CourseID uint      `gorm:"uniqueIndex:idx_certificate_user_course;not null" json:"course_id"`
	Course   *Course   `json:"course,omitempty"`
	Number   string    `gorm:"uniqueIndex;not null" json:"number"`
	IssuedAt time.Time `json:"issued_at"`
}
