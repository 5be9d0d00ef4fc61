package models

import "time"

const (
	SessionRequested = "requested"
	SessionAccepted  = "accepted"
	SessionDeclined  = "declined"
	SessionCancelled = "cancelled"
	SessionCompleted = "completed"
)

const (
	LiveScheduled = "scheduled"
	LiveCancelled = "cancelled"
)

type TutoringSession struct {
	Model
	StudentID       uint       `gorm:"index;not null" json:"student_id"`
	Student         *User      `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	TeacherID       uint       `gorm:"index;not null" json:"teacher_id"`
	Teacher         *User      `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Subject         string     `gorm:"not null" json:"subject"`
	Notes           string     `json:"notes"`
	StartsAt        time.Time  `gorm:"index;not null" json:"starts_at"`
	DurationMinutes int        `gorm:"not null" json:"duration_minutes"`
	Price           int64      `json:"price"`
	Status          string     `gorm:"index;not null" json:"status"`
	RoomID          string     `json:"room_id,omitempty"`
	MeetingURL      string     `json:"meeting_url,omitempty"`
	CancelledBy     *uint      `json:"cancelled_by,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

func (s *TutoringSession) EndsAt() time.Time {
	return s.StartsAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Overlaps reports whether s and [start, end) intersect.
func (s *TutoringSession) Overlaps(start, end time.Time) bool {
	return s.StartsAt.Before(end) && start.Before(s.EndsAt())
}

type LiveSession struct {
	Model
	CourseID        uint      `gorm:"index;not null" json:"course_id"`
	TeacherID       uint      `gorm:"index;not null" json:"teacher_id"`
	Title           string    `gorm:"not null" json:"title"`
	RoomID          string    `gorm:"not null" json:"room_id"`
	StartsAt        time.Time `gorm:"index;not null" json:"starts_at"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Status          string    `gorm:"not null" json:"status"`
}

func (l *LiveSession) EndsAt() time.Time {
	return l.StartsAt.Add(time.Duration(l.DurationMinutes) * time.Minute)
}
