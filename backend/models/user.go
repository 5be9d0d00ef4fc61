package models

import "time"

const (
	RoleStudent        = "student"
	RoleTeacher        = "teacher"
	RolePendingTeacher = "pending_teacher"
	RoleAdmin          = "admin"
)

const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

type User struct {
	Model
	Name           string          `gorm:"not null" json:"name"`
	Email          string          `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string          `gorm:"not null" json:"-"`
	Role           string          `gorm:"index;not null;default:student" json:"role"` // student, teacher, pending_teacher, admin
	AvatarURL      string          `json:"avatar_url"`
	IsActive       bool            `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt    *time.Time      `json:"last_login_at"`
	StudentProfile *StudentProfile `json:"student_profile,omitempty"`
	TeacherProfile *TeacherProfile `json:"teacher_profile,omitempty"`
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

type StudentProfile struct {
	Model
	UserID     uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio        string `json:"bio"`
	GradeLevel string `json:"grade_level"`
	Interests  string `json:"interests"` // comma-separated topics
}

type TeacherProfile struct {
	Model
	UserID      uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	Headline    string  `json:"headline"`
	Bio         string  `json:"bio"`
	Expertise   string  `json:"expertise"`
	Credentials string  `json:"credentials"`
	HourlyRate  int64   `gorm:"not null;default:0" json:"hourly_rate"` // cents
	Rating      float64 `json:"rating"`
}

// TeacherApplication holds the credentials a pending teacher submitted for admin review.
type TeacherApplication struct {
	Model
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	User            *User      `json:"user,omitempty"`
	Bio             string     `json:"bio"`
	Expertise       string     `json:"expertise"`
	Credentials     string     `json:"credentials"`
	HourlyRate      int64      `json:"hourly_rate"`
	Status          string     `gorm:"index;not null;default:pending" json:"status"`
	ReviewedBy      *uint      `json:"reviewed_by"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}
