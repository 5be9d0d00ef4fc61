package models

// Review is unique per (course, user).
type Review struct {
	Model
	CourseID uint   `gorm:"uniqueIndex:idx_review_course_user;not null" json:"course_id"`
	UserID   uint   `gorm:"uniqueIndex:idx_review_course_user;not null" json:"user_id"`
	User     *User  `json:"user,omitempty"`
	Rating   int    `gorm:"not null;check:rating>=1 AND rating<=5" json:"rating"`
	Comment  string `json:"comment"`
}
