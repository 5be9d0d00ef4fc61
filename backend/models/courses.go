package models

import "time"

const (
	CourseDraft     = "draft"
	CoursePublished = "published"
	CourseArchived  = "archived"
)

const DefaultLessonXP = 10

type Course struct {
	Model
	TeacherID     uint       `gorm:"index;not null" json:"teacher_id"`
	Teacher       *User      `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Title         string     `gorm:"not null" json:"title"`
	Slug          string     `gorm:"uniqueIndex;not null" json:"slug"`
	ShortDesc     string     `json:"short_desc"`
	Description   string     `json:"description"`
	Category      string     `gorm:"index" json:"category"`
	Level         string     `json:"level"`                           // beginner, intermediate, advanced
	Price         int64      `gorm:"not null;default:0" json:"price"` // cents
	ThumbnailURL  string     `json:"thumbnail_url"`
	Status        string     `gorm:"index;not null;default:draft" json:"status"`
	PublishedAt   *time.Time `json:"published_at"`
	AverageRating float64    `json:"average_rating"`
	ReviewCount   int        `json:"review_count"`
	Sections      []Section  `json:"sections,omitempty"`
}

func (c *Course) IsFree() bool { return c.Price == 0 }

type Section struct {
	Model
	CourseID uint     `gorm:"index;not null" json:"course_id"`
	Title    string   `gorm:"not null" json:"title"`
	Position int      `gorm:"not null" json:"position"`
	Lessons  []Lesson `json:"lessons,omitempty"`
}

type Lesson struct {
	Model
	CourseID        uint   `gorm:"index;not null" json:"course_id"`
	SectionID       uint   `gorm:"index;not null" json:"section_id"`
	Title           string `gorm:"not null" json:"title"`
	Description     string `json:"description"`
	VideoURL        string `json:"video_url,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
	Position        int    `gorm:"not null" json:"position"`
	IsPreview       bool   `json:"is_preview"`
	XPReward        int    `json:"xp_reward"`
}

// CourseRoom is the persistent meeting room shared by a course's live sessions.
type CourseRoom struct {
	Model
	CourseID uint   `gorm:"uniqueIndex;not null" json:"course_id"`
	RoomID   string `gorm:"uniqueIndex;not null" json:"room_id"`
}
