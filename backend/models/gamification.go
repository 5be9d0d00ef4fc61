package models

const XPPerLevel = 500

const (
	XPSourceLesson = "lesson"
	XPSourceCourse = "course"
	XPSourceQuiz   = "quiz"
)

type UserProgress struct {
	Model
	UserID           uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalXP          int    `gorm:"not null;default:0" json:"total_xp"`
	Level            int    `gorm:"not null;default:1" json:"level"`
	CurrentStreak    int    `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak    int    `gorm:"not null;default:0" json:"longest_streak"`
	LastActivityDate string `json:"last_activity_date"` // YYYY-MM-DD, UTC
	LessonsCompleted int    `json:"lessons_completed"`
	CoursesCompleted int    `json:"courses_completed"`
	QuizzesPassed    int    `json:"quizzes_passed"`
}

// LevelFor returns the level reached with xp points.
func LevelFor(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// XPActivity is unique per (user, source) so a completion event pays out once.
type XPActivity struct {
	Model
	UserID     uint   `gorm:"uniqueIndex:idx_xp_user_source;not null" json:"user_id"`
	SourceType string `gorm:"uniqueIndex:idx_xp_user_source;not null" json:"source_type"`
	SourceID   uint   `gorm:"uniqueIndex:idx_xp_user_source;not null" json:"source_id"`
	Amount     int    `json:"amount"`
	Reason     string `json:"reason"`
}

const (
	BadgeMetricLessons = "lessons_completed"
	BadgeMetricCourses = "courses_completed"
	BadgeMetricQuizzes = "quizzes_passed"
	BadgeMetricStreak  = "current_streak"
	BadgeMetricXP      = "total_xp"
)

type Badge struct {
	Model
	Code        string `gorm:"uniqueIndex;not null" json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Metric      string `json:"metric"`
	Threshold   int    `json:"threshold"`
	IconURL     string `json:"icon_url"`
}

type UserBadge struct {
	Model
	UserID  uint   `gorm:"uniqueIndex:idx_user_badge;not null" json:"user_id"`
	BadgeID uint   `gorm:"uniqueIndex:idx_user_badge;not null" json:"badge_id"`
	Badge   *Badge `json:"badge,omitempty"`
}

// DefaultBadges is the seeded catalogue.
var DefaultBadges = []Badge{
	{Code: "first_lesson", Name: "First Steps", Description: "Complete your first lesson", Metric: BadgeMetricLessons, Threshold: 1},
	{Code: "lesson_streak_10", Name: "Dedicated Learner", Description: "Complete 10 lessons", Metric: BadgeMetricLessons, Threshold: 10},
	{Code: "first_course", Name: "Graduate", Description: "Complete your first course", Metric: BadgeMetricCourses, Threshold: 1},
	{Code: "quiz_master", Name: "Quiz Master", Description: "Pass 5 quizzes", Metric: BadgeMetricQuizzes, Threshold: 5},
	{Code: "streak_7", Name: "On Fire", Description: "Keep a 7-day learning streak", Metric: BadgeMetricStreak, Threshold: 7},
	{Code: "xp_1000", Name: "XP Hunter", Description: "Earn 1000 XP", Metric: BadgeMetricXP, Threshold: 1000},
}

// MetricValue reads the progress counter a badge metric refers to.
func (p *UserProgress) MetricValue(metric string) int {
	switch metric {
	case BadgeMetricLessons:
		return p.LessonsCompleted
	case BadgeMetricCourses:
		return p.CoursesCompleted
	case BadgeMetricQuizzes:
		return p.QuizzesPassed
	case BadgeMetricStreak:
		return p.CurrentStreak
	case BadgeMetricXP:
		return p.TotalXP
	default:
		return 0
	}
}
