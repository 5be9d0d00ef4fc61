package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

const (
	DefaultPassingScore = 70
	DefaultQuizXP       = 50
)

type Quiz struct {
	Model
	CourseID     uint       `gorm:"index;not null" json:"course_id"`
	LessonID     *uint      `gorm:"index" json:"lesson_id"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `json:"description"`
	PassingScore int        `gorm:"not null" json:"passing_score"` // percent
	XPReward     int        `json:"xp_reward"`
	MaxAttempts  int        `json:"max_attempts"` // 0 means unlimited
	Questions    []Question `json:"questions,omitempty"`
}

type Question struct {
	Model
	QuizID        uint           `gorm:"index;not null" json:"quiz_id"`
	Prompt        string         `gorm:"not null" json:"prompt"`
	Options       datatypes.JSON `json:"options"` // JSON array of strings
	CorrectOption int            `json:"correct_option"`
	Points        int            `gorm:"not null;default:1" json:"points"`
	Position      int            `json:"position"`
}

// OptionList decodes the stored options.
func (q *Question) OptionList() []string {
	var options []string
	if len(q.Options) == 0 {
		return options
	}
	_ = json.Unmarshal(q.Options, &options)
	return options
}

func (q *Question) SetOptions(options []string) error {
	raw, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.Options = datatypes.JSON(raw)
	return nil
}

// QuizAttempt numbers are unique per (quiz, user) so concurrent submissions cannot share a slot.
type QuizAttempt struct {
	Model
	QuizID        uint           `gorm:"uniqueIndex:idx_quiz_attempt_number;not null" json:"quiz_id"`
	UserID        uint           `gorm:"uniqueIndex:idx_quiz_attempt_number;index;not null" json:"user_id"`
	AttemptNumber int            `gorm:"uniqueIndex:idx_quiz_attempt_number;not null" json:"attempt_number"`
	Score         float64        `json:"score"`
	EarnedPoints  int            `json:"earned_points"`
	TotalPoints   int            `json:"total_points"`
	Passed        bool           `json:"passed"`
	Answers       datatypes.JSON `json:"answers"`
}
