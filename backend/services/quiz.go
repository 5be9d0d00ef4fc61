package services

import (
	"context"
	"encoding/json"
	"time"

	"learnity/backend/models"
	"learnity/backend/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizService struct {
	DB    *gorm.DB
	Board *Leaderboard
	Now   func() time.Time
}

type QuestionResult struct {
	QuestionID    uint `json:"question_id"`
	Selected      *int `json:"selected"`
	CorrectOption int  `json:"correct_option"`
	Correct       bool `json:"correct"`
	Points        int  `json:"points"`
}

type Score struct {
	Earned  int              `json:"earned_points"`
	Total   int              `json:"total_points"`
	Percent float64          `json:"score"`
	Results []QuestionResult `json:"results"`
}

type AttemptResult struct {
	Attempt      *models.QuizAttempt `json:"attempt"`
	Results      []QuestionResult    `json:"results"`
	AttemptsLeft *int                `json:"attempts_left"`
	Reward       *Reward             `json:"reward,omitempty"`
}

// PublicQuestion hides the correct answer.
type PublicQuestion struct {
	ID       uint     `json:"id"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Points   int      `json:"points"`
	Position int      `json:"position"`
}

type PublicQuiz struct {
	ID           uint             `json:"id"`
	CourseID     uint             `json:"course_id"`
	LessonID     *uint            `json:"lesson_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	PassingScore int              `json:"passing_score"`
	XPReward     int              `json:"xp_reward"`
	MaxAttempts  int              `json:"max_attempts"`
	Questions    []PublicQuestion `json:"questions"`
}

func publicQuiz(q *models.Quiz) *PublicQuiz {
	out := &PublicQuiz{
		ID:           q.ID,
		CourseID:     q.CourseID,
		LessonID:     q.LessonID,
		Title:        q.Title,
		Description:  q.Description,
		PassingScore: q.PassingScore,
		XPReward:     q.XPReward,
		MaxAttempts:  q.MaxAttempts,
		Questions:    make([]PublicQuestion, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		out.Questions = append(out.Questions, PublicQuestion{
			ID:       question.ID,
			Prompt:   question.Prompt,
			Options:  question.OptionList(),
			Points:   question.Points,
			Position: question.Position,
		})
	}
	return out
}

// ScoreQuiz grades answers (question id -> option index) against questions.
// The percentage is earned over total points, rounded to two decimals.
func ScoreQuiz(questions []models.Question, answers map[uint]int) Score {
	score := Score{Results: make([]QuestionResult, 0, len(questions))}
	for _, q := range questions {
		r := QuestionResult{QuestionID: q.ID, CorrectOption: q.CorrectOption, Points: q.Points}
		if selected, ok := answers[q.ID]; ok {
			sel := selected
			r.Selected = &sel
			r.Correct = selected == q.CorrectOption
		}
		score.Total += q.Points
		if r.Correct {
			score.Earned += q.Points
		}
		score.Results = append(score.Results, r)
	}
	score.Percent = percent(score.Earned, score.Total)
	return score
}

func loadQuiz(tx *gorm.DB, quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := tx.Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		First(&quiz, quizID).Error
	if err != nil {
		return nil, notFound(err, "quiz")
	}
	return &quiz, nil
}

// Get returns the full quiz for its course owner or an admin and the public form for enrolled students.
func (s *QuizService) Get(ctx context.Context, viewer *models.User, quizID uint) (interface{}, error) {
	db := s.DB.WithContext(ctx)
	quiz, err := loadQuiz(db, quizID)
	if err != nil {
		return nil, err
	}

	var course models.Course
	if err := db.First(&course, quiz.CourseID).Error; err != nil {
		return nil, notFound(err, "course")
	}
	if canManageCourse(viewer, &course) {
		return quiz, nil
	}
	if _, err := requireEnrollment(db, viewer.ID, quiz.CourseID); err != nil {
		return nil, err
	}
	return publicQuiz(quiz), nil
}

// Submit scores one attempt. The attempt limit is checked and the attempt numbered inside
// the same transaction; the unique attempt number rejects a concurrent duplicate.
func (s *QuizService) Submit(ctx context.Context, userID, quizID uint, answers map[uint]int) (*AttemptResult, error) {
	now := nowUTC(s.Now)
	var result *AttemptResult

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quiz, err := loadQuiz(tx, quizID)
		if err != nil {
			return err
		}
		if _, err := requireEnrollment(tx, userID, quiz.CourseID); err != nil {
			return err
		}
		if len(quiz.Questions) == 0 {
			return utils.ValidationErr("quiz has no questions")
		}

		var used int64
		if err := tx.Model(&models.QuizAttempt{}).
			Where("quiz_id = ? AND user_id = ?", quiz.ID, userID).
			Count(&used).Error; err != nil {
			return err
		}
		if quiz.MaxAttempts > 0 && int(used) >= quiz.MaxAttempts {
			return utils.AttemptsExhaustedErr()
		}

		var last int
		if err := tx.Model(&models.QuizAttempt{}).
			Where("quiz_id = ? AND user_id = ?", quiz.ID, userID).
			Select("COALESCE(MAX(attempt_number), 0)").
			Scan(&last).Error; err != nil {
			return err
		}

		score := ScoreQuiz(quiz.Questions, answers)
		raw, err := json.Marshal(answers)
		if err != nil {
			return err
		}
		attempt := &models.QuizAttempt{
			QuizID:        quiz.ID,
			UserID:        userID,
			AttemptNumber: last + 1,
			Score:         score.Percent,
			EarnedPoints:  score.Earned,
			TotalPoints:   score.Total,
			Passed:        score.Percent >= float64(quiz.PassingScore),
			Answers:       datatypes.JSON(raw),
		}
		if err := tx.Create(attempt).Error; err != nil {
			if isUniqueViolation(err) {
				return utils.ConflictErr("another attempt is being submitted")
			}
			return err
		}

		result = &AttemptResult{Attempt: attempt, Results: score.Results}
		if quiz.MaxAttempts > 0 {
			left := quiz.MaxAttempts - int(used) - 1
			result.AttemptsLeft = &left
		}

		if !attempt.Passed {
			return nil
		}
		reward := &Reward{}
		awarded, err := awardXP(tx, userID, models.XPSourceQuiz, quiz.ID, quiz.XPReward, "quiz_passed")
		if err != nil {
			return err
		}
		if awarded {
			reward.XPAwarded = quiz.XPReward
			if err := incrementCounter(tx, userID, models.BadgeMetricQuizzes); err != nil {
				return err
			}
		}
		if err := recordActivity(tx, userID, now); err != nil {
			return err
		}
		if err := settle(tx, userID, reward); err != nil {
			return err
		}
		result.Reward = reward
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Reward != nil && result.Reward.XPAwarded > 0 {
		s.Board.refresh(ctx, userID)
	}
	return result, nil
}

func (s *QuizService) Attempts(ctx context.Context, userID, quizID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := s.DB.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("attempt_number DESC").
		Find(&attempts).Error
	return attempts, err
}
