package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"learnity/backend/models"
	"learnity/backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SectionUnlockPercent = 80
	AutoCompletePercent  = 90
	CourseCompletionXP   = 100
)

type ProgressService struct {
	DB    *gorm.DB
	Board *Leaderboard
	Now   func() time.Time
}

// LessonOutcome is the result of recording watch time or completing a lesson.
type LessonOutcome struct {
	Progress         *models.LessonProgress `json:"progress"`
	AlreadyCompleted bool                   `json:"already_completed"`
	JustCompleted    bool                   `json:"just_completed"`
	ProgressPercent  float64                `json:"progress_percent"`
	CourseCompleted  bool                   `json:"course_completed"`
	Certificate      *models.Certificate    `json:"certificate,omitempty"`
	Reward           *Reward                `json:"reward,omitempty"`
}

type CourseProgress struct {
	CourseID         uint              `json:"course_id"`
	Status           string            `json:"status"`
	ProgressPercent  float64           `json:"progress_percent"`
	CompletedLessons int               `json:"completed_lessons"`
	TotalLessons     int               `json:"total_lessons"`
	Sections         []SectionProgress `json:"sections"`
}

type SectionProgress struct {
	SectionID uint          `json:"section_id"`
	Title     string        `json:"title"`
	Position  int           `json:"position"`
	Unlocked  bool          `json:"unlocked"`
	Completed int           `json:"completed"`
	Total     int           `json:"total"`
	Percent   float64       `json:"percent"`
	Lessons   []LessonState `json:"lessons"`
}

type LessonState struct {
	LessonID        uint   `json:"lesson_id"`
	Title           string `json:"title"`
	Position        int    `json:"position"`
	DurationSeconds int    `json:"duration_seconds"`
	WatchedSeconds  int    `json:"watched_seconds"`
	Completed       bool   `json:"completed"`
}

// SectionUnlocks reports for each section, in order, whether it is open.
// The first section is always open; later ones open once the previous section
// reaches SectionUnlockPercent of its lessons completed. Empty sections count as complete.
// Sections positioned at or below unlockedPosition stay open whatever the current counts.
func SectionUnlocks(sections []models.Section, completed map[uint]bool, unlockedPosition int) []bool {
	unlocked := make([]bool, len(sections))
	for i, section := range sections {
		if i == 0 || section.Position <= unlockedPosition {
			unlocked[i] = true
			continue
		}
		prev := sections[i-1]
		done := 0
		for _, l := range prev.Lessons {
			if completed[l.ID] {
				done++
			}
		}
		total := len(prev.Lessons)
		unlocked[i] = unlocked[i-1] && (total == 0 || done*100 >= total*SectionUnlockPercent)
	}
	return unlocked
}

// highestUnlocked is the largest position among open sections.
func highestUnlocked(sections []models.Section, unlocks []bool) int {
	high := 0
	for i, section := range sections {
		if unlocks[i] && section.Position > high {
			high = section.Position
		}
	}
	return high
}

func loadCourseTree(tx *gorm.DB, courseID uint) (*models.Course, error) {
	var course models.Course
	err := tx.
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Preload("Sections.Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		First(&course, courseID).Error
	if err != nil {
		return nil, notFound(err, "course")
	}
	return &course, nil
}

func completedLessons(tx *gorm.DB, userID, courseID uint) (map[uint]bool, error) {
	var ids []uint
	if err := tx.Model(&models.LessonProgress{}).
		Where("user_id = ? AND course_id = ? AND completed = ?", userID, courseID, true).
		Pluck("lesson_id", &ids).Error; err != nil {
		return nil, err
	}
	done := make(map[uint]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}
	return done, nil
}

func countLessons(course *models.Course, completed map[uint]bool) (done, total int) {
	for _, s := range course.Sections {
		for _, l := range s.Lessons {
			total++
			if completed[l.ID] {
				done++
			}
		}
	}
	return done, total
}

func ensureLessonUnlocked(course *models.Course, completed map[uint]bool, unlockedPosition int, lesson *models.Lesson) error {
	unlocks := SectionUnlocks(course.Sections, completed, unlockedPosition)
	for i, s := range course.Sections {
		if s.ID == lesson.SectionID {
			if !unlocks[i] {
				return utils.LessonLockedErr()
			}
			return nil
		}
	}
	return utils.NotFoundErr("section")
}

func requireEnrollment(tx *gorm.DB, userID, courseID uint) (*models.Enrollment, error) {
	var e models.Enrollment
	err := tx.Where("student_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ForbiddenErr("enroll in the course first")
		}
		return nil, err
	}
	return &e, nil
}

func ensureLessonProgress(tx *gorm.DB, userID uint, lesson *models.Lesson) (*models.LessonProgress, error) {
	lp := models.LessonProgress{}
	err := tx.Where(models.LessonProgress{UserID: userID, LessonID: lesson.ID}).
		Attrs(models.LessonProgress{CourseID: lesson.CourseID}).
		FirstOrCreate(&lp).Error
	if err != nil {
		return nil, err
	}
	return &lp, nil
}

func issueCertificate(tx *gorm.DB, userID, courseID uint, now time.Time) (*models.Certificate, error) {
	cert := models.Certificate{}
	err := tx.Where(models.Certificate{UserID: userID, CourseID: courseID}).
		Attrs(models.Certificate{Number: certificateNumber(), IssuedAt: now}).
		FirstOrCreate(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func certificateNumber() string {
	return "LRN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// lessonContext holds everything the guards loaded for a lesson request.
type lessonContext struct {
	lesson     models.Lesson
	course     *models.Course
	enrollment *models.Enrollment
	completed  map[uint]bool
	progress   *models.LessonProgress
}

func (s *ProgressService) prepare(tx *gorm.DB, userID, lessonID uint) (*lessonContext, error) {
	lc := &lessonContext{}
	if err := tx.First(&lc.lesson, lessonID).Error; err != nil {
		return nil, notFound(err, "lesson")
	}

	var err error
	if lc.enrollment, err = requireEnrollment(tx, userID, lc.lesson.CourseID); err != nil {
		return nil, err
	}
	if lc.course, err = loadCourseTree(tx, lc.lesson.CourseID); err != nil {
		return nil, err
	}
	if lc.completed, err = completedLessons(tx, userID, lc.lesson.CourseID); err != nil {
		return nil, err
	}
	if err := ensureLessonUnlocked(lc.course, lc.completed, lc.enrollment.UnlockedPosition, &lc.lesson); err != nil {
		return nil, err
	}
	if lc.progress, err = ensureLessonProgress(tx, userID, &lc.lesson); err != nil {
		return nil, err
	}
	return lc, nil
}

// markCompleted flips the lesson to completed once and applies every consequence of a first completion.
func (s *ProgressService) markCompleted(tx *gorm.DB, userID uint, lc *lessonContext, watched int, now time.Time) (*LessonOutcome, error) {
	out := &LessonOutcome{Progress: lc.progress}

	res := tx.Model(&models.LessonProgress{}).
		Where("id = ? AND completed = ?", lc.progress.ID, false).
		Updates(map[string]interface{}{
			"completed":       true,
			"completed_at":    now,
			"watched_seconds": watched,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		out.AlreadyCompleted = true
		done, total := countLessons(lc.course, lc.completed)
		out.ProgressPercent = percent(done, total)
		return out, tx.First(out.Progress, lc.progress.ID).Error
	}
	out.JustCompleted = true
	lc.completed[lc.lesson.ID] = true

	reward := &Reward{}
	awarded, err := awardXP(tx, userID, models.XPSourceLesson, lc.lesson.ID, lc.lesson.XPReward, "lesson_completed")
	if err != nil {
		return nil, err
	}
	if awarded {
		reward.XPAwarded += lc.lesson.XPReward
	}
	if err := incrementCounter(tx, userID, models.BadgeMetricLessons); err != nil {
		return nil, err
	}
	if err := recordActivity(tx, userID, now); err != nil {
		return nil, err
	}

	done, total := countLessons(lc.course, lc.completed)
	out.ProgressPercent = percent(done, total)
	if err := tx.Model(&models.Enrollment{}).
		Where("id = ?", lc.enrollment.ID).
		Updates(map[string]interface{}{"progress_percent": out.ProgressPercent, "last_accessed_at": now}).Error; err != nil {
		return nil, err
	}
	unlocks := SectionUnlocks(lc.course.Sections, lc.completed, lc.enrollment.UnlockedPosition)
	if high := highestUnlocked(lc.course.Sections, unlocks); high > lc.enrollment.UnlockedPosition {
		if err := tx.Model(&models.Enrollment{}).
			Where("id = ? AND unlocked_position < ?", lc.enrollment.ID, high).
			UpdateColumn("unlocked_position", high).Error; err != nil {
			return nil, err
		}
		lc.enrollment.UnlockedPosition = high
	}

	if total > 0 && done == total {
		res := tx.Model(&models.Enrollment{}).
			Where("id = ? AND status <> ?", lc.enrollment.ID, models.EnrollmentCompleted).
			Updates(map[string]interface{}{"status": models.EnrollmentCompleted, "completed_at": now})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			out.CourseCompleted = true
			awarded, err := awardXP(tx, userID, models.XPSourceCourse, lc.course.ID, CourseCompletionXP, "course_completed")
			if err != nil {
				return nil, err
			}
			if awarded {
				reward.XPAwarded += CourseCompletionXP
				if err := incrementCounter(tx, userID, models.BadgeMetricCourses); err != nil {
					return nil, err
				}
			}
			if out.Certificate, err = issueCertificate(tx, userID, lc.course.ID, now); err != nil {
				return nil, err
			}
		}
	}

	if err := settle(tx, userID, reward); err != nil {
		return nil, err
	}
	out.Reward = reward
	if err := tx.First(out.Progress, lc.progress.ID).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Complete marks a lesson completed. Repeating it is a no-op reported as already completed.
func (s *ProgressService) Complete(ctx context.Context, userID, lessonID uint) (*LessonOutcome, error) {
	now := nowUTC(s.Now)
	var out *LessonOutcome
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lc, err := s.prepare(tx, userID, lessonID)
		if err != nil {
			return err
		}
		watched := lc.progress.WatchedSeconds
		if lc.lesson.DurationSeconds > watched {
			watched = lc.lesson.DurationSeconds
		}
		out, err = s.markCompleted(tx, userID, lc, watched, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out.JustCompleted {
		s.Board.refresh(ctx, userID)
	}
	return out, nil
}

// RecordWatch stores the furthest watched position and auto-completes near the end of the video.
func (s *ProgressService) RecordWatch(ctx context.Context, userID, lessonID uint, watchedSeconds int) (*LessonOutcome, error) {
	if watchedSeconds < 0 {
		return nil, utils.ValidationErr("watched_seconds must not be negative")
	}
	now := nowUTC(s.Now)
	var out *LessonOutcome
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lc, err := s.prepare(tx, userID, lessonID)
		if err != nil {
			return err
		}

		watched := lc.progress.WatchedSeconds
		if watchedSeconds > watched {
			watched = watchedSeconds
		}
		duration := lc.lesson.DurationSeconds
		if duration > 0 && watched > duration {
			watched = duration
		}

		if !lc.progress.Completed && duration > 0 && watched*100 >= duration*AutoCompletePercent {
			out, err = s.markCompleted(tx, userID, lc, watched, now)
			return err
		}

		if err := tx.Model(&models.LessonProgress{}).
			Where("id = ? AND watched_seconds < ?", lc.progress.ID, watched).
			UpdateColumn("watched_seconds", watched).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Enrollment{}).
			Where("id = ?", lc.enrollment.ID).
			UpdateColumn("last_accessed_at", now).Error; err != nil {
			return err
		}
		if err := tx.First(lc.progress, lc.progress.ID).Error; err != nil {
			return err
		}

		done, total := countLessons(lc.course, lc.completed)
		out = &LessonOutcome{
			Progress:         lc.progress,
			AlreadyCompleted: lc.progress.Completed,
			ProgressPercent:  percent(done, total),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.JustCompleted {
		s.Board.refresh(ctx, userID)
	}
	return out, nil
}

// CourseProgress is the per-section view of a student's progress through a course.
func (s *ProgressService) CourseProgress(ctx context.Context, userID, courseID uint) (*CourseProgress, error) {
	db := s.DB.WithContext(ctx)
	enrollment, err := requireEnrollment(db, userID, courseID)
	if err != nil {
		return nil, err
	}
	course, err := loadCourseTree(db, courseID)
	if err != nil {
		return nil, err
	}

	var rows []models.LessonProgress
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&rows).Error; err != nil {
		return nil, err
	}
	byLesson := make(map[uint]models.LessonProgress, len(rows))
	completed := make(map[uint]bool, len(rows))
	for _, r := range rows {
		byLesson[r.LessonID] = r
		if r.Completed {
			completed[r.LessonID] = true
		}
	}

	unlocks := SectionUnlocks(course.Sections, completed, enrollment.UnlockedPosition)
	view := &CourseProgress{CourseID: courseID, Status: enrollment.Status}
	for i, section := range course.Sections {
		sp := SectionProgress{
			SectionID: section.ID,
			Title:     section.Title,
			Position:  section.Position,
			Unlocked:  unlocks[i],
			Total:     len(section.Lessons),
		}
		for _, lesson := range section.Lessons {
			lp := byLesson[lesson.ID]
			if lp.Completed {
				sp.Completed++
			}
			sp.Lessons = append(sp.Lessons, LessonState{
				LessonID:        lesson.ID,
				Title:           lesson.Title,
				Position:        lesson.Position,
				DurationSeconds: lesson.DurationSeconds,
				WatchedSeconds:  lp.WatchedSeconds,
				Completed:       lp.Completed,
			})
		}
		sp.Percent = percent(sp.Completed, sp.Total)
		view.CompletedLessons += sp.Completed
		view.TotalLessons += sp.Total
		view.Sections = append(view.Sections, sp)
	}
	view.ProgressPercent = percent(view.CompletedLessons, view.TotalLessons)
	return view, nil
}
