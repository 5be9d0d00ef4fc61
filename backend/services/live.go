package services

import (
	"context"
	"sort"
	"time"

	"learnity/backend/models"
	"learnity/backend/utils"

	"gorm.io/gorm"
)

// JoinWindow is how early before the start a live session can be joined.
const JoinWindow = 15 * time.Minute

type LiveService struct {
	DB           *gorm.DB
	VideoBaseURL string
	Now          func() time.Time
}

type LiveInput struct {
	Title           string
	StartsAt        time.Time
	DurationMinutes int
}

type JoinInfo struct {
	Session *models.LiveSession `json:"session"`
	RoomURL string              `json:"room_url"`
}

// courseAccess loads the course and checks the user is its manager or an enrolled student.
func courseAccess(tx *gorm.DB, user *models.User, courseID uint) (*models.Course, error) {
	var course models.Course
	if err := tx.First(&course, courseID).Error; err != nil {
		return nil, notFound(err, "course")
	}
	if canManageCourse(user, &course) {
		return &course, nil
	}
	if _, err := requireEnrollment(tx, user.ID, courseID); err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *LiveService) Schedule(ctx context.Context, teacher *models.User, courseID uint, in LiveInput) (*models.LiveSession, error) {
	now := nowUTC(s.Now)
	startsAt := in.StartsAt.UTC()
	if err := validateSchedule(startsAt, in.DurationMinutes, now); err != nil {
		return nil, err
	}

	live := &models.LiveSession{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			return notFound(err, "course")
		}
		if !canManageCourse(teacher, &course) {
			return utils.ForbiddenErr("only the course teacher can schedule live sessions")
		}
		room, err := ensureCourseRoom(tx, course.ID)
		if err != nil {
			return err
		}
		*live = models.LiveSession{
			CourseID:        course.ID,
			TeacherID:       course.TeacherID,
			Title:           in.Title,
			RoomID:          room.RoomID,
			StartsAt:        startsAt,
			DurationMinutes: in.DurationMinutes,
			Status:          models.LiveScheduled,
		}
		return tx.Create(live).Error
	})
	if err != nil {
		return nil, err
	}
	return live, nil
}

// Upcoming lists scheduled live sessions of a course that have not ended yet.
func (s *LiveService) Upcoming(ctx context.Context, user *models.User, courseID uint) ([]models.LiveSession, error) {
	db := s.DB.WithContext(ctx)
	if _, err := courseAccess(db, user, courseID); err != nil {
		return nil, err
	}

	var all []models.LiveSession
	if err := db.Where("course_id = ? AND status = ?", courseID, models.LiveScheduled).Find(&all).Error; err != nil {
		return nil, err
	}
	now := nowUTC(s.Now)
	upcoming := make([]models.LiveSession, 0, len(all))
	for _, l := range all {
		if l.EndsAt().After(now) {
			upcoming = append(upcoming, l)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].StartsAt.Before(upcoming[j].StartsAt) })
	return upcoming, nil
}

func (s *LiveService) Join(ctx context.Context, user *models.User, liveID uint) (*JoinInfo, error) {
	db := s.DB.WithContext(ctx)
	var live models.LiveSession
	if err := db.First(&live, liveID).Error; err != nil {
		return nil, notFound(err, "live session")
	}
	if _, err := courseAccess(db, user, live.CourseID); err != nil {
		return nil, err
	}
	if live.Status != models.LiveScheduled {
		return nil, utils.ConflictErr("live session was cancelled")
	}

	now := nowUTC(s.Now)
	if now.Before(live.StartsAt.Add(-JoinWindow)) {
		return nil, utils.ForbiddenErr("live session is not open yet")
	}
	if !now.Before(live.EndsAt()) {
		return nil, utils.ForbiddenErr("live session has ended")
	}
	return &JoinInfo{Session: &live, RoomURL: s.VideoBaseURL + "/" + live.RoomID}, nil
}

func (s *LiveService) Cancel(ctx context.Context, user *models.User, liveID uint) (*models.LiveSession, error) {
	var live models.LiveSession
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&live, liveID).Error; err != nil {
			return notFound(err, "live session")
		}
		if live.TeacherID != user.ID && !user.IsAdmin() {
			return utils.ForbiddenErr("only the course teacher can cancel this live session")
		}
		res := tx.Model(&models.LiveSession{}).
			Where("id = ? AND status = ?", live.ID, models.LiveScheduled).
			Update("status", models.LiveCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ConflictErr("live session is already cancelled")
		}
		live.Status = models.LiveCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &live, nil
}
