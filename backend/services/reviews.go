package services

import (
	"context"
	"unicode/utf8"

	"learnity/backend/models"
	"learnity/backend/utils"

	"gorm.io/gorm"
)

type ReviewService struct {
	DB *gorm.DB
}

type ReviewInput struct {
	Rating  int
	Comment string
}

type ratingAggregate struct {
	Average float64
	Count   int64
}

// recomputeRatings refreshes the course average and the teacher's overall rating.
func recomputeRatings(tx *gorm.DB, courseID uint) error {
	var agg ratingAggregate
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("course_id = ?", courseID).
		Scan(&agg).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Course{}).
		Where("id = ?", courseID).
		UpdateColumns(map[string]interface{}{
			"average_rating": round2(agg.Average),
			"review_count":   agg.Count,
		}).Error; err != nil {
		return err
	}

	var course models.Course
	if err := tx.Unscoped().First(&course, courseID).Error; err != nil {
		return err
	}
	var teacherAgg ratingAggregate
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(reviews.rating), 0) AS average, COUNT(*) AS count").
		Joins("JOIN courses ON courses.id = reviews.course_id AND courses.deleted_at IS NULL").
		Where("courses.teacher_id = ?", course.TeacherID).
		Scan(&teacherAgg).Error; err != nil {
		return err
	}
	return tx.Model(&models.TeacherProfile{}).
		Where("user_id = ?", course.TeacherID).
		UpdateColumn("rating", round2(teacherAgg.Average)).Error
}

func validateReview(in ReviewInput) error {
	if in.Rating < 1 || in.Rating > 5 {
		return utils.ValidationErr("rating must be between 1 and 5")
	}
	if utf8.RuneCountInString(in.Comment) > 2000 {
		return utils.ValidationErr("comment must be at most 2000 characters")
	}
	return nil
}

func (s *ReviewService) Create(ctx context.Context, userID, courseID uint, in ReviewInput) (*models.Review, error) {
	if err := validateReview(in); err != nil {
		return nil, err
	}
	review := &models.Review{CourseID: courseID, UserID: userID, Rating: in.Rating, Comment: in.Comment}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Course{}, courseID).Error; err != nil {
			return notFound(err, "course")
		}
		if _, err := requireEnrollment(tx, userID, courseID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.Review{}).Where("course_id = ? AND user_id = ?", courseID, userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return utils.ConflictErr("you have already reviewed this course")
		}
		if err := tx.Create(review).Error; err != nil {
			if isUniqueViolation(err) {
				return utils.ConflictErr("you have already reviewed this course")
			}
			return err
		}
		return recomputeRatings(tx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, userID, reviewID uint, in ReviewInput) (*models.Review, error) {
	if err := validateReview(in); err != nil {
		return nil, err
	}
	var review models.Review
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, reviewID).Error; err != nil {
			return notFound(err, "review")
		}
		if review.UserID != userID {
			return utils.ForbiddenErr("only the author can edit this review")
		}
		if err := tx.Model(&review).Updates(map[string]interface{}{"rating": in.Rating, "comment": in.Comment}).Error; err != nil {
			return err
		}
		return recomputeRatings(tx, review.CourseID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete removes a review by its author or an admin; admin removals are audited.
func (s *ReviewService) Delete(ctx context.Context, actor *models.User, reviewID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, reviewID).Error; err != nil {
			return notFound(err, "review")
		}
		if review.UserID != actor.ID && !actor.IsAdmin() {
			return utils.ForbiddenErr("only the author or an admin can delete this review")
		}
		if err := tx.Unscoped().Delete(&review).Error; err != nil {
			return err
		}
		if review.UserID != actor.ID {
			if err := writeAudit(tx, actor.ID, models.AuditDeleteReview, "review", review.ID, map[string]interface{}{
				"course_id": review.CourseID,
				"author_id": review.UserID,
			}); err != nil {
				return err
			}
		}
		return recomputeRatings(tx, review.CourseID)
	})
}

func (s *ReviewService) List(ctx context.Context, courseID uint, page utils.Page) ([]models.Review, int64, error) {
	var (
		reviews []models.Review
		total   int64
	)
	q := s.DB.WithContext(ctx).Model(&models.Review{}).Where("course_id = ?", courseID).Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("User").Order("created_at DESC, id DESC").Scopes(page.Scope).Find(&reviews).Error
	return reviews, total, err
}
