package services

import (
	"context"
	"strings"
	"testing"

	"learnity/backend/models"
	"learnity/backend/testutil"
	"learnity/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewsRecomputeRatings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	alice := testutil.CreateUser(t, h.db, models.RoleStudent, "a@example.com", 0)
	bob := testutil.CreateUser(t, h.db, models.RoleStudent, "b@example.com", 0)
	course := testutil.CreateCourse(t, h.db, teacher.ID, testutil.CourseFixture{Sections: []int{1}})
	testutil.Enroll(t, h.db, alice.ID, course.ID)
	testutil.Enroll(t, h.db, bob.ID, course.ID)

	_, err := h.svc.Reviews.Create(ctx, alice.ID, course.ID, ReviewInput{Rating: 5, Comment: "great"})
	require.NoError(t, err)
	r, err := h.svc.Reviews.Create(ctx, bob.ID, course.ID, ReviewInput{Rating: 2})
	require.NoError(t, err)

	reloaded := testutil.ReloadCourse(t, h.db, course.ID)
	assert.Equal(t, 3.5, reloaded.AverageRating)
	assert.Equal(t, 2, reloaded.ReviewCount)

	var profile models.TeacherProfile
	require.NoError(t, h.db.Where("user_id = ?", teacher.ID).First(&profile).Error)
	assert.Equal(t, 3.5, profile.Rating)

	_, err = h.svc.Reviews.Create(ctx, alice.ID, course.ID, ReviewInput{Rating: 4})
	assertCode(t, err, utils.CodeConflict)

	_, err = h.svc.Reviews.Update(ctx, alice.ID, r.ID, ReviewInput{Rating: 1})
	assertCode(t, err, utils.CodeForbidden)

	_, err = h.svc.Reviews.Update(ctx, bob.ID, r.ID, ReviewInput{Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, 4.0, testutil.ReloadCourse(t, h.db, course.ID).AverageRating)

	require.NoError(t, h.svc.Reviews.Delete(ctx, bob, r.ID))
	reloaded = testutil.ReloadCourse(t, h.db, course.ID)
	assert.Equal(t, 5.0, reloaded.AverageRating)
	assert.Equal(t, 1, reloaded.ReviewCount)

	reviews, total, err := h.svc.Reviews.List(ctx, course.ID, utils.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, reviews, 1)
	assert.NotNil(t, reviews[0].User)
}

func TestReviewValidationAndEnrollment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, h.db, models.RoleStudent, "s@example.com", 0)
	course := testutil.CreateCourse(t, h.db, teacher.ID, testutil.CourseFixture{Sections: []int{1}})

	_, err := h.svc.Reviews.Create(ctx, student.ID, course.ID, ReviewInput{Rating: 6})
	assertCode(t, err, utils.CodeValidation)

	_, err = h.svc.Reviews.Create(ctx, student.ID, course.ID, ReviewInput{Rating: 4})
	assertCode(t, err, utils.CodeForbidden)
}

func TestReviewAgainAfterDeleting(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	alice := testutil.CreateUser(t, h.db, models.RoleStudent, "a@example.com", 0)
	course := testutil.CreateCourse(t, h.db, teacher.ID, testutil.CourseFixture{Sections: []int{1}})
	testutil.Enroll(t, h.db, alice.ID, course.ID)

	first, err := h.svc.Reviews.Create(ctx, alice.ID, course.ID, ReviewInput{Rating: 2})
	require.NoError(t, err)
	require.NoError(t, h.svc.Reviews.Delete(ctx, alice, first.ID))

	second, err := h.svc.Reviews.Create(ctx, alice.ID, course.ID, ReviewInput{Rating: 5, Comment: "changed my mind"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	reloaded := testutil.ReloadCourse(t, h.db, course.ID)
	assert.Equal(t, 5.0, reloaded.AverageRating)
	assert.Equal(t, 1, reloaded.ReviewCount)
}

func TestReviewCommentLimitCountsCharacters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, h.db, models.RoleStudent, "s@example.com", 0)
	course := testutil.CreateCourse(t, h.db, teacher.ID, testutil.CourseFixture{Sections: []int{1}})
	testutil.Enroll(t, h.db, student.ID, course.ID)

	_, err := h.svc.Reviews.Create(ctx, student.ID, course.ID, ReviewInput{Rating: 4, Comment: strings.Repeat("ж", 2001)})
	assertCode(t, err, utils.CodeValidation)

	_, err = h.svc.Reviews.Create(ctx, student.ID, course.ID, ReviewInput{Rating: 4, Comment: strings.Repeat("ж", 2000)})
	require.NoError(t, err)
}

func TestAdminDeleteReviewIsAudited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, h.db, models.RoleStudent, "s@example.com", 0)
	admin := testutil.CreateUser(t, h.db, models.RoleAdmin, "admin@example.com", 0)
	course := testutil.CreateCourse(t, h.db, teacher.ID, testutil.CourseFixture{Sections: []int{1}})
	testutil.Enroll(t, h.db, student.ID, course.ID)

	r, err := h.svc.Reviews.Create(ctx, student.ID, course.ID, ReviewInput{Rating: 1, Comment: "spam"})
	require.NoError(t, err)
	require.NoError(t, h.svc.Reviews.Delete(ctx, admin, r.ID))

	var log models.AuditLog
	require.NoError(t, h.db.Where("action = ?", models.AuditDeleteReview).First(&log).Error)
	assert.Equal(t, admin.ID, log.ActorID)
	assert.Equal(t, r.ID, log.TargetID)
}
