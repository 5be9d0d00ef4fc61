package services

import (
	"context"
	"testing"

	"learnity/backend/models"
	"learnity/backend/testutil"
	"learnity/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollFreeCourse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, h.db, models.RoleStudent, "s@example.com", 0)
	course := testutil.CreateCourse(t, h.db, teacher.ID, testutil.CourseFixture{Sections: []int{1}})

	e, err := h.svc.Enrollment.Enroll(ctx, student, course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentActive, e.Status)

	var room models.CourseRoom
	require.NoError(t, h.db.Where("course_id = ?", course.ID).First(&room).Error)
	assert.NotEmpty(t, room.RoomID)

	_, err = h.svc.Enrollment.Enroll(ctx, student, course.ID)
	assertCode(t, err, utils.CodeConflict)
}

func TestEnrollPaidCourseMovesMoney(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, h.db, models.RoleStudent, "s@example.com", 10000)
	course := testutil.CreateCourse(t, h.db, teacher.ID, testutil.CourseFixture{Price: 4000, Sections: []int{1}})

	e, err := h.svc.Enrollment.Enroll(ctx, student, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), e.PricePaid)
	assert.Equal(t, int64(6000), testutil.Balance(t, h.db, student.ID))
	assert.Equal(t, int64(3600), testutil.Balance(t, h.db, teacher.ID))

	var sale models.Transaction
	require.NoError(t, h.db.Where("user_id = ? AND type = ?", teacher.ID, models.TxCourseSale).First(&sale).Error)
	assert.Equal(t, int64(400), sale.Fee)
}

func TestEnrollInsufficientFundsRollsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, h.db, models.RoleStudent, "s@example.com", 1000)
	course := testutil.CreateCourse(t, h.db, teacher.ID, testutil.CourseFixture{Price: 4000, Sections: []int{1}})

	_, err := h.svc.Enrollment.Enroll(ctx, student, course.ID)
	assertCode(t, err, utils.CodeInsufficientFunds)

	var count int64
	require.NoError(t, h.db.Model(&models.Enrollment{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, int64(1000), testutil.Balance(t, h.db, student.ID))
}

func TestEnrollRejectsDraftAndOwnCourse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, h.db, models.RoleStudent, "s@example.com", 0)
	draft := testutil.CreateCourse(t, h.db, teacher.ID, testutil.CourseFixture{Status: models.CourseDraft, Sections: []int{1}})
	published := testutil.CreateCourse(t, h.db, teacher.ID, testutil.CourseFixture{Sections: []int{1}})

	_, err := h.svc.Enrollment.Enroll(ctx, student, draft.ID)
	assertCode(t, err, utils.CodeNotFound)

	_, err = h.svc.Enrollment.Enroll(ctx, teacher, published.ID)
	assertCode(t, err, utils.CodeForbidden)
}
