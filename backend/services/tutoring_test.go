package services

import (
	"context"
	"testing"
	"time"

	"learnity/backend/models"
	"learnity/backend/testutil"
	"learnity/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, h.db, models.RoleStudent, "s@example.com", 10000)
	start := testStart.Add(24 * time.Hour)

	session, err := h.svc.Tutoring.Book(ctx, student, BookingInput{
		TeacherID:       teacher.ID,
		Subject:         "Algebra",
		StartsAt:        start,
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SessionRequested, session.Status)
	assert.Equal(t, int64(3000), session.Price)
	assert.Equal(t, int64(7000), testutil.Balance(t, h.db, student.ID))
	require.Len(t, h.mailer.Sent(), 1)
	assert.Equal(t, teacher.Email, h.mailer.Sent()[0].To)

	accepted, err := h.svc.Tutoring.Accept(ctx, teacher, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAccepted, accepted.Status)
	assert.Contains(t, accepted.MeetingURL, "https://meet.test/")
	assert.Len(t, h.mailer.Sent(), 2)

	_, err = h.svc.Tutoring.Accept(ctx, teacher, session.ID)
	assertCode(t, err, utils.CodeConflict)

	_, err = h.svc.Tutoring.Complete(ctx, teacher, session.ID)
	assertCode(t, err, utils.CodeConflict)

	h.setNow(start.Add(45 * time.Minute))
	completed, err := h.svc.Tutoring.Complete(ctx, teacher, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, completed.Status)
	assert.Equal(t, int64(2700), testutil.Balance(t, h.db, teacher.ID))

	_, err = h.svc.Tutoring.Cancel(ctx, student, session.ID)
	assertCode(t, err, utils.CodeConflict)
}

func TestSessionBookingRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, h.db, models.RoleStudent, "s@example.com", 100000)
	other := testutil.CreateUser(t, h.db, models.RoleStudent, "o@example.com", 100000)
	pending := testutil.CreateUser(t, h.db, models.RolePendingTeacher, "p@example.com", 0)
	start := testStart.Add(2 * time.Hour)

	book := func(u *models.User, teacherID uint, at time.Time, minutes int) error {
		_, err := h.svc.Tutoring.Book(ctx, u, BookingInput{TeacherID: teacherID, Subject: "Math", StartsAt: at, DurationMinutes: minutes})
		return err
	}

	assertCode(t, book(student, teacher.ID, start, 10), utils.CodeValidation)
	assertCode(t, book(student, teacher.ID, start, 241), utils.CodeValidation)
	assertCode(t, book(student, teacher.ID, testStart.Add(-time.Hour), 30), utils.CodeValidation)
	assertCode(t, book(student, pending.ID, start, 30), utils.CodeNotFound)

	require.NoError(t, book(student, teacher.ID, start, 60))
	assertCode(t, book(other, teacher.ID, start.Add(30*time.Minute), 30), utils.CodeConflict)
	assert.NoError(t, book(other, teacher.ID, start.Add(60*time.Minute), 30))
}

func TestSessionInsufficientFunds(t *testing.T) {
	h := newHarness(t)
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, h.db, models.RoleStudent, "s@example.com", 100)

	_, err := h.svc.Tutoring.Book(context.Background(), student, BookingInput{
		TeacherID: teacher.ID, Subject: "Math", StartsAt: testStart.Add(time.Hour), DurationMinutes: 60,
	})
	assertCode(t, err, utils.CodeInsufficientFunds)

	var count int64
	require.NoError(t, h.db.Model(&models.TutoringSession{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeclineAndCancelRefund(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, h.db, models.RoleStudent, "s@example.com", 6000)
	in := BookingInput{TeacherID: teacher.ID, Subject: "Math", StartsAt: testStart.Add(time.Hour), DurationMinutes: 60}

	s1, err := h.svc.Tutoring.Book(ctx, student, in)
	require.NoError(t, err)
	assert.Equal(t, int64(0), testutil.Balance(t, h.db, student.ID))

	_, err = h.svc.Tutoring.Decline(ctx, student, s1.ID)
	assertCode(t, err, utils.CodeForbidden)

	declined, err := h.svc.Tutoring.Decline(ctx, teacher, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionDeclined, declined.Status)
	assert.Equal(t, int64(6000), testutil.Balance(t, h.db, student.ID))

	s2, err := h.svc.Tutoring.Book(ctx, student, in)
	require.NoError(t, err)
	cancelled, err := h.svc.Tutoring.Cancel(ctx, student, s2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, student.ID, *cancelled.CancelledBy)
	assert.Equal(t, int64(6000), testutil.Balance(t, h.db, student.ID))

	sessions, err := h.svc.Tutoring.List(ctx, student, SessionFilter{Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	stranger := testutil.CreateUser(t, h.db, models.RoleStudent, "x@example.com", 0)
	_, err = h.svc.Tutoring.Get(ctx, stranger, s2.ID)
	assertCode(t, err, utils.CodeForbidden)
}

func TestSessionPrice(t *testing.T) {
	assert.Equal(t, int64(6000), SessionPrice(6000, 60))
	assert.Equal(t, int64(1500), SessionPrice(6000, 15))
	assert.Equal(t, int64(24000), SessionPrice(6000, 240))
}
