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

func TestLiveSessionJoinWindow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, h.db, models.RoleStudent, "s@example.com", 0)
	outsider := testutil.CreateUser(t, h.db, models.RoleStudent, "o@example.com", 0)
	course := testutil.CreateCourse(t, h.db, teacher.ID, testutil.CourseFixture{Sections: []int{1}})
	testutil.Enroll(t, h.db, student.ID, course.ID)
	start := testStart.Add(2 * time.Hour)

	_, err := h.svc.Live.Schedule(ctx, student, course.ID, LiveInput{Title: "Q&A", StartsAt: start, DurationMinutes: 60})
	assertCode(t, err, utils.CodeForbidden)

	live, err := h.svc.Live.Schedule(ctx, teacher, course.ID, LiveInput{Title: "Q&A", StartsAt: start, DurationMinutes: 60})
	require.NoError(t, err)
	assert.NotEmpty(t, live.RoomID)

	upcoming, err := h.svc.Live.Upcoming(ctx, student, course.ID)
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)

	_, err = h.svc.Live.Join(ctx, student, live.ID)
	assertCode(t, err, utils.CodeForbidden)

	h.setNow(start.Add(-JoinWindow))
	info, err := h.svc.Live.Join(ctx, student, live.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://meet.test/"+live.RoomID, info.RoomURL)

	_, err = h.svc.Live.Join(ctx, outsider, live.ID)
	assertCode(t, err, utils.CodeForbidden)

	h.setNow(start.Add(time.Hour))
	_, err = h.svc.Live.Join(ctx, student, live.ID)
	assertCode(t, err, utils.CodeForbidden)

	upcoming, err = h.svc.Live.Upcoming(ctx, teacher, course.ID)
	require.NoError(t, err)
	assert.Empty(t, upcoming)
}

func TestLiveSessionCancel(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, h.db, models.RoleTeacher, "t@example.com", 0)
	course := testutil.CreateCourse(t, h.db, teacher.ID, testutil.CourseFixture{Sections: []int{1}})

	live, err := h.svc.Live.Schedule(ctx, teacher, course.ID, LiveInput{Title: "Intro", StartsAt: testStart.Add(time.Hour), DurationMinutes: 30})
	require.NoError(t, err)

	cancelled, err := h.svc.Live.Cancel(ctx, teacher, live.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LiveCancelled, cancelled.Status)

	_, err = h.svc.Live.Cancel(ctx, teacher, live.ID)
	assertCode(t, err, utils.CodeConflict)

	h.setNow(testStart.Add(time.Hour))
	_, err = h.svc.Live.Join(ctx, teacher, live.ID)
	assertCode(t, err, utils.CodeConflict)
}
