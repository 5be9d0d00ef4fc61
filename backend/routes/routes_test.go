package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"learnity/backend/config"
	"learnity/backend/models"
	"learnity/backend/notify"
	"learnity/backend/services"
	"learnity/backend/testutil"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testApp struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		JWTSecret:          "routes-secret",
		JWTExpiration:      time.Hour,
		PlatformFeePercent: 10,
		VideoBaseURL:       "https://meet.test",
	}
	svc := services.New(db, cfg, services.Deps{Mailer: &notify.MemoryMailer{}})

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler(nil)})
	SetupRoutes(app, db, cfg, svc)
	return &testApp{app: app, db: db, cfg: cfg}
}

func (ta *testApp) token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := utils.GenerateJWTToken(u.ID, u.Role, ta.cfg.JWTSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

// call sends a JSON request and decodes the JSON reply.
func (ta *testApp) call(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &result), string(raw))
	}
	return resp.StatusCode, result
}

func data(t *testing.T, result map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := result["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object: %v", result)
	return d
}

func idOf(t *testing.T, obj map[string]interface{}) uint {
	t.Helper()
	id, ok := obj["id"].(float64)
	require.True(t, ok, "missing id in %v", obj)
	return uint(id)
}

func TestHealth(t *testing.T) {
	ta := setupApp(t)
	status, result := ta.call(t, "GET", "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", result["status"])
}

func TestRegisterLoginMe(t *testing.T) {
	ta := setupApp(t)

	status, result := ta.call(t, "POST", "/api/auth/register", "", map[string]interface{}{
		"name":     "Ada",
		"email":    "Ada@Example.com",
		"password": "password123",
		"role":     "student",
	})
	require.Equal(t, fiber.StatusCreated, status, result)
	assert.NotEmpty(t, data(t, result)["token"])

	status, result = ta.call(t, "POST", "/api/auth/register", "", map[string]interface{}{
		"name": "Ada", "email": "ada@example.com", "password": "password123", "role": "student",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, utils.CodeConflict, result["error"])

	status, result = ta.call(t, "POST", "/api/auth/register", "", map[string]interface{}{
		"name": "Bob", "email": "not-an-email", "password": "short", "role": "student",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, utils.CodeValidation, result["error"])
	details, _ := result["details"].(map[string]interface{})
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")

	status, result = ta.call(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, result = ta.call(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "password123",
	})
	require.Equal(t, fiber.StatusOK, status, result)
	token, _ := data(t, result)["token"].(string)
	require.NotEmpty(t, token)

	status, result = ta.call(t, "GET", "/api/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	me := data(t, result)
	assert.Equal(t, "ada@example.com", me["email"])
	assert.Equal(t, models.RoleStudent, me["role"])
	assert.NotContains(t, me, "password_hash")

	status, _ = ta.call(t, "GET", "/api/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestProfileUpdate(t *testing.T) {
	ta := setupApp(t)
	teacher := testutil.CreateUser(t, ta.db, models.RoleTeacher, "t@example.com", 0)

	status, result := ta.call(t, "PUT", "/api/user/profile", ta.token(t, teacher), map[string]interface{}{
		"name":        "Grace",
		"headline":    "Algebra tutor",
		"hourly_rate": 4500,
	})
	require.Equal(t, fiber.StatusOK, status, result)
	profile := data(t, result)
	assert.Equal(t, "Grace", profile["name"])
	tp, _ := profile["teacher_profile"].(map[string]interface{})
	assert.Equal(t, "Algebra tutor", tp["headline"])
	assert.Equal(t, float64(4500), tp["hourly_rate"])

	status, _ = ta.call(t, "PUT", "/api/user/profile", ta.token(t, teacher), map[string]interface{}{"hourly_rate": -1})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

// /api/teachers stays public even though /api/teacher routes are guarded.
func TestTeacherDirectoryIsPublic(t *testing.T) {
	ta := setupApp(t)
	teacher := testutil.CreateUser(t, ta.db, models.RoleTeacher, "t@example.com", 0)
	testutil.CreateCourse(t, ta.db, teacher.ID, testutil.CourseFixture{Title: "Geometry", Sections: []int{1}})

	status, result := ta.call(t, "GET", "/api/teachers", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), result["total"])

	status, result = ta.call(t, "GET", fmt.Sprintf("/api/teachers/%d", teacher.ID), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	courses, _ := data(t, result)["courses"].([]interface{})
	assert.Len(t, courses, 1)

	status, _ = ta.call(t, "GET", "/api/teacher/courses", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestCourseAuthoringFlow(t *testing.T) {
	ta := setupApp(t)
	teacher := testutil.CreateUser(t, ta.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, ta.db, models.RoleStudent, "s@example.com", 0)
	teacherTok, studentTok := ta.token(t, teacher), ta.token(t, student)

	status, _ := ta.call(t, "POST", "/api/teacher/courses", studentTok, map[string]interface{}{"title": "Nope"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, result := ta.call(t, "POST", "/api/teacher/courses", teacherTok, map[string]interface{}{
		"title": "Intro to Go!", "category": "programming", "level": "beginner",
	})
	require.Equal(t, fiber.StatusCreated, status, result)
	course := data(t, result)
	courseID := idOf(t, course)
	assert.Equal(t, "intro-to-go", course["slug"])
	assert.Equal(t, models.CourseDraft, course["status"])

	status, result = ta.call(t, "POST", "/api/teacher/courses", teacherTok, map[string]interface{}{"title": "Intro to Go"})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "intro-to-go-2", data(t, result)["slug"])

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/teacher/courses/%d/publish", courseID), teacherTok, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, utils.CodeValidation, result["error"])

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/teacher/courses/%d/sections", courseID), teacherTok, map[string]string{"title": "Basics"})
	require.Equal(t, fiber.StatusCreated, status, result)
	sectionID := idOf(t, data(t, result))
	assert.Equal(t, float64(1), data(t, result)["position"])

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/teacher/sections/%d/lessons", sectionID), teacherTok, map[string]interface{}{
		"title": "Hello", "video_url": "https://video.example.com/hello", "duration_seconds": 120, "is_preview": true,
	})
	require.Equal(t, fiber.StatusCreated, status, result)
	assert.Equal(t, float64(models.DefaultLessonXP), data(t, result)["xp_reward"])

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/teacher/sections/%d/lessons", sectionID), teacherTok, map[string]interface{}{
		"title": "Types", "video_url": "https://video.example.com/types", "duration_seconds": 300,
	})
	require.Equal(t, fiber.StatusCreated, status, result)
	assert.Equal(t, float64(2), data(t, result)["position"])

	// Draft courses are invisible to students.
	status, _ = ta.call(t, "GET", "/api/courses/intro-to-go", studentTok, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/teacher/courses/%d/publish", courseID), teacherTok, nil)
	require.Equal(t, fiber.StatusOK, status, result)

	status, result = ta.call(t, "GET", "/api/courses?search=intro", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), result["total"])

	status, result = ta.call(t, "GET", "/api/courses/intro-to-go", studentTok, nil)
	require.Equal(t, fiber.StatusOK, status, result)
	shown := data(t, result)["course"].(map[string]interface{})
	lessons := shown["sections"].([]interface{})[0].(map[string]interface{})["lessons"].([]interface{})
	require.Len(t, lessons, 2)
	assert.Equal(t, "https://video.example.com/hello", lessons[0].(map[string]interface{})["video_url"])
	assert.NotContains(t, lessons[1].(map[string]interface{}), "video_url")

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), studentTok, nil)
	require.Equal(t, fiber.StatusCreated, status, result)

	status, result = ta.call(t, "GET", fmt.Sprintf("/api/courses/%d", courseID), studentTok, nil)
	require.Equal(t, fiber.StatusOK, status)
	shown = data(t, result)["course"].(map[string]interface{})
	lessons = shown["sections"].([]interface{})[0].(map[string]interface{})["lessons"].([]interface{})
	assert.Equal(t, "https://video.example.com/types", lessons[1].(map[string]interface{})["video_url"])

	status, result = ta.call(t, "DELETE", fmt.Sprintf("/api/teacher/courses/%d", courseID), teacherTok, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, utils.CodeConflict, result["error"])

	status, result = ta.call(t, "GET", "/api/teacher/courses", teacherTok, nil)
	require.Equal(t, fiber.StatusOK, status)
	mine := result["data"].([]interface{})
	require.Len(t, mine, 2)

	status, result = ta.call(t, "GET", fmt.Sprintf("/api/teacher/courses/%d/analytics", courseID), teacherTok, nil)
	require.Equal(t, fiber.StatusOK, status, result)
	assert.Equal(t, float64(1), data(t, result)["total_students"])
}

func TestPaidEnrollmentCompletionAndCertificate(t *testing.T) {
	ta := setupApp(t)
	teacher := testutil.CreateUser(t, ta.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, ta.db, models.RoleStudent, "s@example.com", 0)
	course := testutil.CreateCourse(t, ta.db, teacher.ID, testutil.CourseFixture{Price: 5000, Sections: []int{1}, Duration: 100})
	studentTok := ta.token(t, student)

	status, result := ta.call(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", course.ID), studentTok, nil)
	assert.Equal(t, fiber.StatusPaymentRequired, status)
	assert.Equal(t, utils.CodeInsufficientFunds, result["error"])

	status, result = ta.call(t, "POST", "/api/wallet/topup", studentTok, map[string]interface{}{
		"amount": 5000, "method": "card", "payment_token": "tok_fail_card",
	})
	assert.Equal(t, fiber.StatusPaymentRequired, status)
	assert.Equal(t, utils.CodePaymentFailed, result["error"])

	status, result = ta.call(t, "POST", "/api/wallet/topup", studentTok, map[string]interface{}{
		"amount": 5000, "method": "card", "payment_token": "tok_visa",
	})
	require.Equal(t, fiber.StatusCreated, status, result)
	assert.Equal(t, float64(5000), data(t, result)["wallet"].(map[string]interface{})["balance"])

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", course.ID), studentTok, nil)
	require.Equal(t, fiber.StatusCreated, status, result)
	assert.Equal(t, int64(0), testutil.Balance(t, ta.db, student.ID))
	assert.Equal(t, int64(4500), testutil.Balance(t, ta.db, teacher.ID))

	status, result = ta.call(t, "GET", "/api/wallet/transactions", studentTok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(3), result["total"])

	lessonID := course.Sections[0].Lessons[0].ID
	status, result = ta.call(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", lessonID), studentTok, map[string]int{"watched_seconds": 95})
	require.Equal(t, fiber.StatusOK, status, result)
	outcome := data(t, result)
	assert.Equal(t, true, outcome["course_completed"])
	cert := outcome["certificate"].(map[string]interface{})
	number, _ := cert["number"].(string)
	assert.Regexp(t, `^LRN-[0-9A-F]{8}$`, number)

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessonID), studentTok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, data(t, result)["already_completed"])

	status, result = ta.call(t, "GET", "/api/certificates/verify/"+number, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, data(t, result)["valid"])

	status, _ = ta.call(t, "GET", "/api/certificates/verify/LRN-00000000", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, result = ta.call(t, "GET", "/api/gamification/me", studentTok, nil)
	require.Equal(t, fiber.StatusOK, status)
	progress := data(t, result)["progress"].(map[string]interface{})
	assert.Equal(t, float64(models.DefaultLessonXP+services.CourseCompletionXP), progress["total_xp"])

	status, result = ta.call(t, "GET", "/api/leaderboard?limit=5", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	board := result["data"].([]interface{})
	require.NotEmpty(t, board)
	assert.Equal(t, float64(student.ID), board[0].(map[string]interface{})["user_id"])

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/courses/%d/reviews", course.ID), studentTok, map[string]interface{}{
		"rating": 4, "comment": "Clear explanations",
	})
	require.Equal(t, fiber.StatusCreated, status, result)

	status, result = ta.call(t, "GET", fmt.Sprintf("/api/courses/%d/reviews", course.ID), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), result["total"])
}

func TestQuizHidesAnswersFromStudents(t *testing.T) {
	ta := setupApp(t)
	teacher := testutil.CreateUser(t, ta.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, ta.db, models.RoleStudent, "s@example.com", 0)
	course := testutil.CreateCourse(t, ta.db, teacher.ID, testutil.CourseFixture{Sections: []int{1}})
	testutil.Enroll(t, ta.db, student.ID, course.ID)
	teacherTok, studentTok := ta.token(t, teacher), ta.token(t, student)

	status, result := ta.call(t, "POST", fmt.Sprintf("/api/teacher/courses/%d/quizzes", course.ID), teacherTok, map[string]interface{}{
		"title": "Checkpoint", "max_attempts": 2,
	})
	require.Equal(t, fiber.StatusCreated, status, result)
	quizID := idOf(t, data(t, result))
	assert.Equal(t, float64(models.DefaultPassingScore), data(t, result)["passing_score"])

	status, _ = ta.call(t, "POST", fmt.Sprintf("/api/teacher/quizzes/%d/questions", quizID), teacherTok, map[string]interface{}{
		"prompt": "2+2?", "options": []string{"3", "4"}, "correct_option": 5,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/teacher/quizzes/%d/questions", quizID), teacherTok, map[string]interface{}{
		"prompt": "2+2?", "options": []string{"3", "4", "5"}, "correct_option": 1,
	})
	require.Equal(t, fiber.StatusCreated, status, result)
	questionID := idOf(t, data(t, result))

	status, result = ta.call(t, "GET", fmt.Sprintf("/api/quizzes/%d", quizID), studentTok, nil)
	require.Equal(t, fiber.StatusOK, status, result)
	questions := data(t, result)["questions"].([]interface{})
	require.Len(t, questions, 1)
	assert.NotContains(t, questions[0].(map[string]interface{}), "correct_option")

	status, result = ta.call(t, "GET", fmt.Sprintf("/api/quizzes/%d", quizID), teacherTok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, data(t, result)["questions"].([]interface{})[0].(map[string]interface{}), "correct_option")

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/quizzes/%d/attempts", quizID), studentTok, map[string]interface{}{
		"answers": map[string]int{fmt.Sprint(questionID): 1},
	})
	require.Equal(t, fiber.StatusCreated, status, result)
	attempt := data(t, result)["attempt"].(map[string]interface{})
	assert.Equal(t, true, attempt["passed"])
	assert.Equal(t, float64(100), attempt["score"])
	assert.Equal(t, float64(1), data(t, result)["attempts_left"])

	status, result = ta.call(t, "GET", fmt.Sprintf("/api/quizzes/%d/attempts", quizID), studentTok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, result["data"].([]interface{}), 1)
}

func TestTutoringSessionOverHTTP(t *testing.T) {
	ta := setupApp(t)
	teacher := testutil.CreateUser(t, ta.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, ta.db, models.RoleStudent, "s@example.com", 10000)
	teacherTok, studentTok := ta.token(t, teacher), ta.token(t, student)

	startsAt := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	status, result := ta.call(t, "POST", "/api/sessions", studentTok, map[string]interface{}{
		"teacher_id": teacher.ID, "subject": "Fractions", "starts_at": "tomorrow", "duration_minutes": 30,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, result = ta.call(t, "POST", "/api/sessions", studentTok, map[string]interface{}{
		"teacher_id": teacher.ID, "subject": "Fractions", "starts_at": startsAt, "duration_minutes": 30,
	})
	require.Equal(t, fiber.StatusCreated, status, result)
	session := data(t, result)
	sessionID := idOf(t, session)
	assert.Equal(t, float64(3000), session["price"])
	assert.Equal(t, int64(7000), testutil.Balance(t, ta.db, student.ID))

	status, _ = ta.call(t, "POST", fmt.Sprintf("/api/sessions/%d/accept", sessionID), studentTok, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/sessions/%d/accept", sessionID), teacherTok, nil)
	require.Equal(t, fiber.StatusOK, status, result)
	assert.Contains(t, data(t, result)["meeting_url"], "https://meet.test/")

	status, result = ta.call(t, "GET", "/api/sessions?role=teacher", teacherTok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, result["data"].([]interface{}), 1)

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/sessions/%d/cancel", sessionID), studentTok, nil)
	require.Equal(t, fiber.StatusOK, status, result)
	assert.Equal(t, models.SessionCancelled, data(t, result)["status"])
	assert.Equal(t, int64(10000), testutil.Balance(t, ta.db, student.ID))
}

func TestMessagingOverHTTP(t *testing.T) {
	ta := setupApp(t)
	alice := testutil.CreateUser(t, ta.db, models.RoleStudent, "alice@example.com", 0)
	bob := testutil.CreateUser(t, ta.db, models.RoleTeacher, "bob@example.com", 0)
	aliceTok, bobTok := ta.token(t, alice), ta.token(t, bob)

	status, result := ta.call(t, "POST", "/api/messages", aliceTok, map[string]interface{}{"recipient_id": bob.ID, "body": "Hi Bob"})
	require.Equal(t, fiber.StatusCreated, status, result)
	convID := uint(data(t, result)["conversation_id"].(float64))

	status, result = ta.call(t, "GET", "/api/conversations", bobTok, nil)
	require.Equal(t, fiber.StatusOK, status)
	convs := result["data"].([]interface{})
	require.Len(t, convs, 1)
	assert.Equal(t, float64(1), convs[0].(map[string]interface{})["unread_count"])

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/conversations/%d/read", convID), bobTok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), data(t, result)["marked"])

	outsider := testutil.CreateUser(t, ta.db, models.RoleStudent, "eve@example.com", 0)
	status, _ = ta.call(t, "GET", fmt.Sprintf("/api/conversations/%d/messages", convID), ta.token(t, outsider), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestAdminRoutes(t *testing.T) {
	ta := setupApp(t)
	admin := testutil.CreateUser(t, ta.db, models.RoleAdmin, "admin@example.com", 0)
	student := testutil.CreateUser(t, ta.db, models.RoleStudent, "s@example.com", 0)
	adminTok := ta.token(t, admin)

	status, _ := ta.call(t, "GET", "/api/admin/stats", ta.token(t, student), nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, result := ta.call(t, "POST", "/api/auth/register", "", map[string]interface{}{
		"name": "Tess", "email": "tess@example.com", "password": "password123", "role": "teacher",
		"expertise": "Physics", "hourly_rate": 5000,
	})
	require.Equal(t, fiber.StatusCreated, status, result)

	status, result = ta.call(t, "GET", "/api/admin/teacher-applications", adminTok, nil)
	require.Equal(t, fiber.StatusOK, status)
	apps := result["data"].([]interface{})
	require.Len(t, apps, 1)
	appID := idOf(t, apps[0].(map[string]interface{}))

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/admin/teacher-applications/%d/approve", appID), adminTok, nil)
	require.Equal(t, fiber.StatusOK, status, result)
	assert.Equal(t, models.ApplicationApproved, data(t, result)["status"])

	status, _ = ta.call(t, "POST", fmt.Sprintf("/api/admin/teacher-applications/%d/approve", appID), adminTok, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	status, result = ta.call(t, "POST", fmt.Sprintf("/api/admin/users/%d/suspend", student.ID), adminTok, nil)
	require.Equal(t, fiber.StatusOK, status, result)
	assert.Equal(t, false, data(t, result)["is_active"])

	status, _ = ta.call(t, "GET", "/api/auth/me", ta.token(t, student), nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = ta.call(t, "POST", fmt.Sprintf("/api/admin/users/%d/suspend", admin.ID), adminTok, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, result = ta.call(t, "GET", "/api/admin/audit-logs", adminTok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(2), result["total"])

	status, result = ta.call(t, "GET", "/api/admin/stats", adminTok, nil)
	require.Equal(t, fiber.StatusOK, status)
	byRole := data(t, result)["users_by_role"].(map[string]interface{})
	assert.Equal(t, float64(1), byRole[models.RoleTeacher])
}

func TestDashboards(t *testing.T) {
	ta := setupApp(t)
	teacher := testutil.CreateUser(t, ta.db, models.RoleTeacher, "t@example.com", 0)
	student := testutil.CreateUser(t, ta.db, models.RoleStudent, "s@example.com", 0)
	course := testutil.CreateCourse(t, ta.db, teacher.ID, testutil.CourseFixture{Sections: []int{1}})
	testutil.CreateCourse(t, ta.db, teacher.ID, testutil.CourseFixture{Sections: []int{1}})
	testutil.Enroll(t, ta.db, student.ID, course.ID)

	status, result := ta.call(t, "GET", "/api/dashboard/student", ta.token(t, student), nil)
	require.Equal(t, fiber.StatusOK, status, result)
	dash := data(t, result)
	assert.Len(t, dash["enrollments"].([]interface{}), 1)
	assert.Len(t, dash["recommendations"].([]interface{}), 1)

	status, result = ta.call(t, "GET", "/api/dashboard/teacher", ta.token(t, teacher), nil)
	require.Equal(t, fiber.StatusOK, status, result)
	assert.Equal(t, float64(1), data(t, result)["total_students"])

	status, _ = ta.call(t, "GET", "/api/dashboard/teacher", ta.token(t, student), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}
