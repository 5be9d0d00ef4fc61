package services

import (
	"context"
	"testing"

	"learnity/backend/models"
	"learnity/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterStudent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user, token, err := h.svc.Auth.Register(ctx, RegisterInput{
		Name: "Ann", Email: "  Ann@Example.com ", Password: "password123", Role: models.RoleStudent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, models.RoleStudent, user.Role)

	claims, err := utils.ParseJWTToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	var wallets, progress, profiles int64
	h.db.Model(&models.Wallet{}).Where("user_id = ?", user.ID).Count(&wallets)
	h.db.Model(&models.UserProgress{}).Where("user_id = ?", user.ID).Count(&progress)
	h.db.Model(&models.StudentProfile{}).Where("user_id = ?", user.ID).Count(&profiles)
	assert.Equal(t, int64(1), wallets)
	assert.Equal(t, int64(1), progress)
	assert.Equal(t, int64(1), profiles)

	_, _, err = h.svc.Auth.Register(ctx, RegisterInput{
		Name: "Ann", Email: "ann@example.com", Password: "password123", Role: models.RoleStudent,
	})
	assertCode(t, err, utils.CodeConflict)
}

func TestRegisterTeacherIsPending(t *testing.T) {
	h := newHarness(t)
	user, _, err := h.svc.Auth.Register(context.Background(), RegisterInput{
		Name: "Tom", Email: "tom@example.com", Password: "password123", Role: models.RoleTeacher, HourlyRate: 5000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RolePendingTeacher, user.Role)

	var app models.TeacherApplication
	require.NoError(t, h.db.Where("user_id = ?", user.ID).First(&app).Error)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, int64(5000), app.HourlyRate)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.svc.Auth.Register(context.Background(), RegisterInput{
		Name: "Mal", Email: "mal@example.com", Password: "password123", Role: models.RoleAdmin,
	})
	assertCode(t, err, utils.CodeValidation)
}

func TestLoginRecordsSecurityEvents(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, _, err := h.svc.Auth.Register(ctx, RegisterInput{
		Name: "Ann", Email: "ann@example.com", Password: "password123", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	_, _, err = h.svc.Auth.Login(ctx, "ann@example.com", "wrong-password", ClientInfo{IP: "1.2.3.4"})
	assertCode(t, err, utils.CodeUnauthorized)
	_, _, err = h.svc.Auth.Login(ctx, "nobody@example.com", "password123", ClientInfo{})
	assertCode(t, err, utils.CodeUnauthorized)

	user, token, err := h.svc.Auth.Login(ctx, "ANN@example.com", "password123", ClientInfo{UserAgent: "test"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotNil(t, user.LastLoginAt)

	var failed, success int64
	h.db.Model(&models.SecurityEvent{}).Where("type = ?", models.SecurityLoginFailed).Count(&failed)
	h.db.Model(&models.SecurityEvent{}).Where("type = ?", models.SecurityLoginSuccess).Count(&success)
	assert.Equal(t, int64(2), failed)
	assert.Equal(t, int64(1), success)
}

func TestCreateAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin, err := h.svc.Auth.CreateAdmin(ctx, "Root", "root@example.com", "supersecret")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = h.svc.Auth.CreateAdmin(ctx, "Root", "root@example.com", "supersecret")
	assertCode(t, err, utils.CodeConflict)

	_, err = h.svc.Auth.CreateAdmin(ctx, "Root", "other@example.com", "short")
	assertCode(t, err, utils.CodeValidation)
}
