package services

import (
	"errors"
	"testing"
	"time"

	"learnity/backend/config"
	"learnity/backend/notify"
	"learnity/backend/testutil"
	"learnity/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testStart = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type harness struct {
	db     *gorm.DB
	svc    *Services
	mailer *notify.MemoryMailer
	setNow func(time.Time)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	now, setNow := testutil.FixedClock(testStart)
	mailer := &notify.MemoryMailer{}
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpiration:      time.Hour,
		PlatformFeePercent: 10,
		VideoBaseURL:       "https://meet.test",
	}
	return &harness{
		db:     db,
		svc:    New(db, cfg, Deps{Mailer: mailer, Now: now}),
		mailer: mailer,
		setNow: setNow,
	}
}

// assertCode checks err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}
