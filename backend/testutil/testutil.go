// Package testutil provides an isolated database and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"learnity/backend/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const Password = "password123"

// NewDB opens a private in-memory sqlite database with the full schema.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts an active user with a wallet holding balance cents and a gamification row.
// Teachers get a profile charging 60.00 per hour.
func CreateUser(t testing.TB, db *gorm.DB, role, email string, balance int64) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &models.User{
		Name:         email,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	must(t, db.Create(user).Error)
	must(t, db.Create(&models.Wallet{UserID: user.ID, Balance: balance, Currency: models.DefaultCurrency}).Error)
	must(t, db.Create(&models.UserProgress{UserID: user.ID, Level: 1}).Error)

	switch role {
	case models.RoleStudent:
		must(t, db.Create(&models.StudentProfile{UserID: user.ID}).Error)
	case models.RoleTeacher:
		must(t, db.Create(&models.TeacherProfile{UserID: user.ID, HourlyRate: 6000, Headline: "Tutor"}).Error)
	}
	return user
}

// CourseFixture shapes a seeded course: one entry per section holding its lesson count.
type CourseFixture struct {
	Title    string
	Price    int64
	Status   string
	Sections []int
	Duration int
}

// CreateCourse builds a course with sections and lessons, reloaded with the tree ordered by position.
func CreateCourse(t testing.TB, db *gorm.DB, teacherID uint, opts CourseFixture) *models.Course {
	t.Helper()

	if opts.Title == "" {
		opts.Title = "Course " + uuid.NewString()[:8]
	}
	if opts.Status == "" {
		opts.Status = models.CoursePublished
	}
	course := &models.Course{
		TeacherID: teacherID,
		Title:     opts.Title,
		Slug:      uuid.NewString(),
		Price:     opts.Price,
		Status:    opts.Status,
		Level:     "beginner",
		Category:  "math",
	}
	must(t, db.Create(course).Error)

	for i, lessons := range opts.Sections {
		section := &models.Section{CourseID: course.ID, Title: fmt.Sprintf("Section %d", i+1), Position: i + 1}
		must(t, db.Create(section).Error)
		for j := 0; j < lessons; j++ {
			must(t, db.Create(&models.Lesson{
				CourseID:        course.ID,
				SectionID:       section.ID,
				Title:           fmt.Sprintf("Lesson %d.%d", i+1, j+1),
				VideoURL:        "https://video.example.com/" + uuid.NewString(),
				DurationSeconds: opts.Duration,
				Position:        j + 1,
				XPReward:        models.DefaultLessonXP,
			}).Error)
		}
	}
	return ReloadCourse(t, db, course.ID)
}

func ReloadCourse(t testing.TB, db *gorm.DB, courseID uint) *models.Course {
	t.Helper()
	var course models.Course
	must(t, db.
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Preload("Sections.Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		First(&course, courseID).Error)
	return &course
}

// Enroll inserts an enrollment without charging the wallet.
func Enroll(t testing.TB, db *gorm.DB, studentID, courseID uint) *models.Enrollment {
	t.Helper()
	e := &models.Enrollment{StudentID: studentID, CourseID: courseID, Status: models.EnrollmentActive}
	must(t, db.Create(e).Error)
	return e
}

// Balance reads the current wallet balance.
func Balance(t testing.TB, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var w models.Wallet
	must(t, db.Where("user_id = ?", userID).First(&w).Error)
	return w.Balance
}

// FixedClock returns a clock that can be moved with the returned setter.
func FixedClock(start time.Time) (func() time.Time, func(time.Time)) {
	now := start.UTC()
	return func() time.Time { return now }, func(t time.Time) { now = t.UTC() }
}

func must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
}
