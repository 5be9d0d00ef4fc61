package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&StudentProfile{},
		&TeacherProfile{},
		&TeacherApplication{},
		&Course{},
		&Section{},
		&Lesson{},
		&CourseRoom{},
		&Enrollment{},
		&LessonProgress{},
		&Certificate{},
		&Quiz{},
		&Question{},
		&QuizAttempt{},
		&UserProgress{},
		&XPActivity{},
		&Badge{},
		&UserBadge{},
		&Review{},
		&Wallet{},
		&Transaction{},
		&TutoringSession{},
		&LiveSession{},
		&Conversation{},
		&Message{},
		&AuditLog{},
		&SecurityEvent{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return err
	}
	return SeedBadges(db)
}

// SeedBadges inserts the default badge catalogue, leaving existing rows untouched.
func SeedBadges(db *gorm.DB) error {
	for _, b := range DefaultBadges {
		badge := b
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&badge).Error; err != nil {
			return err
		}
	}
	return nil
}
