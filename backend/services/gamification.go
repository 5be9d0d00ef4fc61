package services

import (
	"context"
	"time"

	"learnity/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

type GamificationService struct {
	DB    *gorm.DB
	Board *Leaderboard
}

type Summary struct {
	Progress *models.UserProgress `json:"progress"`
	XPToNext int                  `json:"xp_to_next_level"`
	Badges   []models.UserBadge   `json:"badges"`
	RecentXP []models.XPActivity  `json:"recent_xp"`
}

// Reward collects what one learning event paid out.
type Reward struct {
	XPAwarded int            `json:"xp_awarded"`
	TotalXP   int            `json:"total_xp"`
	Level     int            `json:"level"`
	Streak    int            `json:"current_streak"`
	NewBadges []models.Badge `json:"new_badges,omitempty"`
}

func ensureProgress(tx *gorm.DB, userID uint) (*models.UserProgress, error) {
	p := models.UserProgress{}
	err := tx.Where(models.UserProgress{UserID: userID}).
		Attrs(models.UserProgress{Level: 1}).
		FirstOrCreate(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// awardXP credits amount once per (user, source). It reports false when the source already paid out.
func awardXP(tx *gorm.DB, userID uint, sourceType string, sourceID uint, amount int, reason string) (bool, error) {
	if _, err := ensureProgress(tx, userID); err != nil {
		return false, err
	}

	var count int64
	if err := tx.Model(&models.XPActivity{}).
		Where("user_id = ? AND source_type = ? AND source_id = ?", userID, sourceType, sourceID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	activity := models.XPActivity{
		UserID:     userID,
		SourceType: sourceType,
		SourceID:   sourceID,
		Amount:     amount,
		Reason:     reason,
	}
	if err := tx.Create(&activity).Error; err != nil {
		return false, err
	}
	if amount != 0 {
		if err := tx.Model(&models.UserProgress{}).
			Where("user_id = ?", userID).
			UpdateColumn("total_xp", gorm.Expr("total_xp + ?", amount)).Error; err != nil {
			return false, err
		}
	}
	return true, nil
}

var counterColumns = map[string]bool{
	models.BadgeMetricLessons: true,
	models.BadgeMetricCourses: true,
	models.BadgeMetricQuizzes: true,
}

func incrementCounter(tx *gorm.DB, userID uint, column string) error {
	if !counterColumns[column] {
		panic("services: unknown progress counter " + column)
	}
	return tx.Model(&models.UserProgress{}).
		Where("user_id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

// ApplyStreak advances a daily streak for activity at now (UTC days).
// Same day leaves it unchanged, the next day extends it, any gap restarts it at 1.
func ApplyStreak(p *models.UserProgress, now time.Time) bool {
	today := now.UTC().Format(dateLayout)
	if p.LastActivityDate == today {
		return false
	}
	yesterday := now.UTC().AddDate(0, 0, -1).Format(dateLayout)
	if p.LastActivityDate == yesterday {
		p.CurrentStreak++
	} else {
		p.CurrentStreak = 1
	}
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastActivityDate = today
	return true
}

func recordActivity(tx *gorm.DB, userID uint, now time.Time) error {
	p, err := ensureProgress(tx, userID)
	if err != nil {
		return err
	}
	if !ApplyStreak(p, now) {
		return nil
	}
	return tx.Model(&models.UserProgress{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"current_streak":     p.CurrentStreak,
			"longest_streak":     p.LongestStreak,
			"last_activity_date": p.LastActivityDate,
		}).Error
}

// settle recomputes the level and grants any badge whose threshold is now met.
func settle(tx *gorm.DB, userID uint, reward *Reward) error {
	p, err := ensureProgress(tx, userID)
	if err != nil {
		return err
	}

	level := models.LevelFor(p.TotalXP)
	if level != p.Level {
		if err := tx.Model(&models.UserProgress{}).Where("id = ?", p.ID).UpdateColumn("level", level).Error; err != nil {
			return err
		}
		p.Level = level
	}

	badges, err := evaluateBadges(tx, p)
	if err != nil {
		return err
	}

	if reward != nil {
		reward.TotalXP = p.TotalXP
		reward.Level = p.Level
		reward.Streak = p.CurrentStreak
		reward.NewBadges = append(reward.NewBadges, badges...)
	}
	return nil
}

func evaluateBadges(tx *gorm.DB, p *models.UserProgress) ([]models.Badge, error) {
	var catalogue []models.Badge
	if err := tx.Order("id ASC").Find(&catalogue).Error; err != nil {
		return nil, err
	}

	var owned []uint
	if err := tx.Model(&models.UserBadge{}).Where("user_id = ?", p.UserID).Pluck("badge_id", &owned).Error; err != nil {
		return nil, err
	}
	has := make(map[uint]bool, len(owned))
	for _, id := range owned {
		has[id] = true
	}

	var granted []models.Badge
	for _, badge := range catalogue {
		if has[badge.ID] || p.MetricValue(badge.Metric) < badge.Threshold {
			continue
		}
		ub := models.UserBadge{UserID: p.UserID, BadgeID: badge.ID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ub)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			granted = append(granted, badge)
		}
	}
	return granted, nil
}

func (s *GamificationService) Summary(ctx context.Context, userID uint) (*Summary, error) {
	db := s.DB.WithContext(ctx)
	p, err := ensureProgress(db, userID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Progress: p,
		XPToNext: p.Level*models.XPPerLevel - p.TotalXP,
	}
	if err := db.Preload("Badge").Where("user_id = ?", userID).Order("created_at ASC").Find(&summary.Badges).Error; err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Limit(10).Find(&summary.RecentXP).Error; err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *GamificationService) Badges(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	err := s.DB.WithContext(ctx).Order("id ASC").Find(&badges).Error
	return badges, err
}

func (s *GamificationService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	return s.Board.Top(ctx, limit)
}
