package services

import (
	"context"
	"log"
	"strconv"

	"learnity/backend/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	LeaderboardKey          = "learnity:leaderboard:xp"
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	TotalXP   int    `json:"total_xp"`
	Level     int    `json:"level"`
}

// Leaderboard ranks users by XP. A nil Redis client makes every read hit the database.
type Leaderboard struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Logger *log.Logger
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

func (l *Leaderboard) logger() *log.Logger {
	if l.Logger == nil {
		return log.Default()
	}
	return l.Logger
}

// Record stores the latest XP total of a user.
func (l *Leaderboard) Record(ctx context.Context, userID uint, totalXP int) error {
	if l == nil || l.Redis == nil {
		return nil
	}
	return l.Redis.ZAdd(ctx, LeaderboardKey, redis.Z{
		Score:  float64(totalXP),
		Member: strconv.FormatUint(uint64(userID), 10),
	}).Err()
}

// refresh records the user's stored total, logging failures; the database stays authoritative.
func (l *Leaderboard) refresh(ctx context.Context, userID uint) {
	if l == nil || l.Redis == nil {
		return
	}
	var p models.UserProgress
	if err := l.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		l.logger().Printf("leaderboard: load progress for user %d: %v", userID, err)
		return
	}
	if err := l.Record(ctx, userID, p.TotalXP); err != nil {
		l.logger().Printf("leaderboard: record user %d: %v", userID, err)
	}
}

// Rebuild reloads the sorted set from the database.
func (l *Leaderboard) Rebuild(ctx context.Context) error {
	if l == nil || l.Redis == nil {
		return nil
	}
	var rows []models.UserProgress
	if err := l.DB.WithContext(ctx).Find(&rows).Error; err != nil {
		return err
	}
	pipe := l.Redis.TxPipeline()
	pipe.Del(ctx, LeaderboardKey)
	for _, p := range rows {
		pipe.ZAdd(ctx, LeaderboardKey, redis.Z{Score: float64(p.TotalXP), Member: strconv.FormatUint(uint64(p.UserID), 10)})
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (l *Leaderboard) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	limit = clampLimit(limit)
	if l.Redis != nil {
		entries, err := l.topFromRedis(ctx, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		if err != nil {
			l.logger().Printf("leaderboard: redis read failed, using database: %v", err)
		}
	}
	return l.topFromDB(ctx, limit)
}

func (l *Leaderboard) topFromRedis(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	zs, err := l.Redis.ZRevRangeWithScores(ctx, LeaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}

	var users []models.User
	if err := l.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	entries := make([]LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		id, _ := strconv.ParseUint(member, 10, 64)
		u, ok := byID[uint(id)]
		if !ok || !u.IsActive {
			continue
		}
		xp := int(z.Score)
		entries = append(entries, LeaderboardEntry{
			Rank:      len(entries) + 1,
			UserID:    u.ID,
			Name:      u.Name,
			AvatarURL: u.AvatarURL,
			TotalXP:   xp,
			Level:     models.LevelFor(xp),
		})
	}
	return entries, nil
}

func (l *Leaderboard) topFromDB(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := l.DB.WithContext(ctx).
		Table("user_progresses").
		Select("user_progresses.user_id, users.name, users.avatar_url, user_progresses.total_xp, user_progresses.level").
		Joins("JOIN users ON users.id = user_progresses.user_id AND users.deleted_at IS NULL").
		Where("users.is_active = ? AND user_progresses.deleted_at IS NULL", true).
		Order("user_progresses.total_xp DESC, user_progresses.user_id ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
