// services/stats_service.go
package services

import (
	"log"
	"strconv"
	"time"

	"cleanup-jobs-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatsService maintains the read-only dashboard: per-user aggregates and the
// completion history. It never mutates claims.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

// EnsureStatsRecord ensures a CleanupStats row exists (idempotent)
func (s *StatsService) EnsureStatsRecord(externalUserID string) (*models.CleanupStats, error) {
	var stats models.CleanupStats
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&stats).Error
	if err == gorm.ErrRecordNotFound {
		stats = models.CleanupStats{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
		}
		if err := s.DB.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// applyVerdict moves the dashboard counters for a freshly judged claim. Runs
// inside the verdict transaction so counters and claim state stay consistent.
func (s *StatsService) applyVerdict(tx *gorm.DB, claim *models.JobClaim) error {
	var stats models.CleanupStats
	err := tx.Where("external_user_id = ?", claim.UserID).First(&stats).Error
	if err == gorm.ErrRecordNotFound {
		stats = models.CleanupStats{
			ID:             uuid.NewString(),
			ExternalUserID: claim.UserID,
		}
		if err := tx.Create(&stats).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	switch claim.Status {
	case models.ClaimStatusVerified:
		stats.TotalCleanups++
		stats.TotalEarned += claim.RewardAmount
		now := time.Now()
		stats.LastCleanupAt = &now
	case models.ClaimStatusRejected:
		stats.TotalRejected++
	}
	return tx.Save(&stats).Error
}

// GetUserStats handles GET /users/me/stats
func (s *StatsService) GetUserStats(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	stats, err := s.EnsureStatsRecord(userID)
	if err != nil {
		log.Printf("DB Error fetching cleanup stats: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch stats"})
	}
	return c.JSON(stats)
}

// GetUserCompletions handles GET /users/me/completions — the user's claim
// history, newest first, paginated.
func (s *StatsService) GetUserCompletions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	size, _ := strconv.Atoi(c.Query("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	var total int64
	if err := s.DB.Model(&models.JobClaim{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count completions"})
	}

	var claims []models.JobClaim
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&claims).Error; err != nil {
		log.Printf("DB Error fetching completions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch completions"})
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return c.JSON(fiber.Map{
		"completions": claims,
		"page":        page,
		"size":        size,
		"total_items": total,
		"total_pages": totalPages,
	})
}
