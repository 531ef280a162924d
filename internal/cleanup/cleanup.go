// Package cleanup physically removes archived "no" swipes. A "no" swipe never
// feeds match detection, so once it is older than the retention period it only
// takes up space in the swipes table.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"real-estate-matching/internal/config"
	"real-estate-matching/internal/models"

	"gorm.io/gorm"
)

var errSwipeChanged = errors.New("swipe changed since selection")

// Service handles physical deletion of archived swipes
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Options holds configuration for one cleanup run
type Options struct {
	RetentionDays    int  // Days to keep "no" swipes before physical deletion (default: 90)
	MaxDeletionCount int  // Maximum number of swipes to delete in one run (safety limit)
	DryRun           bool // If true, only log what would be deleted without actually deleting
}

// OptionsFromConfig converts the cleanup config section into run options
func OptionsFromConfig(cfg config.CleanupConfig) Options {
	return Options{
		RetentionDays:    cfg.RetentionDays,
		MaxDeletionCount: cfg.MaxDeletionCount,
		DryRun:           cfg.DryRun,
	}
}

// Result holds the result of a cleanup operation
type Result struct {
	TargetCount   int       `json:"target_count"`
	DeletedCount  int       `json:"deleted_count"`
	ErrorCount    int       `json:"error_count"`
	DryRun        bool      `json:"dry_run"`
	ExecutedAt    time.Time `json:"executed_at"`
	DeletedSwipes []string  `json:"deleted_swipes"`
	Errors        []string  `json:"errors,omitempty"`
}

// FindExpiredSwipes finds "no" swipes on listings last updated before the retention cutoff
func (s *Service) FindExpiredSwipes(ctx context.Context, retentionDays int) ([]models.Swipe, error) {
	var swipes []models.Swipe

	cutoff := s.now().AddDate(0, 0, -retentionDays).UTC()

	err := s.db.WithContext(ctx).
		Where("target_type = ? AND direction = ? AND updated_at < ?", models.TargetTypeListing, models.DirectionNo, cutoff).
		Order("updated_at ASC").
		Find(&swipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired swipes: %w", err)
	}

	log.Printf("[cleanup] Found %d no-swipes last updated before %s", len(swipes), cutoff.Format("2006-01-02"))
	return swipes, nil
}

// PhysicallyDelete removes expired swipes, logging each deletion
func (s *Service) PhysicallyDelete(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{
		DryRun:        opts.DryRun,
		ExecutedAt:    s.now(),
		DeletedSwipes: []string{},
	}

	expired, err := s.FindExpiredSwipes(ctx, opts.RetentionDays)
	if err != nil {
		return nil, err
	}

	result.TargetCount = len(expired)
	if result.TargetCount == 0 {
		return result, nil
	}

	if opts.MaxDeletionCount > 0 && result.TargetCount > opts.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d swipes exceed max deletion limit of %d",
			result.TargetCount, opts.MaxDeletionCount)
	}

	log.Printf("[cleanup] Starting cleanup: %d swipes to delete (retention: %d days, dry-run: %v)",
		result.TargetCount, opts.RetentionDays, opts.DryRun)

	for _, sw := range expired {
		if opts.DryRun {
			log.Printf("[cleanup] [DRY-RUN] Would delete swipe %s (actor %s, target %s)", sw.ID, sw.ActorID, sw.TargetID)
			result.DeletedSwipes = append(result.DeletedSwipes, sw.ID)
			result.DeletedCount++
			continue
		}

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			entry := models.SwipeCleanupLog{
				SwipeID:  sw.ID,
				ActorID:  sw.ActorID,
				TargetID: sw.TargetID,
				SwipedAt: sw.UpdatedAt,
				Reason:   models.CleanupReasonArchivedNo,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("create cleanup log: %w", err)
			}
			// a concurrent flip to yes must survive
			res := tx.Where("id = ? AND direction = ?", sw.ID, models.DirectionNo).Delete(&models.Swipe{})
			if res.Error != nil {
				return fmt.Errorf("delete swipe: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return errSwipeChanged
			}
			return nil
		})
		if errors.Is(err, errSwipeChanged) {
			continue
		}
		if err != nil {
			msg := fmt.Sprintf("swipe %s: %v", sw.ID, err)
			log.Printf("[cleanup] ERROR: %s", msg)
			result.Errors = append(result.Errors, msg)
			result.ErrorCount++
			continue
		}

		result.DeletedSwipes = append(result.DeletedSwipes, sw.ID)
		result.DeletedCount++
	}

	log.Printf("[cleanup] Cleanup completed: %d/%d deleted, %d errors (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.ErrorCount, opts.DryRun)

	return result, nil
}

// Stats summarizes cleanup history
type Stats struct {
	TotalDeleted       int64            `json:"total_deleted"`
	ByReason           map[string]int64 `json:"by_reason"`
	DeletedLast30Days  int64            `json:"deleted_last_30_days"`
	NoSwipes           int64            `json:"no_swipes"`
	ExpiredReady       int              `json:"expired_ready_for_deletion"`
}

// GetStats returns statistics about deleted swipes
func (s *Service) GetStats(ctx context.Context, retentionDays int) (*Stats, error) {
	db := s.db.WithContext(ctx)
	stats := &Stats{ByReason: map[string]int64{}}

	if err := db.Model(&models.SwipeCleanupLog{}).Count(&stats.TotalDeleted).Error; err != nil {
		return nil, err
	}

	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := db.Model(&models.SwipeCleanupLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}
	for _, rc := range reasonCounts {
		stats.ByReason[rc.Reason] = rc.Count
	}

	thirtyDaysAgo := s.now().AddDate(0, 0, -30).UTC()
	if err := db.Model(&models.SwipeCleanupLog{}).
		Where("deleted_at >= ?", thirtyDaysAgo).
		Count(&stats.DeletedLast30Days).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Swipe{}).
		Where("target_type = ? AND direction = ?", models.TargetTypeListing, models.DirectionNo).
		Count(&stats.NoSwipes).Error; err != nil {
		return nil, err
	}

	expired, err := s.FindExpiredSwipes(ctx, retentionDays)
	if err != nil {
		return nil, err
	}
	stats.ExpiredReady = len(expired)

	return stats, nil
}

// GetRecentLogs returns recent cleanup log entries
func (s *Service) GetRecentLogs(ctx context.Context, limit int) ([]models.SwipeCleanupLog, error) {
	var logs []models.SwipeCleanupLog
	err := s.db.WithContext(ctx).Order("deleted_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
