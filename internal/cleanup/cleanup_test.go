package cleanup

import (
	"context"
	"testing"
	"time"

	"real-estate-matching/internal/config"
	"real-estate-matching/internal/database"
	"real-estate-matching/internal/models"
)

func newTestService(t *testing.T) (*Service, *database.GormDB) {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Type:   "sqlite",
		SQLite: config.SQLiteConfig{Path: ":memory:"},
	}, "silent")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.InitSchema(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := NewService(db.DB())
	// run as if 100 days have passed
	svc.now = func() time.Time { return time.Now().AddDate(0, 0, 100) }
	return svc, db
}

func seedSwipe(t *testing.T, db *database.GormDB, actor, target string, dir models.Direction) *models.Swipe {
	t.Helper()
	sw, err := db.UpsertSwipe(context.Background(), &models.Swipe{
		ActorID: actor, TargetType: models.TargetTypeListing, TargetID: target, Direction: dir,
	})
	if err != nil {
		t.Fatalf("seed swipe: %v", err)
	}
	return sw
}

func TestPhysicallyDelete_RemovesOnlyNoSwipes(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	no := seedSwipe(t, db, "buyer-1", "listing-1", models.DirectionNo)
	seedSwipe(t, db, "buyer-1", "listing-2", models.DirectionYes)

	result, err := svc.PhysicallyDelete(ctx, Options{RetentionDays: 90, MaxDeletionCount: 10})
	if err != nil {
		t.Fatalf("PhysicallyDelete: %v", err)
	}
	if result.TargetCount != 1 || result.DeletedCount != 1 {
		t.Fatalf("result = %+v, want 1 target / 1 deleted", result)
	}
	if result.DeletedSwipes[0] != no.ID {
		t.Errorf("deleted %v, want %s", result.DeletedSwipes, no.ID)
	}

	var remaining []models.Swipe
	db.DB().Find(&remaining)
	if len(remaining) != 1 || remaining[0].Direction != models.DirectionYes {
		t.Errorf("remaining swipes = %+v, want only the yes swipe", remaining)
	}

	logs, err := svc.GetRecentLogs(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecentLogs: %v", err)
	}
	if len(logs) != 1 || logs[0].SwipeID != no.ID || logs[0].Reason != models.CleanupReasonArchivedNo {
		t.Errorf("logs = %+v, want one archived_no_swipe entry for %s", logs, no.ID)
	}
}

func TestPhysicallyDelete_DryRunKeepsRows(t *testing.T) {
	svc, db := newTestService(t)

	seedSwipe(t, db, "buyer-1", "listing-1", models.DirectionNo)

	result, err := svc.PhysicallyDelete(context.Background(), Options{RetentionDays: 90, MaxDeletionCount: 10, DryRun: true})
	if err != nil {
		t.Fatalf("PhysicallyDelete: %v", err)
	}
	if !result.DryRun || result.DeletedCount != 1 {
		t.Errorf("result = %+v, want dry run reporting 1", result)
	}

	var count int64
	db.DB().Model(&models.Swipe{}).Count(&count)
	if count != 1 {
		t.Errorf("swipes after dry run = %d, want 1", count)
	}
	db.DB().Model(&models.SwipeCleanupLog{}).Count(&count)
	if count != 0 {
		t.Errorf("cleanup logs after dry run = %d, want 0", count)
	}
}

func TestPhysicallyDelete_SafetyLimit(t *testing.T) {
	svc, db := newTestService(t)

	seedSwipe(t, db, "buyer-1", "listing-1", models.DirectionNo)
	seedSwipe(t, db, "buyer-1", "listing-2", models.DirectionNo)

	if _, err := svc.PhysicallyDelete(context.Background(), Options{RetentionDays: 90, MaxDeletionCount: 1}); err == nil {
		t.Fatal("expected safety check error")
	}

	var count int64
	db.DB().Model(&models.Swipe{}).Count(&count)
	if count != 2 {
		t.Errorf("swipes after aborted run = %d, want 2", count)
	}
}

func TestPhysicallyDelete_RespectsRetention(t *testing.T) {
	svc, db := newTestService(t)
	svc.now = time.Now

	seedSwipe(t, db, "buyer-1", "listing-1", models.DirectionNo)

	result, err := svc.PhysicallyDelete(context.Background(), OptionsFromConfig(config.DefaultConfig().Cleanup))
	if err != nil {
		t.Fatalf("PhysicallyDelete: %v", err)
	}
	if result.TargetCount != 0 {
		t.Errorf("TargetCount = %d, want 0 for a fresh swipe", result.TargetCount)
	}
}

func TestGetStats(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seedSwipe(t, db, "buyer-1", "listing-1", models.DirectionNo)
	seedSwipe(t, db, "buyer-1", "listing-2", models.DirectionNo)

	stats, err := svc.GetStats(ctx, 90)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.NoSwipes != 2 || stats.ExpiredReady != 2 || stats.TotalDeleted != 0 {
		t.Errorf("stats before = %+v", stats)
	}

	if _, err := svc.PhysicallyDelete(ctx, Options{RetentionDays: 90, MaxDeletionCount: 10}); err != nil {
		t.Fatalf("PhysicallyDelete: %v", err)
	}

	stats, err = svc.GetStats(ctx, 90)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalDeleted != 2 || stats.ByReason[models.CleanupReasonArchivedNo] != 2 || stats.NoSwipes != 0 {
		t.Errorf("stats after = %+v", stats)
	}
}
