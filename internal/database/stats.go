package database

import (
	"context"

	"real-estate-matching/internal/models"
)

// Stats summarizes the matching tables for the admin dashboard
type Stats struct {
	Profiles         int64            `json:"profiles"`
	ListingsByStatus map[string]int64 `json:"listings_by_status"`
	BuyerIntents     int64            `json:"buyer_intents"`
	Swipes           int64            `json:"swipes"`
	YesSwipes        int64            `json:"yes_swipes"`
	Matches          int64            `json:"matches"`
	DealRooms        int64            `json:"deal_rooms"`
	OrphanedMatches  int64            `json:"orphaned_matches"`
}

// GetStats counts rows across the matching tables
func (gdb *GormDB) GetStats(ctx context.Context) (*Stats, error) {
	db := gdb.db.WithContext(ctx)
	stats := &Stats{ListingsByStatus: make(map[string]int64)}

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Profile{}, &stats.Profiles},
		{&models.BuyerIntent{}, &stats.BuyerIntents},
		{&models.Swipe{}, &stats.Swipes},
		{&models.Match{}, &stats.Matches},
		{&models.DealRoom{}, &stats.DealRooms},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, wrapErr("count rows", err)
		}
	}

	if err := db.Model(&models.Swipe{}).Where("direction = ?", models.DirectionYes).
		Count(&stats.YesSwipes).Error; err != nil {
		return nil, wrapErr("count yes swipes", err)
	}

	var byStatus []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Listing{}).Select("status, COUNT(*) AS count").
		Group("status").Scan(&byStatus).Error; err != nil {
		return nil, wrapErr("count listings", err)
	}
	for _, row := range byStatus {
		stats.ListingsByStatus[row.Status] = row.Count
	}

	if err := db.Model(&models.Match{}).
		Joins("LEFT JOIN deal_rooms ON deal_rooms.match_id = matches.id").
		Where("deal_rooms.id IS NULL").
		Count(&stats.OrphanedMatches).Error; err != nil {
		return nil, wrapErr("count orphaned matches", err)
	}

	return stats, nil
}

// StateCount is the number of active listings in one state
type StateCount struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

// ListingsByState returns the states with the most active listings
func (gdb *GormDB) ListingsByState(ctx context.Context, limit int) ([]StateCount, error) {
	var out []StateCount
	err := gdb.db.WithContext(ctx).Model(&models.Listing{}).
		Select("state, COUNT(*) AS count").
		Where("status = ? AND state <> ''", models.ListingStatusActive).
		Group("state").
		Order("count DESC").Order("state ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, wrapErr("count listings by state", err)
	}
	return out, nil
}

// PriceRange is one bucket of the active listing price distribution; Max is exclusive
type PriceRange struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int64   `json:"count"`
}

// DefaultPriceRanges are the admin dashboard price buckets
func DefaultPriceRanges() []PriceRange {
	return []PriceRange{
		{Label: "< $250k", Min: 0, Max: 250000},
		{Label: "$250k - $500k", Min: 250000, Max: 500000},
		{Label: "$500k - $750k", Min: 500000, Max: 750000},
		{Label: "$750k - $1M", Min: 750000, Max: 1000000},
		{Label: "$1M - $2M", Min: 1000000, Max: 2000000},
		{Label: "$2M+", Min: 2000000, Max: 1e12},
	}
}

// PriceDistribution fills Count for each range from active listings
func (gdb *GormDB) PriceDistribution(ctx context.Context, ranges []PriceRange) ([]PriceRange, error) {
	db := gdb.db.WithContext(ctx)
	for i := range ranges {
		err := db.Model(&models.Listing{}).
			Where("status = ? AND price >= ? AND price < ?", models.ListingStatusActive, ranges[i].Min, ranges[i].Max).
			Count(&ranges[i].Count).Error
		if err != nil {
			return nil, wrapErr("price distribution", err)
		}
	}
	return ranges, nil
}
