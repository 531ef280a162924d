package database

import (
	"context"

	"real-estate-matching/internal/models"
)

// CreateBuyerIntent inserts a buyer intent
func (gdb *GormDB) CreateBuyerIntent(ctx context.Context, b *models.BuyerIntent) error {
	if err := gdb.db.WithContext(ctx).Create(b).Error; err != nil {
		return wrapErr("create buyer intent", err)
	}
	return nil
}

// GetBuyerIntent retrieves a buyer intent by ID
func (gdb *GormDB) GetBuyerIntent(ctx context.Context, id string) (*models.BuyerIntent, error) {
	var intent models.BuyerIntent
	if err := gdb.db.WithContext(ctx).Where("id = ?", id).First(&intent).Error; err != nil {
		return nil, wrapErr("get buyer intent", err)
	}
	return &intent, nil
}

// ListActiveIntentIDsByBuyers returns active intent IDs keyed by buyer
func (gdb *GormDB) ListActiveIntentIDsByBuyers(ctx context.Context, buyerIDs []string) (map[string][]string, error) {
	byBuyer := make(map[string][]string, len(buyerIDs))
	if len(buyerIDs) == 0 {
		return byBuyer, nil
	}

	var intents []models.BuyerIntent
	err := gdb.db.WithContext(ctx).
		Select("id", "buyer_id").
		Where("buyer_id IN ? AND active = ?", buyerIDs, true).
		Order("created_at DESC").
		Find(&intents).Error
	if err != nil {
		return nil, wrapErr("list buyer intents", err)
	}

	for _, intent := range intents {
		byBuyer[intent.BuyerID] = append(byBuyer[intent.BuyerID], intent.ID)
	}
	return byBuyer, nil
}
