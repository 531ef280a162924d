package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"real-estate-matching/internal/models"
)

// DealRoomSeed is everything written alongside a new deal room
type DealRoomSeed struct {
	MatchID  string
	BuyerID  string
	SellerID string
	// Tasks are inserted with DealRoomID filled in
	Tasks []models.Task
}

// DealRoomDetail is a deal room with its participants, conversation and tasks
type DealRoomDetail struct {
	Room           models.DealRoom          `json:"deal_room"`
	Match          models.Match             `json:"match"`
	Participants   []models.DealParticipant `json:"participants"`
	ConversationID string                   `json:"conversation_id,omitempty"`
	Tasks          []models.Task            `json:"tasks"`
}

// InsertMatch inserts m unless a match already exists for its (listing, buyer, seller) triple.
// It returns the stored match and whether this call created it.
func (gdb *GormDB) InsertMatch(ctx context.Context, m *models.Match) (*models.Match, bool, error) {
	db := gdb.db.WithContext(ctx)

	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "listing_id"},
			{Name: "buyer_id"},
			{Name: "seller_id"},
		},
		DoNothing: true,
	}).Create(m)
	if result.Error != nil {
		return nil, false, wrapErr("insert match", result.Error)
	}
	if result.RowsAffected == 1 {
		return m, true, nil
	}

	var existing models.Match
	err := db.Where("listing_id = ? AND buyer_id = ? AND seller_id = ?", m.ListingID, m.BuyerID, m.SellerID).
		First(&existing).Error
	if err != nil {
		return nil, false, wrapErr("load existing match", err)
	}
	return &existing, false, nil
}

// CreateDealRoom creates the deal room for seed.MatchID together with its participants,
// conversation and tasks in one transaction. If the match already has a room, that room is
// returned unchanged and created is false.
func (gdb *GormDB) CreateDealRoom(ctx context.Context, seed DealRoomSeed) (*models.DealRoom, bool, error) {
	var (
		room    models.DealRoom
		created bool
	)

	err := gdb.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room = models.DealRoom{MatchID: seed.MatchID, Status: models.DealRoomStatusMatched}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_id"}},
			DoNothing: true,
		}).Create(&room)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			room = models.DealRoom{}
			return tx.Where("match_id = ?", seed.MatchID).First(&room).Error
		}
		created = true

		participants := []models.DealParticipant{
			{DealRoomID: room.ID, ProfileID: seed.BuyerID, RoleInDeal: models.RoleBuyer},
			{DealRoomID: room.ID, ProfileID: seed.SellerID, RoleInDeal: models.RoleSeller},
		}
		if err := tx.Create(&participants).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.Conversation{DealRoomID: room.ID}).Error; err != nil {
			return err
		}

		if len(seed.Tasks) == 0 {
			return nil
		}
		tasks := make([]models.Task, len(seed.Tasks))
		for i, t := range seed.Tasks {
			t.DealRoomID = room.ID
			tasks[i] = t
		}
		return tx.Create(&tasks).Error
	})
	if err != nil {
		return nil, false, wrapErr("create deal room", err)
	}
	return &room, created, nil
}

// GetDealRoomDetail loads a deal room with its match, participants, conversation and tasks
func (gdb *GormDB) GetDealRoomDetail(ctx context.Context, roomID string) (*DealRoomDetail, error) {
	db := gdb.db.WithContext(ctx)
	var detail DealRoomDetail

	if err := db.Where("id = ?", roomID).First(&detail.Room).Error; err != nil {
		return nil, wrapErr("get deal room", err)
	}
	if err := db.Where("id = ?", detail.Room.MatchID).First(&detail.Match).Error; err != nil {
		return nil, wrapErr("get deal room match", err)
	}
	if err := db.Where("deal_room_id = ?", roomID).Order("created_at ASC").Order("role_in_deal ASC").
		Find(&detail.Participants).Error; err != nil {
		return nil, wrapErr("list participants", err)
	}

	var conversation models.Conversation
	err := db.Where("deal_room_id = ?", roomID).First(&conversation).Error
	switch {
	case err == nil:
		detail.ConversationID = conversation.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, wrapErr("get conversation", err)
	}

	if err := db.Where("deal_room_id = ?", roomID).Order("order_index ASC").
		Find(&detail.Tasks).Error; err != nil {
		return nil, wrapErr("list tasks", err)
	}
	return &detail, nil
}

// ListOrphanedMatches returns matches that have no deal room, oldest first
func (gdb *GormDB) ListOrphanedMatches(ctx context.Context, limit int) ([]models.Match, error) {
	query := gdb.db.WithContext(ctx).Model(&models.Match{}).
		Select("matches.*").
		Joins("LEFT JOIN deal_rooms ON deal_rooms.match_id = matches.id").
		Where("deal_rooms.id IS NULL").
		Order("matches.created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var matches []models.Match
	if err := query.Find(&matches).Error; err != nil {
		return nil, wrapErr("list orphaned matches", err)
	}
	return matches, nil
}
