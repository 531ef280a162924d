package matching

import (
	"context"
	"log"

	"real-estate-matching/internal/config"
	"real-estate-matching/internal/database"
	"real-estate-matching/internal/events"
	"real-estate-matching/internal/metrics"
	"real-estate-matching/internal/models"
)

// Provision records the match for t and makes sure it has a seeded deal room.
// The match insert is the idempotency boundary: an existing match for the triple is
// reused, and its existing deal room is returned. Concurrent callers converge on one
// match and one deal room through the store's unique constraints.
//
// A failure after the match is stored returns a KindPartialProvisioning error carrying
// the match ID; RepairOrphanedMatches can finish it later.
func (s *Service) Provision(ctx context.Context, t Triple) (string, error) {
	const op = "provision deal"

	match, created, err := s.store.InsertMatch(ctx, &models.Match{
		ListingID:   t.ListingID,
		BuyerID:     t.BuyerID,
		SellerID:    t.SellerID,
		MatchScore:  s.cfg.MutualMatchScore,
		Explanation: s.cfg.MutualMatchExplanation,
	})
	if err != nil {
		log.Printf("[matching] %s: insert match listing=%s buyer=%s seller=%s: %v",
			op, t.ListingID, t.BuyerID, t.SellerID, err)
		return "", storeError(op, "Failed to create match", err)
	}

	roomID, err := s.ensureDealRoom(ctx, match, t.BuyerIntentID)
	if err != nil {
		return "", err
	}

	if created {
		log.Printf("[matching] matched listing=%s buyer=%s seller=%s match=%s room=%s",
			t.ListingID, t.BuyerID, t.SellerID, match.ID, roomID)
	}
	return roomID, nil
}

// ensureDealRoom creates the deal room for match if it does not exist yet
func (s *Service) ensureDealRoom(ctx context.Context, match *models.Match, intentID string) (string, error) {
	const op = "provision deal"

	room, created, err := s.store.CreateDealRoom(ctx, s.dealRoomSeed(match))
	if err != nil {
		metrics.ProvisioningFailures.Inc()
		log.Printf("[matching] ERROR: orphaned match %s (listing=%s buyer=%s seller=%s): deal room provisioning failed: %v",
			match.ID, match.ListingID, match.BuyerID, match.SellerID, err)
		return "", &Error{
			Kind:    KindPartialProvisioning,
			Op:      op,
			Message: "Deal room provisioning failed",
			MatchID: match.ID,
			Err:     err,
		}
	}

	if !created {
		metrics.MatchesTotal.WithLabelValues("existing").Inc()
		return room.ID, nil
	}

	metrics.MatchesTotal.WithLabelValues("created").Inc()
	s.publish(events.SubjectDealMatched, events.DealMatched{
		MatchID:       match.ID,
		DealRoomID:    room.ID,
		ListingID:     match.ListingID,
		BuyerID:       match.BuyerID,
		SellerID:      match.SellerID,
		BuyerIntentID: intentID,
	})
	return room.ID, nil
}

// dealRoomSeed builds participants and onboarding tasks for a new deal room
func (s *Service) dealRoomSeed(match *models.Match) database.DealRoomSeed {
	due := s.now().Add(s.cfg.GetTaskDue())

	var tasks []models.Task
	order := 0
	add := func(assignee string, templates []config.TaskTemplate) {
		for _, tmpl := range templates {
			dueAt := due
			tasks = append(tasks, models.Task{
				AssigneeProfileID: assignee,
				Title:             tmpl.Title,
				Description:       tmpl.Description,
				Status:            models.TaskStatusTodo,
				Category:          taskCategory(tmpl.Category),
				OrderIndex:        order,
				DueAt:             &dueAt,
			})
			order++
		}
	}
	add(match.BuyerID, s.cfg.BuyerTasks)
	add(match.SellerID, s.cfg.SellerTasks)

	return database.DealRoomSeed{
		MatchID:  match.ID,
		BuyerID:  match.BuyerID,
		SellerID: match.SellerID,
		Tasks:    tasks,
	}
}

func taskCategory(c string) models.TaskCategory {
	switch cat := models.TaskCategory(c); cat {
	case models.TaskCategoryPreOffer, models.TaskCategoryDueDiligence, models.TaskCategoryFinancing,
		models.TaskCategoryClosing, models.TaskCategoryGeneral:
		return cat
	default:
		return models.TaskCategoryGeneral
	}
}
