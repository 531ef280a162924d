package matching

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"real-estate-matching/internal/config"
	"real-estate-matching/internal/database"
	"real-estate-matching/internal/geo"
	"real-estate-matching/internal/models"
	"real-estate-matching/internal/scoring"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// recordingPublisher keeps every published subject for assertions
type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

type fixture struct {
	db  *database.GormDB
	svc *Service
	pub *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
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

	return newFixtureWithStore(t, db, db)
}

func newFixtureWithStore(t *testing.T, db *database.GormDB, store Store) *fixture {
	t.Helper()
	cfg := config.DefaultMatchingConfig()
	pub := &recordingPublisher{}
	svc := NewService(store, scoring.NewEngine(geo.NewStraightLine(cfg.AverageSpeedMPH), cfg.DefaultAnchorMaxMinutes), pub, cfg)
	svc.SetClock(func() time.Time { return testNow })
	return &fixture{db: db, svc: svc, pub: pub}
}

func (f *fixture) profile(t *testing.T, role models.Role, level int) *models.Profile {
	t.Helper()
	p := &models.Profile{Role: role, VerificationLevel: level}
	if err := f.db.CreateProfile(context.Background(), p); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func (f *fixture) listing(t *testing.T, sellerID string, mutate ...func(*models.Listing)) *models.Listing {
	t.Helper()
	l := &models.Listing{
		SellerID:        sellerID,
		Title:           "3 bed house",
		Price:           650000,
		Beds:            3,
		Baths:           2,
		PropertyType:    "house",
		Features:        []string{"garage", "yard"},
		ListingVerified: true,
	}
	for _, m := range mutate {
		m(l)
	}
	if err := f.db.CreateListing(context.Background(), l); err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}

func (f *fixture) intent(t *testing.T, buyerID string) *models.BuyerIntent {
	t.Helper()
	lo, hi := 500000.0, 800000.0
	b := &models.BuyerIntent{
		BuyerID:       buyerID,
		BudgetMin:     &lo,
		BudgetMax:     &hi,
		BedsMin:       2,
		BathsMin:      1,
		PropertyTypes: []string{"house"},
		MustHaves:     []string{"garage"},
		Active:        true,
	}
	if err := f.db.CreateBuyerIntent(context.Background(), b); err != nil {
		t.Fatalf("create intent: %v", err)
	}
	return b
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.DB().Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// party is a verified buyer and seller with a listing and an intent
type party struct {
	buyer, seller *models.Profile
	listing       *models.Listing
	intent        *models.BuyerIntent
}

func (f *fixture) party(t *testing.T) party {
	t.Helper()
	buyer := f.profile(t, models.RoleBuyer, 3)
	seller := f.profile(t, models.RoleSeller, 2)
	return party{
		buyer:   buyer,
		seller:  seller,
		listing: f.listing(t, seller.ID),
		intent:  f.intent(t, buyer.ID),
	}
}

func yesOnListing(id string) SwipeRequest {
	return SwipeRequest{TargetType: models.TargetTypeListing, TargetID: id, Direction: models.DirectionYes}
}

func yesOnIntent(id string) SwipeRequest {
	return SwipeRequest{TargetType: models.TargetTypeBuyerIntent, TargetID: id, Direction: models.DirectionYes}
}

func TestRecordSwipe_Validation(t *testing.T) {
	f := newFixture(t)
	buyer := f.profile(t, models.RoleBuyer, 3)

	tests := []struct {
		name string
		req  SwipeRequest
		msg  string
	}{
		{"missing target id", SwipeRequest{TargetType: models.TargetTypeListing, Direction: models.DirectionYes}, "target_type, target_id, and direction are required"},
		{"missing direction", SwipeRequest{TargetType: models.TargetTypeListing, TargetID: "x"}, "target_type, target_id, and direction are required"},
		{"bad target type", SwipeRequest{TargetType: "agent", TargetID: "x", Direction: models.DirectionYes}, "Invalid target_type"},
		{"bad direction", SwipeRequest{TargetType: models.TargetTypeListing, TargetID: "x", Direction: "maybe"}, "Invalid direction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordSwipe(context.Background(), buyer.ID, tt.req)
			var me *Error
			if !errors.As(err, &me) || me.Kind != KindValidation {
				t.Fatalf("err = %v, want validation error", err)
			}
			if me.Message != tt.msg {
				t.Errorf("Message = %q, want %q", me.Message, tt.msg)
			}
		})
	}

	if n := f.count(t, &models.Swipe{}); n != 0 {
		t.Errorf("swipe rows = %d, want 0", n)
	}
}

func TestRecordSwipe_UnauthenticatedAndUnknownProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordSwipe(context.Background(), "", yesOnListing("l"))
	if KindOf(err) != KindUnauthenticated {
		t.Errorf("empty actor: err = %v, want unauthenticated", err)
	}

	_, err = f.svc.RecordSwipe(context.Background(), "ghost", yesOnListing("l"))
	if KindOf(err) != KindNotFound {
		t.Errorf("unknown actor: err = %v, want not found", err)
	}
}

func TestRecordSwipe_BuyerGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.profile(t, models.RoleSeller, 2)
	listing := f.listing(t, seller.ID)
	buyer := f.profile(t, models.RoleBuyer, 2)

	_, err := f.svc.RecordSwipe(ctx, buyer.ID, yesOnListing(listing.ID))
	var me *Error
	if !errors.As(err, &me) || me.Kind != KindForbidden {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if me.Required != 3 || me.Current != 2 {
		t.Errorf("levels = required %d current %d, want 3 / 2", me.Required, me.Current)
	}
	if me.Message != "Verification level 3 required to swipe YES" {
		t.Errorf("Message = %q", me.Message)
	}
	if n := f.count(t, &models.Swipe{}); n != 0 {
		t.Fatalf("gate rejection left %d swipe rows", n)
	}

	// a no swipe is never gated
	if _, err := f.svc.RecordSwipe(ctx, buyer.ID, SwipeRequest{
		TargetType: models.TargetTypeListing, TargetID: listing.ID, Direction: models.DirectionNo,
	}); err != nil {
		t.Fatalf("no swipe: %v", err)
	}

	if err := f.db.SetVerificationLevel(ctx, buyer.ID, 3); err != nil {
		t.Fatalf("raise level: %v", err)
	}
	result, err := f.svc.RecordSwipe(ctx, buyer.ID, yesOnListing(listing.ID))
	if err != nil {
		t.Fatalf("verified buyer: %v", err)
	}
	if !result.IsRequest || result.Matched || result.DealRoomID != nil {
		t.Errorf("result = %+v, want an unmatched request", result)
	}
	if result.Swipe.Direction != models.DirectionYes {
		t.Errorf("Direction = %q, want yes", result.Swipe.Direction)
	}
	if n := f.count(t, &models.Swipe{}); n != 1 {
		t.Errorf("swipe rows = %d, want 1", n)
	}
	if got := f.pub.count("swipe.request"); got != 1 {
		t.Errorf("swipe.request published %d times, want 1", got)
	}
}

func TestRecordSwipe_SellerGate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name            string
		level           int
		verifiedListing bool
		wantForbidden   bool
	}{
		{"low level, no verified listing", 1, false, true},
		{"low level, verified listing", 1, true, false},
		{"threshold level, no listing", 2, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			seller := f.profile(t, models.RoleSeller, tt.level)
			f.listing(t, seller.ID, func(l *models.Listing) { l.ListingVerified = tt.verifiedListing })
			buyer := f.profile(t, models.RoleBuyer, 3)
			intent := f.intent(t, buyer.ID)

			_, err := f.svc.RecordSwipe(ctx, seller.ID, yesOnIntent(intent.ID))
			if tt.wantForbidden {
				var me *Error
				if !errors.As(err, &me) || me.Kind != KindForbidden {
					t.Fatalf("err = %v, want forbidden", err)
				}
				if me.Required != 2 || me.Current != tt.level {
					t.Errorf("levels = %d / %d, want 2 / %d", me.Required, me.Current, tt.level)
				}
				if n := f.count(t, &models.Swipe{}); n != 0 {
					t.Errorf("gate rejection left %d swipe rows", n)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRecordSwipe_UngatedCombinations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := f.profile(t, models.RoleBuyerAgent, 0)
	buyer := f.profile(t, models.RoleBuyer, 0)

	if _, err := f.svc.RecordSwipe(ctx, agent.ID, yesOnListing("any-listing")); err != nil {
		t.Errorf("agent yes on listing: %v", err)
	}
	result, err := f.svc.RecordSwipe(ctx, buyer.ID, yesOnIntent("any-intent"))
	if err != nil {
		t.Fatalf("buyer yes on intent: %v", err)
	}
	if result.IsRequest || result.Matched {
		t.Errorf("result = %+v, want plain swipe", result)
	}
}

func TestRecordSwipe_IdempotentWithoutMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.party(t)

	first, err := f.svc.RecordSwipe(ctx, p.buyer.ID, yesOnListing(p.listing.ID))
	if err != nil {
		t.Fatalf("first swipe: %v", err)
	}
	second, err := f.svc.RecordSwipe(ctx, p.buyer.ID, yesOnListing(p.listing.ID))
	if err != nil {
		t.Fatalf("second swipe: %v", err)
	}

	if first.Swipe.ID != second.Swipe.ID {
		t.Errorf("swipe ID changed: %s -> %s", first.Swipe.ID, second.Swipe.ID)
	}
	if first.Matched != second.Matched || second.Matched {
		t.Errorf("matched = %v then %v, want false both times", first.Matched, second.Matched)
	}
	if n := f.count(t, &models.Swipe{}); n != 1 {
		t.Errorf("swipe rows = %d, want 1", n)
	}
}

func TestRecordSwipe_MutualMatchBuyerFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.party(t)

	if _, err := f.svc.RecordSwipe(ctx, p.buyer.ID, yesOnListing(p.listing.ID)); err != nil {
		t.Fatalf("buyer swipe: %v", err)
	}
	result, err := f.svc.RecordSwipe(ctx, p.seller.ID, yesOnIntent(p.intent.ID))
	if err != nil {
		t.Fatalf("seller swipe: %v", err)
	}
	if !result.Matched || result.DealRoomID == nil {
		t.Fatalf("result = %+v, want matched with a deal room", result)
	}
	if result.IsRequest {
		t.Error("seller swipe reported as a request")
	}

	detail, err := f.db.GetDealRoomDetail(ctx, *result.DealRoomID)
	if err != nil {
		t.Fatalf("load deal room: %v", err)
	}
	if detail.Match.ListingID != p.listing.ID || detail.Match.BuyerID != p.buyer.ID || detail.Match.SellerID != p.seller.ID {
		t.Errorf("match = %+v, want the party triple", detail.Match)
	}
	if detail.Match.MatchScore != 0.8 || detail.Match.Explanation != "Mutual acceptance" {
		t.Errorf("match score/explanation = %v / %q", detail.Match.MatchScore, detail.Match.Explanation)
	}
	if detail.Room.Status != models.DealRoomStatusMatched {
		t.Errorf("room status = %q, want matched", detail.Room.Status)
	}

	roles := map[models.Role]string{}
	for _, part := range detail.Participants {
		roles[part.RoleInDeal] = part.ProfileID
	}
	if len(detail.Participants) != 2 || roles[models.RoleBuyer] != p.buyer.ID || roles[models.RoleSeller] != p.seller.ID {
		t.Errorf("participants = %+v, want buyer and seller", detail.Participants)
	}
	if detail.ConversationID == "" {
		t.Error("no conversation created")
	}

	perAssignee := map[string]int{}
	for i, task := range detail.Tasks {
		if task.Status != models.TaskStatusTodo {
			t.Errorf("task %q status = %q, want todo", task.Title, task.Status)
		}
		if task.OrderIndex != i {
			t.Errorf("task %q order = %d, want %d", task.Title, task.OrderIndex, i)
		}
		if task.DueAt == nil || !task.DueAt.After(testNow) {
			t.Errorf("task %q due_at = %v, want after %v", task.Title, task.DueAt, testNow)
		}
		perAssignee[task.AssigneeProfileID]++
	}
	if perAssignee[p.buyer.ID] != 3 || perAssignee[p.seller.ID] != 2 {
		t.Errorf("tasks per assignee = %v, want 3 buyer / 2 seller", perAssignee)
	}

	if got := f.pub.count("deal.matched"); got != 1 {
		t.Errorf("deal.matched published %d times, want 1", got)
	}
}

func TestRecordSwipe_MutualMatchSellerFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.party(t)

	first, err := f.svc.RecordSwipe(ctx, p.seller.ID, yesOnIntent(p.intent.ID))
	if err != nil {
		t.Fatalf("seller swipe: %v", err)
	}
	if first.Matched {
		t.Fatal("seller swipe matched before the buyer said yes")
	}

	result, err := f.svc.RecordSwipe(ctx, p.buyer.ID, yesOnListing(p.listing.ID))
	if err != nil {
		t.Fatalf("buyer swipe: %v", err)
	}
	if !result.Matched || result.DealRoomID == nil || !result.IsRequest {
		t.Errorf("result = %+v, want a matched request", result)
	}
	if n := f.count(t, &models.Match{}); n != 1 {
		t.Errorf("match rows = %d, want 1", n)
	}
	if got := f.pub.count("swipe.request"); got != 0 {
		t.Errorf("swipe.request published %d times for a completed match", got)
	}
}

func TestRecordSwipe_ReissueDoesNotDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.party(t)

	if _, err := f.svc.RecordSwipe(ctx, p.buyer.ID, yesOnListing(p.listing.ID)); err != nil {
		t.Fatalf("buyer swipe: %v", err)
	}
	first, err := f.svc.RecordSwipe(ctx, p.seller.ID, yesOnIntent(p.intent.ID))
	if err != nil || !first.Matched {
		t.Fatalf("first seller swipe: %+v, %v", first, err)
	}

	again, err := f.svc.RecordSwipe(ctx, p.seller.ID, yesOnIntent(p.intent.ID))
	if err != nil {
		t.Fatalf("repeat seller swipe: %v", err)
	}
	buyerAgain, err := f.svc.RecordSwipe(ctx, p.buyer.ID, yesOnListing(p.listing.ID))
	if err != nil {
		t.Fatalf("repeat buyer swipe: %v", err)
	}

	for _, r := range []*SwipeResult{again, buyerAgain} {
		if !r.Matched || r.DealRoomID == nil || *r.DealRoomID != *first.DealRoomID {
			t.Errorf("repeat result = %+v, want existing room %s", r, *first.DealRoomID)
		}
	}
	if n := f.count(t, &models.Match{}); n != 1 {
		t.Errorf("match rows = %d, want 1", n)
	}
	if n := f.count(t, &models.DealRoom{}); n != 1 {
		t.Errorf("deal room rows = %d, want 1", n)
	}
	if n := f.count(t, &models.Task{}); n != 5 {
		t.Errorf("task rows = %d, want 5", n)
	}
	if got := f.pub.count("deal.matched"); got != 1 {
		t.Errorf("deal.matched published %d times, want 1", got)
	}
}

func TestRecordSwipe_ConcurrentConvergence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.party(t)

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*SwipeResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i], errs[i] = f.svc.RecordSwipe(ctx, p.buyer.ID, yesOnListing(p.listing.ID))
			} else {
				results[i], errs[i] = f.svc.RecordSwipe(ctx, p.seller.ID, yesOnIntent(p.intent.ID))
			}
		}(i)
	}
	wg.Wait()

	var roomID string
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if !results[i].Matched {
			continue
		}
		if roomID == "" {
			roomID = *results[i].DealRoomID
		} else if *results[i].DealRoomID != roomID {
			t.Errorf("worker %d got room %s, want %s", i, *results[i].DealRoomID, roomID)
		}
	}

	if n := f.count(t, &models.Match{}); n != 1 {
		t.Errorf("match rows = %d, want 1", n)
	}
	if n := f.count(t, &models.DealRoom{}); n != 1 {
		t.Errorf("deal room rows = %d, want 1", n)
	}
	if n := f.count(t, &models.DealParticipant{}); n != 2 {
		t.Errorf("participant rows = %d, want 2", n)
	}
}

func TestRecordSwipe_FlipAfterMatchKeepsDealRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.party(t)

	f.svc.RecordSwipe(ctx, p.buyer.ID, yesOnListing(p.listing.ID))
	if r, err := f.svc.RecordSwipe(ctx, p.seller.ID, yesOnIntent(p.intent.ID)); err != nil || !r.Matched {
		t.Fatalf("match: %+v, %v", r, err)
	}

	flipped, err := f.svc.RecordSwipe(ctx, p.buyer.ID, SwipeRequest{
		TargetType: models.TargetTypeListing, TargetID: p.listing.ID, Direction: models.DirectionNo,
	})
	if err != nil {
		t.Fatalf("flip: %v", err)
	}
	if flipped.Swipe.Direction != models.DirectionNo || flipped.Matched {
		t.Errorf("flip result = %+v", flipped)
	}
	if n := f.count(t, &models.DealRoom{}); n != 1 {
		t.Errorf("deal room rows = %d after flip, want 1", n)
	}
}

func TestRecordSwipe_NoMatchOnUnrelatedListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.party(t)
	otherSeller := f.profile(t, models.RoleSeller, 2)
	otherListing := f.listing(t, otherSeller.ID)

	f.svc.RecordSwipe(ctx, p.buyer.ID, yesOnListing(otherListing.ID))
	result, err := f.svc.RecordSwipe(ctx, p.seller.ID, yesOnIntent(p.intent.ID))
	if err != nil {
		t.Fatalf("seller swipe: %v", err)
	}
	if result.Matched {
		t.Errorf("seller matched on a listing they do not own: %+v", result)
	}
	if n := f.count(t, &models.Match{}); n != 0 {
		t.Errorf("match rows = %d, want 0", n)
	}
}

func TestRecordSwipe_NoMatchOnInactiveListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.profile(t, models.RoleBuyer, 3)
	seller := f.profile(t, models.RoleSeller, 2)
	sold := f.listing(t, seller.ID, func(l *models.Listing) { l.Status = models.ListingStatusSold })
	intent := f.intent(t, buyer.ID)

	f.svc.RecordSwipe(ctx, seller.ID, yesOnIntent(intent.ID))
	result, err := f.svc.RecordSwipe(ctx, buyer.ID, yesOnListing(sold.ID))
	if err != nil {
		t.Fatalf("buyer swipe: %v", err)
	}
	if result.Matched {
		t.Errorf("matched on a sold listing: %+v", result)
	}
}

// failingRoomStore stores matches but cannot create deal rooms
type failingRoomStore struct {
	*database.GormDB
}

func (failingRoomStore) CreateDealRoom(context.Context, database.DealRoomSeed) (*models.DealRoom, bool, error) {
	return nil, false, errors.New("connection reset")
}

func TestRecordSwipe_PartialProvisioning(t *testing.T) {
	healthy := newFixture(t)
	ctx := context.Background()
	p := healthy.party(t)
	broken := newFixtureWithStore(t, healthy.db, failingRoomStore{healthy.db})

	if _, err := broken.svc.RecordSwipe(ctx, p.buyer.ID, yesOnListing(p.listing.ID)); err != nil {
		t.Fatalf("buyer swipe: %v", err)
	}
	result, err := broken.svc.RecordSwipe(ctx, p.seller.ID, yesOnIntent(p.intent.ID))
	if err != nil {
		t.Fatalf("seller swipe should still succeed, got %v", err)
	}
	if result.Matched || result.DealRoomID != nil {
		t.Errorf("result = %+v, want matched=false without a room", result)
	}
	if result.Swipe == nil || result.Swipe.Direction != models.DirectionYes {
		t.Errorf("swipe not reported: %+v", result.Swipe)
	}
	if n := healthy.count(t, &models.Match{}); n != 1 {
		t.Fatalf("match rows = %d, want the orphaned match", n)
	}

	// the direct provisioning error carries the orphaned match
	_, err = broken.svc.Provision(ctx, Triple{ListingID: p.listing.ID, BuyerID: p.buyer.ID, SellerID: p.seller.ID})
	var me *Error
	if !errors.As(err, &me) || me.Kind != KindPartialProvisioning || me.MatchID == "" {
		t.Errorf("Provision err = %v, want partial provisioning with a match id", err)
	}

	repair, err := healthy.svc.RepairOrphanedMatches(ctx)
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if repair.Scanned != 1 || repair.Repaired != 1 {
		t.Errorf("repair = %+v, want 1 scanned / 1 repaired", repair)
	}

	// a retry after repair sees the existing room
	retry, err := healthy.svc.RecordSwipe(ctx, p.seller.ID, yesOnIntent(p.intent.ID))
	if err != nil || !retry.Matched {
		t.Errorf("retry = %+v, %v, want matched", retry, err)
	}
	if n := healthy.count(t, &models.DealRoom{}); n != 1 {
		t.Errorf("deal room rows = %d, want 1", n)
	}
}

func TestMatchmake_RanksEligibleListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.profile(t, models.RoleSeller, 2)
	buyer := f.profile(t, models.RoleBuyer, 3)
	intent := f.intent(t, buyer.ID)
	expired := testNow.Add(-30 * 24 * time.Hour)

	best := f.listing(t, seller.ID)
	over := f.listing(t, seller.ID, func(l *models.Listing) { l.Price = 1000000 })
	worst := f.listing(t, seller.ID, func(l *models.Listing) {
		l.PropertyType = "condo"
		l.Features = []string{"pool"}
		l.Price = 2000000
	})
	f.listing(t, seller.ID, func(l *models.Listing) { l.ListingVerified = false })
	f.listing(t, seller.ID, func(l *models.Listing) { l.FreshnessVerifiedAt = &expired })

	if err := f.db.CreateListingMedia(ctx, []models.ListingMedia{
		{ListingID: best.ID, StoragePath: "2.jpg", MediaType: models.MediaTypeImage, OrderIndex: 1},
		{ListingID: best.ID, StoragePath: "1.jpg", MediaType: models.MediaTypeImage, OrderIndex: 0},
	}); err != nil {
		t.Fatalf("create media: %v", err)
	}

	cards, err := f.svc.Matchmake(ctx, intent.ID)
	if err != nil {
		t.Fatalf("Matchmake: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("got %d cards, want 3 eligible listings", len(cards))
	}
	for i := 1; i < len(cards); i++ {
		if cards[i].Score > cards[i-1].Score {
			t.Errorf("card %d score %v > card %d score %v", i, cards[i].Score, i-1, cards[i-1].Score)
		}
	}

	wantOrder := []string{best.ID, over.ID, worst.ID}
	for i, id := range wantOrder {
		if cards[i].Listing.ID != id {
			t.Errorf("card %d = %s, want %s", i, cards[i].Listing.ID, id)
		}
	}
	if len(cards[0].Media) != 2 || cards[0].Media[0].StoragePath != "1.jpg" {
		t.Errorf("best media = %+v, want ordered by order_index", cards[0].Media)
	}
	if cards[1].Media == nil {
		t.Error("media should be an empty list, not nil")
	}
}

func TestMatchmake_Errors(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Matchmake(context.Background(), ""); KindOf(err) != KindValidation {
		t.Errorf("empty id: err = %v, want validation", err)
	}
	if _, err := f.svc.Matchmake(context.Background(), "missing"); KindOf(err) != KindNotFound {
		t.Errorf("unknown id: err = %v, want not found", err)
	}
}

func TestMatchmake_NoWrites(t *testing.T) {
	f := newFixture(t)
	p := f.party(t)

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Matchmake(context.Background(), p.intent.ID); err != nil {
			t.Fatalf("Matchmake: %v", err)
		}
	}
	if n := f.count(t, &models.Swipe{}) + f.count(t, &models.Match{}); n != 0 {
		t.Errorf("matchmake wrote %d rows", n)
	}
}

func TestListRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.party(t)

	if _, err := f.svc.RecordSwipe(ctx, p.buyer.ID, yesOnListing(p.listing.ID)); err != nil {
		t.Fatalf("buyer swipe: %v", err)
	}

	requests, err := f.svc.ListRequests(ctx, p.seller.ID)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(requests))
	}
	if requests[0].BuyerID != p.buyer.ID || len(requests[0].BuyerIntentIDs) != 1 || requests[0].BuyerIntentIDs[0] != p.intent.ID {
		t.Errorf("request = %+v", requests[0])
	}

	if _, err := f.svc.RecordSwipe(ctx, p.seller.ID, yesOnIntent(p.intent.ID)); err != nil {
		t.Fatalf("seller swipe: %v", err)
	}
	requests, err = f.svc.ListRequests(ctx, p.seller.ID)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(requests) != 0 {
		t.Errorf("accepted request still pending: %+v", requests)
	}
}

func TestGetDealRoom_ParticipantsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.party(t)
	outsider := f.profile(t, models.RoleBuyer, 3)

	f.svc.RecordSwipe(ctx, p.buyer.ID, yesOnListing(p.listing.ID))
	result, err := f.svc.RecordSwipe(ctx, p.seller.ID, yesOnIntent(p.intent.ID))
	if err != nil || !result.Matched {
		t.Fatalf("match: %+v, %v", result, err)
	}

	if _, err := f.svc.GetDealRoom(ctx, p.buyer.ID, *result.DealRoomID); err != nil {
		t.Errorf("buyer: %v", err)
	}
	if _, err := f.svc.GetDealRoom(ctx, outsider.ID, *result.DealRoomID); KindOf(err) != KindForbidden {
		t.Errorf("outsider: err = %v, want forbidden", err)
	}
	if _, err := f.svc.GetDealRoom(ctx, p.buyer.ID, "missing"); KindOf(err) != KindNotFound {
		t.Errorf("missing room: err = %v, want not found", err)
	}
}
