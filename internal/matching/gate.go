package matching

import (
	"context"
	"fmt"

	"real-estate-matching/internal/metrics"
	"real-estate-matching/internal/models"
)

// VerifiedListingChecker reports whether a seller owns a verified listing
type VerifiedListingChecker interface {
	SellerHasVerifiedListing(ctx context.Context, sellerID string) (bool, error)
}

// Gate enforces verification requirements on yes swipes.
// No swipes and role/target combinations it does not name always pass.
type Gate struct {
	buyerMinLevel  int
	sellerMinLevel int
	listings       VerifiedListingChecker
}

// NewGate creates a gate with the given thresholds
func NewGate(buyerMinLevel, sellerMinLevel int, listings VerifiedListingChecker) *Gate {
	return &Gate{
		buyerMinLevel:  buyerMinLevel,
		sellerMinLevel: sellerMinLevel,
		listings:       listings,
	}
}

// Check returns a KindForbidden error if actor may not swipe direction on targetType
func (g *Gate) Check(ctx context.Context, actor *models.Profile, targetType models.TargetType, direction models.Direction) error {
	const op = "verification gate"

	if direction != models.DirectionYes {
		return nil
	}

	switch {
	case actor.Role == models.RoleBuyer && targetType == models.TargetTypeListing:
		if actor.VerificationLevel >= g.buyerMinLevel {
			return nil
		}
		metrics.GateRejections.WithLabelValues(string(actor.Role)).Inc()
		return forbiddenError(op,
			fmt.Sprintf("Verification level %d required to swipe YES", g.buyerMinLevel),
			g.buyerMinLevel, actor.VerificationLevel)

	case actor.Role == models.RoleSeller && targetType == models.TargetTypeBuyerIntent:
		if actor.VerificationLevel >= g.sellerMinLevel {
			return nil
		}
		verified, err := g.listings.SellerHasVerifiedListing(ctx, actor.ID)
		if err != nil {
			return storeError(op, "Failed to check seller verification", err)
		}
		if verified {
			return nil
		}
		metrics.GateRejections.WithLabelValues(string(actor.Role)).Inc()
		return forbiddenError(op,
			fmt.Sprintf("Verified listing or verification level %d required to swipe YES", g.sellerMinLevel),
			g.sellerMinLevel, actor.VerificationLevel)
	}

	return nil
}
