// Package scoring rates how well a listing fits a buyer intent.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"real-estate-matching/internal/geo"
	"real-estate-matching/internal/models"
)

// Weights are the per-component contributions to the total score
type Weights struct {
	Budget       float64
	BedsBaths    float64
	PropertyType float64
	MustHaves    float64
	Dealbreaker  float64
	Commute      float64
}

// DefaultWeights sum to 1.0 before the dealbreaker penalty
var DefaultWeights = Weights{
	Budget:       0.30,
	BedsBaths:    0.20,
	PropertyType: 0.20,
	MustHaves:    0.15,
	Dealbreaker:  -0.50,
	Commute:      0.15,
}

// Result is the outcome of scoring one listing against one intent
type Result struct {
	Score          float64
	Explanation    string
	CommuteMinutes *int
}

// Engine scores listings. It is pure and safe for concurrent use.
type Engine struct {
	weights                 Weights
	estimator               geo.CommuteEstimator
	defaultAnchorMaxMinutes int
}

// NewEngine creates a scoring engine with DefaultWeights
func NewEngine(estimator geo.CommuteEstimator, defaultAnchorMaxMinutes int) *Engine {
	if estimator == nil {
		estimator = geo.NewStraightLine(geo.DefaultSpeedMPH)
	}
	if defaultAnchorMaxMinutes <= 0 {
		defaultAnchorMaxMinutes = 60
	}
	return &Engine{
		weights:                 DefaultWeights,
		estimator:               estimator,
		defaultAnchorMaxMinutes: defaultAnchorMaxMinutes,
	}
}

// Score rates listing against intent. The result is always within [0, 1].
func (e *Engine) Score(intent *models.BuyerIntent, listing *models.Listing) Result {
	var score float64

	budget := BudgetFit(listing.Price, intent.BudgetMin, intent.BudgetMax)
	score += budget * e.weights.Budget

	score += BedsBathsFit(listing.Beds, listing.Baths, intent.BedsMin, intent.BathsMin) * e.weights.BedsBaths

	typeFit := PropertyTypeFit(listing.PropertyType, intent.PropertyTypes)
	if typeFit {
		score += e.weights.PropertyType
	}

	matched, fraction := MustHaveFit(listing.Features, intent.MustHaves)
	score += fraction * e.weights.MustHaves

	if HasDealbreaker(listing.Features, listing.Description, intent.Dealbreakers) {
		score += e.weights.Dealbreaker
	}

	var commute *int
	if minutes, ok := e.commuteEstimate(intent, listing); ok {
		commute = &minutes
		score += CommuteFit(minutes, e.maxAnchorMinutes(intent.CommuteAnchors)) * e.weights.Commute
	}

	// explanation order: budget, commute, must-haves, property type
	var parts []string
	switch {
	case budget == 1:
		parts = append(parts, "Budget fit")
	case intent.BudgetMin != nil && listing.Price < *intent.BudgetMin:
		parts = append(parts, "Below budget")
	}
	if commute != nil {
		parts = append(parts, fmt.Sprintf("%d min commute estimate", *commute))
	}
	if len(matched) > 0 {
		parts = append(parts, "Has "+strings.Join(matched, ", "))
	}
	if typeFit && listing.PropertyType != "" {
		parts = append(parts, listing.PropertyType+" match")
	}

	explanation := "Match found"
	if len(parts) > 0 {
		explanation = strings.Join(parts, ", ")
	}

	return Result{
		Score:          clamp(score),
		Explanation:    explanation,
		CommuteMinutes: commute,
	}
}

// commuteEstimate returns the rounded mean commute in minutes across the intent's anchors
func (e *Engine) commuteEstimate(intent *models.BuyerIntent, listing *models.Listing) (int, bool) {
	if len(intent.CommuteAnchors) == 0 {
		return 0, false
	}
	anchors := make([]geo.Point, 0, len(intent.CommuteAnchors))
	for _, a := range intent.CommuteAnchors {
		anchors = append(anchors, geo.Point{Lat: a.Lat, Lng: a.Lng})
	}
	mean, ok := geo.AverageMinutes(e.estimator, geo.Point{Lat: listing.Lat, Lng: listing.Lng}, anchors)
	if !ok {
		return 0, false
	}
	return int(math.Round(mean)), true
}

func (e *Engine) maxAnchorMinutes(anchors []models.CommuteAnchor) int {
	longest := 0
	for _, a := range anchors {
		m := a.MaxMinutes
		if m <= 0 {
			m = e.defaultAnchorMaxMinutes
		}
		if m > longest {
			longest = m
		}
	}
	if longest == 0 {
		longest = e.defaultAnchorMaxMinutes
	}
	return longest
}

// BudgetFit returns 1 inside [min, max], 0.5 below min, and decays linearly to 0
// at 50% over max. A nil bound is unbounded on that side.
func BudgetFit(price float64, budgetMin, budgetMax *float64) float64 {
	if budgetMin != nil && price < *budgetMin {
		return 0.5
	}
	if budgetMax == nil || price <= *budgetMax {
		return 1
	}
	if *budgetMax <= 0 {
		return 0
	}
	overage := (price - *budgetMax) / *budgetMax
	return math.Max(0, 1-2*overage)
}

// BedsBathsFit averages the bed and bath ratios, each capped at 1.
// A zero requirement gives full credit.
func BedsBathsFit(beds int, baths float64, bedsMin int, bathsMin float64) float64 {
	bedFit := 1.0
	if bedsMin > 0 {
		bedFit = math.Min(1, float64(beds)/float64(bedsMin))
	}
	bathFit := 1.0
	if bathsMin > 0 {
		bathFit = math.Min(1, baths/bathsMin)
	}
	return (bedFit + bathFit) / 2
}

// PropertyTypeFit reports whether listingType is acceptable. An empty list accepts any type.
func PropertyTypeFit(listingType string, accepted []string) bool {
	if len(accepted) == 0 {
		return true
	}
	for _, t := range accepted {
		if strings.EqualFold(t, listingType) {
			return true
		}
	}
	return false
}

// MustHaveFit returns the must-haves found in features and the fraction they represent.
// Matching is case-insensitive substring; blank terms are ignored.
func MustHaveFit(features, mustHaves []string) (matched []string, fraction float64) {
	terms := nonBlank(mustHaves)
	if len(terms) == 0 {
		return nil, 0
	}
	lowered := lowerAll(features)
	for _, term := range terms {
		if containsAny(lowered, strings.ToLower(term)) {
			matched = append(matched, term)
		}
	}
	return matched, float64(len(matched)) / float64(len(terms))
}

// HasDealbreaker reports whether any dealbreaker appears in a feature or the description
func HasDealbreaker(features []string, description string, dealbreakers []string) bool {
	lowered := lowerAll(features)
	desc := strings.ToLower(description)
	for _, term := range nonBlank(dealbreakers) {
		t := strings.ToLower(term)
		if containsAny(lowered, t) || strings.Contains(desc, t) {
			return true
		}
	}
	return false
}

// CommuteFit scores an estimated commute against the largest anchor limit.
// Within the limit it falls from 1 to 0.5; past it, it keeps falling and floors at 0.
func CommuteFit(minutes, maxMinutes int) float64 {
	if maxMinutes <= 0 {
		return 0
	}
	est := float64(minutes)
	limit := float64(maxMinutes)
	if est <= limit {
		return 1 - est/limit*0.5
	}
	return math.Max(0, 0.5-(est-limit)/limit)
}

func clamp(score float64) float64 {
	return math.Max(0, math.Min(1, score))
}

func nonBlank(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if strings.TrimSpace(t) != "" {
			out = append(out, strings.TrimSpace(t))
		}
	}
	return out
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

func containsAny(haystacks []string, needle string) bool {
	for _, h := range haystacks {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}
