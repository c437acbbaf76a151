package features

import "strings"

// Reference bundles the lookup tables the sub-scorers consult: market
// prices, expected route durations, and the operational-region allow-list.
// The zero value is unusable; construct with NewReference or supply your
// own tables.
type Reference struct {
	marketPrices map[string]float64
	routeHours   map[routeKey]float64
	regions      []string
}

type routeKey struct {
	from string
	to   string
}

// defaultRouteHours is the assumed leg duration when neither endpoint
// resolves to a known route.
const defaultRouteHours = 24.0

// NewReference returns the built-in tables for the Indian distribution
// network the service launched with.
func NewReference() *Reference {
	return &Reference{
		marketPrices: map[string]float64{
			"paracetamol 500mg":  30.0,
			"crocin advance":     50.0,
			"dolo 650":           32.0,
			"amoxicillin 250mg":  85.0,
			"azithromycin 500mg": 120.0,
			"cetirizine 10mg":    45.0,
			"metformin 500mg":    60.0,
			"omeprazole 20mg":    75.0,
		},
		routeHours: map[routeKey]float64{
			{"bangalore", "chennai"}: 6,
			{"chennai", "mumbai"}:    24,
			{"mumbai", "delhi"}:      24,
			{"delhi", "kolkata"}:     26,
			{"mumbai", "pune"}:       4,
			{"bangalore", "mumbai"}:  18,
			{"delhi", "jaipur"}:      6,
			{"hyderabad", "chennai"}: 10,
		},
		regions: []string{
			"mumbai", "delhi", "bangalore", "bengaluru", "chennai", "kolkata",
			"hyderabad", "pune", "jaipur", "ahmedabad", "lucknow", "nagpur",
		},
	}
}

// MarketPrice returns the reference market price for a drug name, matched
// case-insensitively. ok is false when the drug is not in the table.
func (r *Reference) MarketPrice(drugName string) (float64, bool) {
	p, ok := r.marketPrices[strings.ToLower(strings.TrimSpace(drugName))]
	return p, ok
}

// RouteHours returns the expected leg duration between two free-text
// locations. Either endpoint failing to resolve to a known place falls back
// to the default. Routes are looked up in both directions.
func (r *Reference) RouteHours(fromLocation, toLocation string) float64 {
	from := r.resolvePlace(fromLocation)
	to := r.resolvePlace(toLocation)
	if from == "" || to == "" {
		return defaultRouteHours
	}
	if h, ok := r.routeHours[routeKey{from, to}]; ok {
		return h
	}
	if h, ok := r.routeHours[routeKey{to, from}]; ok {
		return h
	}
	return defaultRouteHours
}

// InRegion reports whether a free-text location mentions a place on the
// operational allow-list.
func (r *Reference) InRegion(location string) bool {
	return r.resolvePlace(location) != ""
}

func (r *Reference) resolvePlace(location string) string {
	loc := strings.ToLower(location)
	for _, region := range r.regions {
		if strings.Contains(loc, region) {
			return region
		}
	}
	return ""
}
