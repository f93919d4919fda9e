package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"ganjaGuideAPI/internal/geo"
	"ganjaGuideAPI/internal/store"
	"ganjaGuideAPI/internal/types/journey"
	"ganjaGuideAPI/internal/types/vendor"
)

// Travel-time model: flat city driving estimate, padded for traffic.
const (
	minutesPerMile = 3.0
	trafficFactor  = 1.3
)

type RouteService struct {
	store store.Store
}

func NewRouteService(st store.Store) *RouteService {
	return &RouteService{store: st}
}

// BuildRoute orders the chosen vendors nearest-first from the start location
// and chains point-to-point distances for the total. This is a greedy sort by
// distance from the start, not a travelling-salesman solve; for the handful
// of stops a deal run has it is close enough and predictable.
func (s *RouteService) BuildRoute(ctx context.Context, vendorIDs []string, start geo.Point, maxDistance float64) (*journey.Route, error) {
	if len(vendorIDs) == 0 {
		return &journey.Route{Stops: []journey.Stop{}}, nil
	}

	type candidate struct {
		vendor    *vendor.Vendor
		fromStart float64
	}

	var candidates []candidate
	for _, id := range vendorIDs {
		v, err := s.store.GetVendor(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("route vendor lookup failed: %w", err)
		}

		dist := geo.Distance(start, v.Coordinates())
		if maxDistance > 0 && dist > maxDistance {
			continue
		}
		candidates = append(candidates, candidate{vendor: v, fromStart: dist})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].fromStart < candidates[j].fromStart
	})

	stops := make([]journey.Stop, 0, len(candidates))
	total := 0.0
	prev := start
	for _, c := range candidates {
		leg := geo.Distance(prev, c.vendor.Coordinates())
		total += leg
		stops = append(stops, journey.Stop{
			VendorID:    c.vendor.ID,
			VendorName:  c.vendor.Name,
			Latitude:    c.vendor.Location.Latitude,
			Longitude:   c.vendor.Location.Longitude,
			HasQrCode:   c.vendor.HasQrCode,
			IsPartner:   c.vendor.IsPartner,
			LegDistance: leg,
		})
		prev = c.vendor.Coordinates()
	}

	return &journey.Route{
		Stops:            stops,
		TotalDistance:    total,
		EstimatedMinutes: estimateMinutes(total),
	}, nil
}

func estimateMinutes(distanceMiles float64) int {
	return int(math.Round(distanceMiles * minutesPerMile * trafficFactor))
}
