package memory

import (
	"time"

	"ganjaGuideAPI/internal/types/vendor"
)

// FixtureVendors is the mock dispensary catalog (Anchorage area). It doubles
// as the seed source for the one-time catalog migration into postgres.
func FixtureVendors() []vendor.Vendor {
	created := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	weekHours := map[string]string{
		"monday":    "10:00-22:00",
		"tuesday":   "10:00-22:00",
		"wednesday": "10:00-22:00",
		"thursday":  "10:00-22:00",
		"friday":    "10:00-23:00",
		"saturday":  "10:00-23:00",
		"sunday":    "12:00-20:00",
	}

	return []vendor.Vendor{
		{
			ID:   "vnd-midnight-greenery",
			Name: "Midnight Greenery",
			Location: vendor.Location{
				Address:   "2042 Spenard Rd",
				City:      "Anchorage",
				Latitude:  61.2012,
				Longitude: -149.9102,
			},
			Hours:   weekHours,
			Contact: vendor.Contact{Phone: "907-555-0142", Instagram: "@midnightgreenery", Website: "https://midnightgreenery.example"},
			Deals: vendor.Deals{
				Birthday: &vendor.Deal{Description: "Free pre-roll on your birthday", Restriction: "valid ID required"},
				Daily: map[string][]vendor.Deal{
					"monday": {{Description: "20% off edibles", Discount: "20%"}},
					"friday": {{Description: "Buy 2 get 1 half off cartridges"}},
				},
			},
			IsPartner: true,
			HasQrCode: true,
			Rating:    4.7,
			CreatedAt: created,
		},
		{
			ID:   "vnd-aurora-leaf",
			Name: "Aurora Leaf Co",
			Location: vendor.Location{
				Address:   "601 W Northern Lights Blvd",
				City:      "Anchorage",
				Latitude:  61.1953,
				Longitude: -149.8944,
			},
			Hours:   weekHours,
			Contact: vendor.Contact{Phone: "907-555-0178", Facebook: "auroraleafco"},
			Deals: vendor.Deals{
				Birthday: &vendor.Deal{Description: "10% off entire purchase during birthday week"},
				Daily: map[string][]vendor.Deal{
					"wednesday": {{Description: "Wax Wednesday: 15% off concentrates", Discount: "15%"}},
				},
			},
			IsPartner: true,
			HasQrCode: true,
			Rating:    4.5,
			CreatedAt: created,
		},
		{
			ID:   "vnd-glacier-buds",
			Name: "Glacier Buds",
			Location: vendor.Location{
				Address:   "8639 Old Seward Hwy",
				City:      "Anchorage",
				Latitude:  61.1405,
				Longitude: -149.8652,
			},
			Hours:   weekHours,
			Contact: vendor.Contact{Phone: "907-555-0110"},
			Deals: vendor.Deals{
				Daily: map[string][]vendor.Deal{
					"sunday": {{Description: "Sunday flower ounce special"}},
				},
				Special: []vendor.SpecialDeal{
					{Title: "Grand reopening", Description: "25% storewide"},
				},
			},
			IsPartner: false,
			HasQrCode: false,
			Rating:    4.2,
			CreatedAt: created,
		},
		{
			ID:   "vnd-tundra-therapeutics",
			Name: "Tundra Therapeutics",
			Location: vendor.Location{
				Address:   "1330 E 5th Ave",
				City:      "Anchorage",
				Latitude:  61.2181,
				Longitude: -149.8631,
			},
			Hours:   weekHours,
			Contact: vendor.Contact{Phone: "907-555-0195", Website: "https://tundratherapeutics.example"},
			Deals: vendor.Deals{
				Birthday: &vendor.Deal{Description: "Birthday gift bag with any purchase"},
				Daily: map[string][]vendor.Deal{
					"tuesday":  {{Description: "Two-fer Tuesday on pre-rolls"}},
					"saturday": {{Description: "10% off for veterans", Discount: "10%", Restriction: "with military ID"}},
				},
			},
			IsPartner: false,
			HasQrCode: true,
			Rating:    4.4,
			CreatedAt: created,
		},
		{
			ID:   "vnd-denali-dank",
			Name: "Denali Dank Supply",
			Location: vendor.Location{
				Address:   "12870 Old Glenn Hwy",
				City:      "Eagle River",
				Latitude:  61.3214,
				Longitude: -149.5678,
			},
			Hours:   weekHours,
			Contact: vendor.Contact{Phone: "907-555-0133", Instagram: "@denalidank"},
			Deals: vendor.Deals{
				Special: []vendor.SpecialDeal{
					{Title: "First visit", Description: "15% off your first purchase"},
				},
			},
			IsPartner: false,
			HasQrCode: false,
			Rating:    3.9,
			CreatedAt: created,
		},
	}
}

// FixtureFeaturedDeals is the curated deal placements shown on the home
// surface.
func FixtureFeaturedDeals() []vendor.FeaturedDeal {
	return []vendor.FeaturedDeal{
		{
			ID:       "feat-001",
			VendorID: "vnd-midnight-greenery",
			DealType: vendor.DealDaily,
			Title:    "20% off edibles every Monday",
			Position: 1,
		},
		{
			ID:       "feat-002",
			VendorID: "vnd-aurora-leaf",
			DealType: vendor.DealBirthday,
			Title:    "Birthday week: 10% off everything",
			Position: 2,
		},
		{
			ID:          "feat-003",
			VendorID:    "vnd-glacier-buds",
			DealType:    vendor.DealSpecial,
			Title:       "Grand reopening, 25% storewide",
			Description: "Limited time",
			Position:    3,
		},
	}
}
