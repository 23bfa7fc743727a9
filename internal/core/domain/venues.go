package domain

// DefaultVenues is the built-in club list, used when the venues table is
// unreachable at startup. Kept in sync with migrations/001_venues.sql.
func DefaultVenues() []Venue {
	return []Venue{
		{
			ID:       "haje",
			Name:     "GamePoint Háje",
			Address:  "Opatovská 874/25, 149 00 Praha 11",
			Location: GeoPoint{Lat: 50.0309, Lon: 14.5262},
		},
		{
			ID:       "andel",
			Name:     "GamePoint Anděl",
			Address:  "Nádražní 42, 150 00 Praha 5",
			Location: GeoPoint{Lat: 50.0697, Lon: 14.4037},
		},
		{
			ID:       "flora",
			Name:     "GamePoint Flora",
			Address:  "Vinohradská 151, 130 00 Praha 3",
			Location: GeoPoint{Lat: 50.0781, Lon: 14.4645},
		},
	}
}
