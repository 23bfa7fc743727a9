package domain

import (
	"fmt"
	"net/url"
	"strconv"
)

// BuildDeepLinks produces directions and ride-hailing URIs from an origin
// and a venue. A nil venue yields empty links by contract; callers guard
// on venue presence before showing them.
//
// The URI layouts are fixed by the target apps. Coordinates are rendered
// with minimal precision loss and unescaped commas, which both schemes
// accept in query values.
func BuildDeepLinks(origin GeoPoint, venue *Venue) DeepLinks {
	if venue == nil {
		return DeepLinks{}
	}

	o := coord(origin)
	d := coord(venue.Location)

	return DeepLinks{
		Maps: fmt.Sprintf(
			"https://www.google.com/maps/dir/?api=1&origin=%s&destination=%s&travelmode=transit",
			o, d,
		),
		Uber: fmt.Sprintf(
			"https://m.uber.com/ul/?action=setPickup"+
				"&pickup[latitude]=%s&pickup[longitude]=%s"+
				"&dropoff[latitude]=%s&dropoff[longitude]=%s&dropoff[nickname]=%s",
			f(origin.Lat), f(origin.Lon),
			f(venue.Location.Lat), f(venue.Location.Lon),
			url.QueryEscape(venue.Name),
		),
		Bolt: fmt.Sprintf(
			"bolt://action/setPickup"+
				"?pickup_latitude=%s&pickup_longitude=%s"+
				"&destination_latitude=%s&destination_longitude=%s&destination_title=%s",
			f(origin.Lat), f(origin.Lon),
			f(venue.Location.Lat), f(venue.Location.Lon),
			url.QueryEscape(venue.Name),
		),
	}
}

func coord(p GeoPoint) string {
	return f(p.Lat) + "," + f(p.Lon)
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
