package dating

import (
	"math"
	"strings"

	"github.com/imadgeboyega/kiekky-matching/internal/matching"
)

const earthRadiusKM = 6371.0

// haversine returns the great-circle distance in kilometres
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

// effectiveLocation uses passport coordinates when passport mode is on.
// A passport without coordinates has no location.
func effectiveLocation(p *matching.Profile) (Coordinates, bool) {
	if p.IsPassportEnabled {
		if p.PassportLatitude == nil || p.PassportLongitude == nil {
			return Coordinates{}, false
		}
		return Coordinates{Lat: *p.PassportLatitude, Lon: *p.PassportLongitude}, true
	}
	if p.Latitude != nil && p.Longitude != nil {
		return Coordinates{Lat: *p.Latitude, Lon: *p.Longitude}, true
	}
	return Coordinates{}, false
}

// filterByDistance keeps candidates within the requester's max distance.
// Without requester coordinates it falls back to the same country when known.
func filterByDistance(requester *matching.Profile, candidates []*Candidate) []*Candidate {
	origin, ok := effectiveLocation(requester)
	if !ok {
		if requester.Country == nil || *requester.Country == "" {
			return candidates
		}
		kept := candidates[:0:0]
		for _, c := range candidates {
			if c.Profile.Country != nil && strings.EqualFold(*c.Profile.Country, *requester.Country) {
				kept = append(kept, c)
			}
		}
		return kept
	}

	maxDistance := maxDistanceKM(requester)

	kept := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		pos, ok := effectiveLocation(c.Profile)
		if !ok {
			continue
		}
		distance := haversine(origin.Lat, origin.Lon, pos.Lat, pos.Lon)
		if distance > maxDistance {
			continue
		}
		d := math.Round(distance*10) / 10
		c.DistanceKM = &d
		kept = append(kept, c)
	}
	return kept
}

// locationScope narrows the SQL candidate scan to the requester's area: a
// bounding box around the effective location, else the requester's country.
func locationScope(requester *matching.Profile) (*BoundingBox, string) {
	if origin, ok := effectiveLocation(requester); ok {
		return boundingBox(origin, maxDistanceKM(requester)), ""
	}
	if requester.Country != nil {
		return nil, *requester.Country
	}
	return nil, ""
}

func maxDistanceKM(p *matching.Profile) float64 {
	if p.MaxDistance <= 0 {
		return matching.DefaultMaxDistanceKM
	}
	return float64(p.MaxDistance)
}

// boundingBox encloses every point within km of origin. The longitude span
// widens to the full range when the circle reaches a pole or crosses the
// antimeridian.
func boundingBox(origin Coordinates, km float64) *BoundingBox {
	angular := km / earthRadiusKM
	latDelta := angular * 180 / math.Pi
	box := &BoundingBox{
		MinLat: math.Max(origin.Lat-latDelta, -90),
		MaxLat: math.Min(origin.Lat+latDelta, 90),
		MinLon: -180,
		MaxLon: 180,
	}
	if box.MinLat <= -90 || box.MaxLat >= 90 {
		return box
	}

	x := math.Sin(angular) / math.Cos(origin.Lat*math.Pi/180)
	if x >= 1 {
		return box
	}
	lonDelta := math.Asin(x) * 180 / math.Pi
	if origin.Lon-lonDelta >= -180 && origin.Lon+lonDelta <= 180 {
		box.MinLon, box.MaxLon = origin.Lon-lonDelta, origin.Lon+lonDelta
	}
	return box
}
