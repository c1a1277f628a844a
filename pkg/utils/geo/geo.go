package geo

import (
	"math"
	"regexp"
	"strconv"

	"github.com/sarops/medkit/pkg/model"
)

// earthRadiusKm is the mean Earth radius used for great-circle distances.
const earthRadiusKm = 6371.0

// Distance returns the haversine distance between two positions in km.
func Distance(a, b model.GeoPosition) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Nearest selects the hospital closest to the given position. The second
// return value is false when the candidate list is empty.
func Nearest(from model.GeoPosition, hospitals []model.Hospital) (model.Hospital, float64, bool) {
	if len(hospitals) == 0 {
		return model.Hospital{}, 0, false
	}

	best := hospitals[0]
	bestDist := Distance(from, best.Position)
	for _, h := range hospitals[1:] {
		if d := Distance(from, h.Position); d < bestDist {
			best = h
			bestDist = d
		}
	}
	return best, bestDist, true
}

var locationPattern = regexp.MustCompile(`Location:\s*(-?\d+(?:\.\d+)?),\s*(-?\d+(?:\.\d+)?)`)

// ExtractLatLon parses coordinates out of a rendered hospital summary such as
// "Test Hospital, Location: 12.35, 56.79 (Distance: 1.00 km)". When the text
// carries no "Location:" marker the second return value is false and the
// coordinates are unknown.
func ExtractLatLon(text string) (model.GeoPosition, bool) {
	m := locationPattern.FindStringSubmatch(text)
	if m == nil {
		return model.GeoPosition{}, false
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return model.GeoPosition{}, false
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return model.GeoPosition{}, false
	}

	return model.GeoPosition{Lat: lat, Lon: lon}, true
}
