package chat

import (
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sarops/medkit/pkg/model"
	"github.com/sarops/medkit/pkg/utils/geo"
)

const hospitalMapFile = "hospital_map.html"

const hospitalMapTemplate = `<!DOCTYPE html>
<html>
<head>
  <title>Nearest hospital</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <style>#map { height: 100vh; }</style>
</head>
<body>
<div id="map"></div>
<script>
  var map = L.map('map').fitBounds([[%f, %f], [%f, %f]], {padding: [50, 50]});
  L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png').addTo(map);
  L.marker([%f, %f]).addTo(map).bindPopup('Rescuee position');
  L.marker([%f, %f]).addTo(map).bindPopup(%q);
</script>
</body>
</html>
`

// GenerateMap writes a self-contained HTML map plotting the rescuee and the
// nearest hospital, and returns the file path. It needs both the position
// and a hospital summary with extractable coordinates.
func (s *Session) GenerateMap() (string, error) {
	pos, ok := s.state.Position()
	if !ok {
		return "", goerr.New("rescuee position is not set")
	}

	summary := s.state.Environment().NearestHospitalSummary
	hospital, ok := geo.ExtractLatLon(summary)
	if !ok {
		return "", goerr.New("no hospital coordinates available",
			goerr.V("summary", summary))
	}

	html := renderHospitalMap(pos, hospital, summary)
	if err := os.WriteFile(hospitalMapFile, []byte(html), 0644); err != nil {
		return "", goerr.Wrap(err, "failed to write map file")
	}

	return hospitalMapFile, nil
}

func renderHospitalMap(user, hospital model.GeoPosition, label string) string {
	return fmt.Sprintf(hospitalMapTemplate,
		user.Lat, user.Lon, hospital.Lat, hospital.Lon,
		user.Lat, user.Lon,
		hospital.Lat, hospital.Lon, label)
}
