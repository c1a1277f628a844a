package chat

import (
	"context"
	"fmt"

	"github.com/sarops/medkit/pkg/model"
	"github.com/sarops/medkit/pkg/utils/geo"
	"github.com/sarops/medkit/pkg/utils/logging"
)

const (
	weatherUnavailable = "Weather data unavailable"
	noHospitalsFound   = "No hospitals found nearby"

	hospitalSearchRadiusMeters = 20000
)

// fillEnvironment derives the environment facts from the rescuee position
// and caches them for the rest of the session. Service failures degrade to
// the sentinel strings instead of failing the turn.
func (s *Session) fillEnvironment(ctx context.Context) {
	pos, ok := s.state.Position()
	if !ok || !s.state.Environment().Empty() {
		return
	}

	logger := logging.From(ctx)
	env := model.EnvironmentCache{
		WeatherSummary:         weatherUnavailable,
		NearestHospitalSummary: noHospitalsFound,
	}

	if weather, err := s.weather.Current(ctx, pos); err != nil {
		logger.Warn("weather lookup failed", "error", err)
	} else {
		env.WeatherSummary = formatWeather(weather)
	}

	if hospitals, err := s.hospitals.FindNear(ctx, pos, hospitalSearchRadiusMeters); err != nil {
		logger.Warn("hospital lookup failed", "error", err)
	} else if nearest, dist, ok := geo.Nearest(pos, hospitals); ok {
		env.NearestHospitalSummary = formatHospital(nearest, dist)
	}

	s.state.SetEnvironment(env)
}

func formatWeather(w *model.Weather) string {
	return fmt.Sprintf("Temperature: %g°C, Wind Speed: %g km/h, Condition: %d",
		w.Temperature, w.WindSpeed, w.ConditionCode)
}

func formatHospital(h model.Hospital, distanceKm float64) string {
	return fmt.Sprintf("%s, Location: %g, %g (Distance: %.2f km)",
		h.Name, h.Position.Lat, h.Position.Lon, distanceKm)
}
