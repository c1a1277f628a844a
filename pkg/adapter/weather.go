package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sarops/medkit/pkg/model"
)

// ErrWeatherUnavailable is returned when the weather service responds but
// the payload lacks the expected current-weather fields.
var ErrWeatherUnavailable = goerr.New("weather data unavailable")

// Weather is the boundary to the current-weather service.
type Weather interface {
	Current(ctx context.Context, pos model.GeoPosition) (*model.Weather, error)
}

const openMeteoBaseURL = "https://api.open-meteo.com/v1"

type openMeteo struct {
	baseURL    string
	httpClient *http.Client
}

type WeatherOption func(*openMeteo)

func WithWeatherBaseURL(url string) WeatherOption {
	return func(w *openMeteo) {
		w.baseURL = url
	}
}

// NewWeather creates an Open-Meteo backed weather client.
func NewWeather(opts ...WeatherOption) Weather {
	w := &openMeteo{
		baseURL: openMeteoBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type currentWeatherResponse struct {
	CurrentWeather *struct {
		Temperature *float64 `json:"temperature"`
		WindSpeed   *float64 `json:"windspeed"`
		WeatherCode *int     `json:"weathercode"`
	} `json:"current_weather"`
}

func (w *openMeteo) Current(ctx context.Context, pos model.GeoPosition) (*model.Weather, error) {
	url := fmt.Sprintf("%s/forecast?latitude=%f&longitude=%f&current_weather=true", w.baseURL, pos.Lat, pos.Lon)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query weather API")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, goerr.New("weather API returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	var payload currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, goerr.Wrap(err, "failed to decode weather response")
	}

	cw := payload.CurrentWeather
	if cw == nil || cw.Temperature == nil || cw.WindSpeed == nil || cw.WeatherCode == nil {
		return nil, goerr.Wrap(ErrWeatherUnavailable, "response lacks current_weather fields")
	}

	return &model.Weather{
		Temperature:   *cw.Temperature,
		WindSpeed:     *cw.WindSpeed,
		ConditionCode: *cw.WeatherCode,
	}, nil
}
