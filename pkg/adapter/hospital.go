package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sarops/medkit/pkg/model"
)

// HospitalDirectory is the boundary to the geospatial hospital lookup. An
// empty result is not an error: the caller decides how to render "none
// found".
type HospitalDirectory interface {
	FindNear(ctx context.Context, pos model.GeoPosition, radiusMeters int) ([]model.Hospital, error)
}

const overpassBaseURL = "https://overpass-api.de/api/interpreter"

type overpass struct {
	baseURL    string
	httpClient *http.Client
}

type HospitalOption func(*overpass)

func WithHospitalBaseURL(url string) HospitalOption {
	return func(o *overpass) {
		o.baseURL = url
	}
}

// NewHospitalDirectory creates an Overpass API backed hospital lookup.
func NewHospitalDirectory(opts ...HospitalOption) HospitalDirectory {
	o := &overpass{
		baseURL: overpassBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type overpassResponse struct {
	Elements []struct {
		Type string  `json:"type"`
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
		Tags struct {
			Name string `json:"name"`
		} `json:"tags"`
	} `json:"elements"`
}

func (o *overpass) FindNear(ctx context.Context, pos model.GeoPosition, radiusMeters int) ([]model.Hospital, error) {
	query := fmt.Sprintf(`[out:json];node["amenity"="hospital"](around:%d,%f,%f);out;`, radiusMeters, pos.Lat, pos.Lon)
	reqURL := o.baseURL + "?data=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query Overpass API")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, goerr.New("Overpass API returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, goerr.Wrap(err, "failed to decode Overpass response")
	}

	hospitals := make([]model.Hospital, 0, len(payload.Elements))
	for _, e := range payload.Elements {
		if e.Type != "node" {
			continue
		}
		name := e.Tags.Name
		if name == "" {
			name = "Unnamed hospital"
		}
		hospitals = append(hospitals, model.Hospital{
			Name:     name,
			Position: model.GeoPosition{Lat: e.Lat, Lon: e.Lon},
		})
	}

	return hospitals, nil
}
