package adapter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sarops/medkit/pkg/adapter"
	"github.com/sarops/medkit/pkg/model"
)

func TestWeatherCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.S(t, r.URL.Query().Get("current_weather")).Equal("true")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":22,"windspeed":15,"weathercode":500}}`))
	}))
	defer srv.Close()

	client := adapter.NewWeather(adapter.WithWeatherBaseURL(srv.URL))
	weather, err := client.Current(context.Background(), model.GeoPosition{Lat: 12.34, Lon: 56.78})
	gt.NoError(t, err)
	gt.Equal(t, weather.Temperature, 22.0)
	gt.Equal(t, weather.WindSpeed, 15.0)
	gt.Equal(t, weather.ConditionCode, 500)
}

func TestWeatherMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"latitude":12.34}`))
	}))
	defer srv.Close()

	client := adapter.NewWeather(adapter.WithWeatherBaseURL(srv.URL))
	_, err := client.Current(context.Background(), model.GeoPosition{Lat: 12.34, Lon: 56.78})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, adapter.ErrWeatherUnavailable))
}

func TestWeatherServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := adapter.NewWeather(adapter.WithWeatherBaseURL(srv.URL))
	_, err := client.Current(context.Background(), model.GeoPosition{})
	gt.Error(t, err)
}
