package weather

import (
	"fmt"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Theme selects the animated background the client paints for a condition.
type Theme string

const (
	ThemeDefault Theme = "default"
	ThemeClear   Theme = "clear"
	ThemeRain    Theme = "rain"
	ThemeThunder Theme = "thunder"
	ThemeCloud   Theme = "cloud"
	ThemeSnow    Theme = "snow"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are inside their geographic ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Key returns a canonical string key for the pair.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Place is a resolved location. Name is empty when the caller supplied raw coordinates.
type Place struct {
	Coordinates
	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
}

// ForecastSample is a single 3-hour reading from the forecast endpoint.
type ForecastSample struct {
	Timestamp    int64   `json:"dt"` // epoch seconds, UTC
	TemperatureC float64 `json:"temp"`
	Icon         string  `json:"icon"`
	Description  string  `json:"description"`
}

// Time returns the sample instant in UTC.
func (s ForecastSample) Time() time.Time {
	return time.Unix(s.Timestamp, 0).UTC()
}

// DateKey returns the UTC calendar date of the sample, e.g. "2024-01-02".
func (s ForecastSample) DateKey() string {
	return s.Time().Format(dateKeyLayout)
}

// DailySummary condenses one UTC calendar day of forecast samples.
type DailySummary struct {
	Date           string  `json:"date"`
	Label          string  `json:"label"`
	TemperatureMin float64 `json:"temperatureMin"`
	TemperatureMax float64 `json:"temperatureMax"`
	TemperatureAvg float64 `json:"temperatureAvg"` // midpoint of min and max
	Icon           string  `json:"icon"`
	Description    string  `json:"description"`
	Samples        int     `json:"samples"`
}

// Forecast is the aggregated forecast: daily summaries plus the untouched samples.
type Forecast struct {
	Daily  []DailySummary   `json:"daily"`
	Hourly []ForecastSample `json:"hourly"`
}

// Measure is a numeric reading that remembers whether upstream actually sent it.
// Value is 0 when Present is false.
type Measure struct {
	Value   float64 `json:"value"`
	Present bool    `json:"present"`
}

// CurrentConditions is the UI-stable record extracted from the current weather payload.
type CurrentConditions struct {
	Temperature Measure `json:"temperatureC"`
	FeelsLike   Measure `json:"feelsLikeC"`
	Humidity    Measure `json:"humidityPct"`
	WindSpeed   Measure `json:"windSpeedMs"`
	Pressure    Measure `json:"pressureHpa"`
	Visibility  Measure `json:"visibilityM"`

	Sunrise         *int64 `json:"sunriseUtc,omitempty"`
	Sunset          *int64 `json:"sunsetUtc,omitempty"`
	AirQualityIndex *int   `json:"airQualityIndex,omitempty"` // 1..5

	ConditionMain string    `json:"conditionMain"`
	ConditionIcon string    `json:"conditionIcon"`
	Description   string    `json:"description"`
	City          string    `json:"city,omitempty"`
	Condition     Condition `json:"condition"`
	Theme         Theme     `json:"theme"`
}

// ViewModel is the immutable result of one pipeline run.
type ViewModel struct {
	Location   Place             `json:"location"`
	Current    CurrentConditions `json:"current"`
	Daily      []DailySummary    `json:"daily"`
	Hourly     []ForecastSample  `json:"hourly"`
	FetchedAt  time.Time         `json:"fetchedAt"`
	Generation uint64            `json:"generation,omitempty"`
}

// Lookup records one successful place-name resolution.
type Lookup struct {
	Query      string    `json:"query"`
	Place      Place     `json:"place"`
	ResolvedAt time.Time `json:"resolvedAt"`
}
