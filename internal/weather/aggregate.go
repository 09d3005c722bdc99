package weather

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultForecastDays is the number of daily buckets kept when none is requested.
	DefaultForecastDays = 7
	// MaxForecastDays caps the number of daily buckets.
	MaxForecastDays = 7

	dateKeyLayout = "2006-01-02"
)

// AggregateOptions configures AggregateForecast.
type AggregateOptions struct {
	Days   int // 0 means DefaultForecastDays
	Labels LabelFormatter
}

type dayGroup struct {
	key     string
	date    time.Time
	samples []ForecastSample
}

// AggregateForecast groups 3-hour samples into UTC calendar days and summarizes the
// first Days of them in first-seen order. Samples are expected in ascending time
// order; that is not re-checked. The hourly view is a copy of the input.
func AggregateForecast(samples []ForecastSample, opts AggregateOptions) (Forecast, error) {
	days := opts.Days
	if days <= 0 {
		days = DefaultForecastDays
	}
	if days > MaxForecastDays {
		days = MaxForecastDays
	}

	for i, s := range samples {
		if err := s.validate(); err != nil {
			return Forecast{}, fmt.Errorf("%w: sample %d: %v", ErrInvalidForecastData, i, err)
		}
	}

	var groups []*dayGroup
	index := make(map[string]*dayGroup)
	for _, s := range samples {
		key := s.DateKey()
		g, ok := index[key]
		if !ok {
			if len(groups) >= days {
				continue
			}
			t := s.Time()
			g = &dayGroup{
				key:  key,
				date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			}
			index[key] = g
			groups = append(groups, g)
		}
		g.samples = append(g.samples, s)
	}

	daily := make([]DailySummary, 0, len(groups))
	for _, g := range groups {
		daily = append(daily, summarize(g, opts.Labels))
	}

	hourly := make([]ForecastSample, len(samples))
	copy(hourly, samples)

	return Forecast{Daily: daily, Hourly: hourly}, nil
}

func summarize(g *dayGroup, labels LabelFormatter) DailySummary {
	minT := g.samples[0].TemperatureC
	maxT := minT
	for _, s := range g.samples[1:] {
		minT = math.Min(minT, s.TemperatureC)
		maxT = math.Max(maxT, s.TemperatureC)
	}

	rep := g.samples[len(g.samples)/2]

	// All three are rounded the same way so min <= avg <= max survives rounding.
	return DailySummary{
		Date:           g.key,
		Label:          labels.Format(g.date),
		TemperatureMin: roundHalfUp(minT),
		TemperatureMax: roundHalfUp(maxT),
		TemperatureAvg: roundHalfUp((minT + maxT) / 2),
		Icon:           rep.Icon,
		Description:    rep.Description,
		Samples:        len(g.samples),
	}
}

// roundHalfUp rounds to the nearest integer with halves going towards +Inf.
// v+0.5 is not used: it rounds 0.49999999999999994 up.
func roundHalfUp(v float64) float64 {
	f := math.Floor(v)
	if v-f >= 0.5 {
		return f + 1
	}
	return f
}

func (s ForecastSample) validate() error {
	if s.Timestamp <= 0 {
		return fmt.Errorf("timestamp %d is not a valid epoch", s.Timestamp)
	}
	if math.IsNaN(s.TemperatureC) || math.IsInf(s.TemperatureC, 0) {
		return fmt.Errorf("temperature is not finite")
	}
	return nil
}
