package climate

import (
	"errors"

	"github.com/dylanlt/poverty-explorer/internal/cell"
)

// Degree-day base temperatures, matching the comfort band the harshness
// index is built on.
const (
	HeatingBaseC = 18.0
	CoolingBaseC = 24.0
)

var ErrEmptySeries = errors.New("temperature series is empty")

// DegreeDays computes annual heating and cooling degree-days from a series
// of daily mean temperatures in °C.
func DegreeDays(dailyMeans []float64) (heating, cooling float64) {
	for _, t := range dailyMeans {
		if t < HeatingBaseC {
			heating += HeatingBaseC - t
		}
		if t > CoolingBaseC {
			cooling += t - CoolingBaseC
		}
	}
	return heating, cooling
}

// SeriesSummary is the scalar reduction of a daily temperature series.
type SeriesSummary struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Range float64 `json:"range"`
}

// Summarize reduces a daily mean temperature series to its summary stats.
func Summarize(dailyMeans []float64) (SeriesSummary, error) {
	if len(dailyMeans) == 0 {
		return SeriesSummary{}, ErrEmptySeries
	}
	s := SeriesSummary{Min: dailyMeans[0], Max: dailyMeans[0]}
	var sum float64
	for _, t := range dailyMeans {
		if t < s.Min {
			s.Min = t
		}
		if t > s.Max {
			s.Max = t
		}
		sum += t
	}
	s.Mean = sum / float64(len(dailyMeans))
	s.Range = s.Max - s.Min
	return s, nil
}

// ProfileFromSeries builds a cell climate profile from a daily mean
// temperature series plus annual precipitation and average humidity.
func ProfileFromSeries(dailyMeans []float64, precipitation, humidity float64) (*cell.ClimateProfile, error) {
	summary, err := Summarize(dailyMeans)
	if err != nil {
		return nil, err
	}
	heating, cooling := DegreeDays(dailyMeans)
	return &cell.ClimateProfile{
		AvgTempRange:        summary.Range,
		HeatingDegreeDays:   heating,
		CoolingDegreeDays:   cooling,
		AnnualPrecipitation: precipitation,
		AvgHumidity:         humidity,
		TempMin:             summary.Min,
		TempMax:             summary.Max,
	}, nil
}
