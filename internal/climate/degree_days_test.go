package climate

import (
	"errors"
	"math"
	"testing"
)

func TestDegreeDays(t *testing.T) {
	tests := []struct {
		name        string
		series      []float64
		wantHeating float64
		wantCooling float64
	}{
		{"empty", nil, 0, 0},
		{"all comfortable", []float64{18, 20, 22, 24}, 0, 0},
		{"cold days", []float64{10, 12}, 14, 0},
		{"hot days", []float64{30, 28}, 0, 10},
		{"mixed", []float64{8, 20, 30}, 10, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, c := DegreeDays(tt.series)
			if math.Abs(h-tt.wantHeating) > 1e-9 {
				t.Errorf("heating: expected %f, got %f", tt.wantHeating, h)
			}
			if math.Abs(c-tt.wantCooling) > 1e-9 {
				t.Errorf("cooling: expected %f, got %f", tt.wantCooling, c)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{10, 20, 15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Min != 10 || s.Max != 20 {
		t.Errorf("unexpected min/max: %+v", s)
	}
	if math.Abs(s.Mean-15) > 1e-9 {
		t.Errorf("expected mean 15, got %f", s.Mean)
	}
	if s.Range != 10 {
		t.Errorf("expected range 10, got %f", s.Range)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(nil)
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
}

func TestProfileFromSeries(t *testing.T) {
	series := []float64{-5, 10, 20, 32}
	p, err := ProfileFromSeries(series, 800, 65)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TempMin != -5 || p.TempMax != 32 {
		t.Errorf("unexpected extremes: %+v", p)
	}
	// heating = 23 + 8 = 31; cooling = 8
	if math.Abs(p.HeatingDegreeDays-31) > 1e-9 {
		t.Errorf("expected HDD 31, got %f", p.HeatingDegreeDays)
	}
	if math.Abs(p.CoolingDegreeDays-8) > 1e-9 {
		t.Errorf("expected CDD 8, got %f", p.CoolingDegreeDays)
	}
	if p.AnnualPrecipitation != 800 || p.AvgHumidity != 65 {
		t.Errorf("precipitation/humidity not carried: %+v", p)
	}

	if _, err := ProfileFromSeries(nil, 0, 0); err == nil {
		t.Error("expected error for empty series")
	}
}
