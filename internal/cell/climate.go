package cell

// Thermal comfort band and degree-day scale used by the harshness index.
const (
	comfortMinC = 18.0
	comfortMaxC = 24.0

	comfortDeviationScale = 50.0
	degreeDayScale        = 3000.0
)

// ClimateProfile summarizes annual climate for one geographic cell. It is
// produced upstream from reanalysis grids; the engine only derives the
// harshness scalar from it.
type ClimateProfile struct {
	AvgTempRange        float64 `json:"avg_temp_range"`       // daily/seasonal variance, °C
	HeatingDegreeDays   float64 `json:"heating_degree_days"`  // annual HDD, base 18°C
	CoolingDegreeDays   float64 `json:"cooling_degree_days"`  // annual CDD, base 24°C
	AnnualPrecipitation float64 `json:"annual_precipitation"` // mm
	AvgHumidity         float64 `json:"avg_humidity"`         // %
	TempMin             float64 `json:"temp_min"`             // annual minimum, °C
	TempMax             float64 `json:"temp_max"`             // annual maximum, °C
}

// Harshness returns the climate harshness index on a 0–1 scale: half from
// temperature extremes beyond the 18–24°C comfort band, half from combined
// heating and cooling degree-day load.
func (p ClimateProfile) Harshness() float64 {
	comfortDeviation := (max(0, comfortMinC-p.TempMin) + max(0, p.TempMax-comfortMaxC)) / comfortDeviationScale
	degreeDayFactor := (p.HeatingDegreeDays + p.CoolingDegreeDays) / degreeDayScale

	h := 0.5*comfortDeviation + 0.5*degreeDayFactor
	if h < 0 {
		return 0
	}
	if h > 1 {
		return 1
	}
	return h
}
