package indicator

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a deprivation value falls outside [0,1].
var ErrOutOfRange = errors.New("deprivation value out of [0,1] range")

// Deprivations holds the ten core MPI indicators for one household.
// Every value is on a 0–1 scale: 0 = not deprived, 1 = fully deprived.
// Values are validated at construction; scoring code assumes validity.
type Deprivations struct {
	// Health
	Nutrition      float64 `json:"nutrition"`
	ChildMortality float64 `json:"child_mortality"`

	// Education
	YearsSchooling   float64 `json:"years_schooling"`
	SchoolAttendance float64 `json:"school_attendance"`

	// Living standards
	Electricity   float64 `json:"electricity"`
	Sanitation    float64 `json:"sanitation"`
	DrinkingWater float64 `json:"drinking_water"`
	Flooring      float64 `json:"flooring"`
	CookingFuel   float64 `json:"cooking_fuel"`
	Assets        float64 `json:"assets"`
}

// NewDeprivations validates d and returns it unchanged.
func NewDeprivations(d Deprivations) (Deprivations, error) {
	if err := d.Validate(); err != nil {
		return Deprivations{}, err
	}
	return d, nil
}

// Validate checks that every indicator lies in [0,1].
func (d Deprivations) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"nutrition", d.Nutrition},
		{"child_mortality", d.ChildMortality},
		{"years_schooling", d.YearsSchooling},
		{"school_attendance", d.SchoolAttendance},
		{"electricity", d.Electricity},
		{"sanitation", d.Sanitation},
		{"drinking_water", d.DrinkingWater},
		{"flooring", d.Flooring},
		{"cooking_fuel", d.CookingFuel},
		{"assets", d.Assets},
	}
	for _, f := range fields {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%s = %f: %w", f.name, f.value, ErrOutOfRange)
		}
	}
	return nil
}
