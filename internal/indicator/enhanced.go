package indicator

// EnhancedDeprivations extends the core indicator set with the five
// composite dimensions. The simple flooring indicator is replaced by the
// housing composite; ToCore maps back for standard-MPI comparability.
type EnhancedDeprivations struct {
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
	CookingFuel   float64 `json:"cooking_fuel"`
	Assets        float64 `json:"assets"`

	// Composite dimensions
	Housing     HousingDeprivation       `json:"housing"`
	Digital     DigitalDeprivation       `json:"digital"`
	Transport   TransportDeprivation     `json:"transport"`
	Economic    EconomicDeprivation      `json:"economic_security"`
	Environment EnvironmentalDeprivation `json:"environment"`
}

// NewEnhancedDeprivations validates d and returns it unchanged.
func NewEnhancedDeprivations(d EnhancedDeprivations) (EnhancedDeprivations, error) {
	if err := d.Validate(); err != nil {
		return EnhancedDeprivations{}, err
	}
	return d, nil
}

// Validate checks every scalar and every composite component lies in [0,1].
func (d EnhancedDeprivations) Validate() error {
	vals := []namedValue{
		{"nutrition", d.Nutrition},
		{"child_mortality", d.ChildMortality},
		{"years_schooling", d.YearsSchooling},
		{"school_attendance", d.SchoolAttendance},
		{"electricity", d.Electricity},
		{"sanitation", d.Sanitation},
		{"drinking_water", d.DrinkingWater},
		{"cooking_fuel", d.CookingFuel},
		{"assets", d.Assets},
	}
	vals = append(vals, d.Housing.components()...)
	vals = append(vals, d.Digital.components()...)
	vals = append(vals, d.Transport.components()...)
	vals = append(vals, d.Economic.components()...)
	vals = append(vals, d.Environment.components()...)
	return validateComponents(vals)
}

// ToCore converts to the standard ten-indicator form. Housing structure
// quality stands in for the flooring indicator.
func (d EnhancedDeprivations) ToCore() Deprivations {
	return Deprivations{
		Nutrition:        d.Nutrition,
		ChildMortality:   d.ChildMortality,
		YearsSchooling:   d.YearsSchooling,
		SchoolAttendance: d.SchoolAttendance,
		Electricity:      d.Electricity,
		Sanitation:       d.Sanitation,
		DrinkingWater:    d.DrinkingWater,
		Flooring:         d.Housing.StructureQuality,
		CookingFuel:      d.CookingFuel,
		Assets:           d.Assets,
	}
}
