package indicator

// Household is the read-only survey record the engine scores. Constructed by
// the data collaborator (loader or generator), never mutated here.
type Household struct {
	ID     string `json:"household_id"`
	CellID string `json:"cell_id"`

	Deprivations Deprivations `json:"deprivations"`
	Size         int          `json:"household_size"`

	// Optional demographics, nil means not surveyed
	NumChildren *int `json:"num_children,omitempty"`
	NumElderly  *int `json:"num_elderly,omitempty"`
}

// EnhancedHousehold carries the extended indicator set plus economic,
// tenure, and locational context.
type EnhancedHousehold struct {
	ID     string `json:"household_id"`
	CellID string `json:"cell_id"`

	Deprivations EnhancedDeprivations `json:"deprivations"`
	Size         int                  `json:"household_size"`

	NumChildren *int `json:"num_children,omitempty"`
	NumElderly  *int `json:"num_elderly,omitempty"`

	// Economic context, local currency per month
	MonthlyIncome        *float64 `json:"monthly_income,omitempty"`
	MonthlyHousingCost   *float64 `json:"monthly_housing_cost,omitempty"`
	MonthlyTransportCost *float64 `json:"monthly_transport_cost,omitempty"`

	// "owner", "secure_rental", or "informal"
	TenureType string `json:"tenure_type,omitempty"`

	// Locational context
	SprawlIndex *float64 `json:"urban_sprawl_index,omitempty"`
	RentalIndex *float64 `json:"local_rental_index,omitempty"`
}

// HousingCostBurden returns housing cost as a share of income, or nil when
// either figure is missing or income is non-positive.
func (h EnhancedHousehold) HousingCostBurden() *float64 {
	return costBurden(h.MonthlyIncome, h.MonthlyHousingCost)
}

// TransportCostBurden returns transport cost as a share of income, or nil
// when either figure is missing or income is non-positive.
func (h EnhancedHousehold) TransportCostBurden() *float64 {
	return costBurden(h.MonthlyIncome, h.MonthlyTransportCost)
}

func costBurden(income, cost *float64) *float64 {
	if income == nil || cost == nil || *income <= 0 {
		return nil
	}
	ratio := *cost / *income
	return &ratio
}
