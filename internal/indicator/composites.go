package indicator

import "fmt"

// HousingDeprivation separates structural adequacy, tenure security, and
// cost burden so a cost-burdened renter and a debt-free owner of a poor
// structure do not score identically.
type HousingDeprivation struct {
	StructureQuality float64 `json:"structure_quality"` // physical adequacy: walls, roof, space
	TenureSecurity   float64 `json:"tenure_security"`   // 0=owner, 0.3=secure rental, 1.0=informal
	CostBurden       float64 `json:"cost_burden"`       // housing cost as share of income, normalized
}

// CompositeScore combines the three components with the default
// structure 40% / tenure 30% / cost 30% split.
func (h HousingDeprivation) CompositeScore() float64 {
	return 0.4*h.StructureQuality + 0.3*h.TenureSecurity + 0.3*h.CostBurden
}

func (h HousingDeprivation) components() []namedValue {
	return []namedValue{
		{"housing.structure_quality", h.StructureQuality},
		{"housing.tenure_security", h.TenureSecurity},
		{"housing.cost_burden", h.CostBurden},
	}
}

// DigitalDeprivation covers connectivity, device access, and literacy.
type DigitalDeprivation struct {
	NoInternetAccess  float64 `json:"no_internet_access"`
	NoDevice          float64 `json:"no_device"`
	DigitalIlliteracy float64 `json:"digital_illiteracy"`
}

// CompositeScore is the unweighted mean of the three components.
func (d DigitalDeprivation) CompositeScore() float64 {
	return (d.NoInternetAccess + d.NoDevice + d.DigitalIlliteracy) / 3
}

func (d DigitalDeprivation) components() []namedValue {
	return []namedValue{
		{"digital.no_internet_access", d.NoInternetAccess},
		{"digital.no_device", d.NoDevice},
		{"digital.digital_illiteracy", d.DigitalIlliteracy},
	}
}

// TransportDeprivation covers mobility access, time, and cost.
type TransportDeprivation struct {
	ExcessiveCommuteTime float64 `json:"excessive_commute_time"` // >90 min to work/services
	TransportCostBurden  float64 `json:"transport_cost_burden"`  // >20% of income on transport
	NoTransportAccess    float64 `json:"no_transport_access"`    // no vehicle and no transit
}

// CompositeScore weights access 40%, commute time 30%, cost 30%.
func (t TransportDeprivation) CompositeScore() float64 {
	return 0.4*t.NoTransportAccess + 0.3*t.ExcessiveCommuteTime + 0.3*t.TransportCostBurden
}

func (t TransportDeprivation) components() []namedValue {
	return []namedValue{
		{"transport.excessive_commute_time", t.ExcessiveCommuteTime},
		{"transport.transport_cost_burden", t.TransportCostBurden},
		{"transport.no_transport_access", t.NoTransportAccess},
	}
}

// EconomicDeprivation captures income stability and financial resilience.
type EconomicDeprivation struct {
	IncomeVolatility   float64 `json:"income_volatility"`
	NoEmergencySavings float64 `json:"no_emergency_savings"`
	NoSocialProtection float64 `json:"no_social_protection"`
	HighDebtBurden     float64 `json:"high_debt_burden"`
}

// CompositeScore is the unweighted mean of the four components.
func (e EconomicDeprivation) CompositeScore() float64 {
	return (e.IncomeVolatility + e.NoEmergencySavings + e.NoSocialProtection + e.HighDebtBurden) / 4
}

func (e EconomicDeprivation) components() []namedValue {
	return []namedValue{
		{"economic.income_volatility", e.IncomeVolatility},
		{"economic.no_emergency_savings", e.NoEmergencySavings},
		{"economic.no_social_protection", e.NoSocialProtection},
		{"economic.high_debt_burden", e.HighDebtBurden},
	}
}

// EnvironmentalDeprivation captures hazard and climate exposure.
type EnvironmentalDeprivation struct {
	PoorAirQuality float64 `json:"poor_air_quality"`
	FloodRisk      float64 `json:"flood_risk"`
	HeatExposure   float64 `json:"heat_exposure"`
	ToxicProximity float64 `json:"toxic_proximity"`
}

// CompositeScore weights air quality 30%, heat 30%, flood 25%, toxic 15%.
func (e EnvironmentalDeprivation) CompositeScore() float64 {
	return 0.3*e.PoorAirQuality + 0.3*e.HeatExposure + 0.25*e.FloodRisk + 0.15*e.ToxicProximity
}

func (e EnvironmentalDeprivation) components() []namedValue {
	return []namedValue{
		{"environment.poor_air_quality", e.PoorAirQuality},
		{"environment.flood_risk", e.FloodRisk},
		{"environment.heat_exposure", e.HeatExposure},
		{"environment.toxic_proximity", e.ToxicProximity},
	}
}

type namedValue struct {
	name  string
	value float64
}

func validateComponents(vals []namedValue) error {
	for _, v := range vals {
		if v.value < 0 || v.value > 1 {
			return fmt.Errorf("%s = %f: %w", v.name, v.value, ErrOutOfRange)
		}
	}
	return nil
}
