package cell

import "math"

// densityLogScale normalizes log10(density) so ~10,000 people/km² maps to 1.0.
const densityLogScale = 4.0

// ContextFactors summarizes the socioeconomic and infrastructure context of
// one geographic cell.
type ContextFactors struct {
	PopulationDensity   float64 `json:"population_density"` // people per km²
	UrbanRuralIndex     float64 `json:"urban_rural_index"`  // 0 = rural, 1 = urban
	InfrastructureIndex float64 `json:"infrastructure_index"`
	Elevation           float64 `json:"elevation"`            // meters
	DistanceToServices  float64 `json:"distance_to_services"` // km to nearest healthcare/education
}

// Urbanization returns the 0–1 urbanization level: half from log-scaled
// population density, half from the urban/rural classification.
func (c ContextFactors) Urbanization() float64 {
	density := math.Max(1, c.PopulationDensity)
	densityFactor := math.Log10(density) / densityLogScale
	if densityFactor < 0 {
		densityFactor = 0
	}
	if densityFactor > 1 {
		densityFactor = 1
	}
	return 0.5*densityFactor + 0.5*c.UrbanRuralIndex
}
