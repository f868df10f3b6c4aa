// Package synth generates deterministic synthetic survey data: geographic
// cells with climate and context summaries, and households with deprivation
// profiles correlated through a per-cell poverty propensity.
package synth

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/dylanlt/poverty-explorer/internal/cell"
	"github.com/dylanlt/poverty-explorer/internal/indicator"
	"github.com/dylanlt/poverty-explorer/internal/store"
)

// Base deprivation rates, before cell-level modulation.
var baseRates = map[string]float64{
	"nutrition":         0.15,
	"child_mortality":   0.05,
	"years_schooling":   0.20,
	"school_attendance": 0.12,
	"electricity":       0.18,
	"sanitation":        0.25,
	"drinking_water":    0.15,
	"flooring":          0.22,
	"cooking_fuel":      0.30,
	"assets":            0.20,
}

type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator seeded for reproducible output. The same
// seed and call sequence always produce the same survey.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Cells generates n cells on a rough latitude band, each with a full climate
// profile and context factors. Roughly a third are urban, a third peri-urban
// and a third rural.
func (g *Generator) Cells(n int) []*store.CellRecord {
	cells := make([]*store.CellRecord, 0, n)
	for i := 0; i < n; i++ {
		lat := g.uniform(-55, 65)
		lon := g.uniform(-180, 180)

		rec := &store.CellRecord{
			ID:      fmt.Sprintf("cell-%04d", i),
			Name:    fmt.Sprintf("Ward %d", i+1),
			Lat:     lat,
			Lon:     lon,
			Climate: g.climateFor(lat),
			Context: g.contextFor(i, n),
		}
		cells = append(cells, rec)
	}
	return cells
}

// climateFor draws a climate profile whose severity tracks distance from the
// tropics.
func (g *Generator) climateFor(lat float64) *cell.ClimateProfile {
	severity := math.Abs(lat) / 65 // 0 at equator, 1 at band edge

	tempMin := g.normal(22-35*severity, 3)
	tempMax := g.normal(32-6*severity, 2)
	if tempMax < tempMin+5 {
		tempMax = tempMin + 5
	}

	hdd := math.Max(0, g.normal(2800*severity, 300))
	cdd := math.Max(0, g.normal(900*(1-severity), 150))

	return &cell.ClimateProfile{
		AvgTempRange:        tempMax - tempMin,
		HeatingDegreeDays:   hdd,
		CoolingDegreeDays:   cdd,
		AnnualPrecipitation: math.Max(50, g.normal(900, 350)),
		AvgHumidity:         g.clamp(g.normal(65, 12), 10, 100),
		TempMin:             tempMin,
		TempMax:             tempMax,
	}
}

func (g *Generator) contextFor(i, n int) *cell.ContextFactors {
	// Deterministic urban/peri-urban/rural banding by index.
	var density, urbanIdx float64
	switch {
	case i < n/3:
		density = math.Exp(g.normal(math.Log(6000), 0.5))
		urbanIdx = g.uniform(0.7, 1.0)
	case i < 2*n/3:
		density = math.Exp(g.normal(math.Log(800), 0.5))
		urbanIdx = g.uniform(0.3, 0.7)
	default:
		density = math.Exp(g.normal(math.Log(60), 0.7))
		urbanIdx = g.uniform(0.0, 0.3)
	}

	return &cell.ContextFactors{
		PopulationDensity:   density,
		UrbanRuralIndex:     urbanIdx,
		InfrastructureIndex: g.clamp(0.3+0.6*urbanIdx+g.normal(0, 0.1), 0, 1),
		Elevation:           math.Max(0, g.normal(400, 350)),
		DistanceToServices:  math.Max(0.1, g.normal(12*(1-urbanIdx), 4)),
	}
}

// Households generates perCell households for each cell. Deprivations within
// a household are correlated through a latent poverty propensity, so deeply
// poor households are deprived across many indicators at once.
func (g *Generator) Households(cells []*store.CellRecord, perCell int) []*store.HouseholdRecord {
	var households []*store.HouseholdRecord
	for _, c := range cells {
		cellPropensity := g.cellPropensity(c)
		for j := 0; j < perCell; j++ {
			propensity := g.clamp(cellPropensity+g.normal(0, 0.15), 0, 1)
			h := &store.HouseholdRecord{
				ID:           fmt.Sprintf("%s-hh-%04d", c.ID, j),
				CellID:       c.ID,
				Size:         1 + g.poisson(3.2),
				Deprivations: g.deprivations(propensity),
			}
			households = append(households, h)
		}
	}
	return households
}

// EnhancedHouseholds generates households surveyed with the extended
// instrument, composites included.
func (g *Generator) EnhancedHouseholds(cells []*store.CellRecord, perCell int) []*store.HouseholdRecord {
	households := g.Households(cells, perCell)
	i := 0
	for _, c := range cells {
		urbanization := 0.5
		if c.Context != nil {
			urbanization = c.Context.Urbanization()
		}
		for j := 0; j < perCell; j++ {
			h := households[i]
			enhanced := g.enhance(h, urbanization)
			h.Enhanced = &enhanced
			i++
		}
	}
	return households
}

// cellPropensity maps a cell's context to its baseline poverty level:
// remote, low-infrastructure cells run poorer.
func (g *Generator) cellPropensity(c *store.CellRecord) float64 {
	p := 0.35
	if c.Context != nil {
		p += 0.25 * (1 - c.Context.InfrastructureIndex)
		p -= 0.10 * c.Context.UrbanRuralIndex
	}
	return g.clamp(p+g.normal(0, 0.08), 0.05, 0.9)
}

func (g *Generator) deprivations(propensity float64) indicator.Deprivations {
	// Propensity scales each base rate; the multiplier keeps mid-propensity
	// households near the base rates.
	draw := func(key string) float64 {
		rate := g.clamp(baseRates[key]*2*propensity, 0, 0.95)
		if g.rng.Float64() < rate {
			return 1
		}
		return 0
	}
	return indicator.Deprivations{
		Nutrition:        draw("nutrition"),
		ChildMortality:   draw("child_mortality"),
		YearsSchooling:   draw("years_schooling"),
		SchoolAttendance: draw("school_attendance"),
		Electricity:      draw("electricity"),
		Sanitation:       draw("sanitation"),
		DrinkingWater:    draw("drinking_water"),
		Flooring:         draw("flooring"),
		CookingFuel:      draw("cooking_fuel"),
		Assets:           draw("assets"),
	}
}

func (g *Generator) enhance(h *store.HouseholdRecord, urbanization float64) indicator.EnhancedDeprivations {
	d := h.Deprivations

	// Latent severity recovered from the core draw keeps the composite
	// intensities consistent with the binary indicators.
	severity := (d.Nutrition + d.YearsSchooling + d.Electricity + d.Sanitation +
		d.Flooring + d.CookingFuel + d.Assets) / 7

	intensity := func(base float64) float64 {
		return g.clamp(base*severity+g.normal(0, 0.1), 0, 1)
	}

	survey := g.survey(h, severity, urbanization)

	// Housing is fully cost-deprived at 40% of income, transport at 20%.
	housingBurden := intensity(0.7)
	if b := survey.HousingCostBurden(); b != nil {
		housingBurden = g.clamp(*b/0.4, 0, 1)
	}
	transportBurden := intensity(0.7)
	if b := survey.TransportCostBurden(); b != nil {
		transportBurden = g.clamp(*b/0.2, 0, 1)
	}

	return indicator.EnhancedDeprivations{
		Nutrition:        d.Nutrition,
		ChildMortality:   d.ChildMortality,
		YearsSchooling:   d.YearsSchooling,
		SchoolAttendance: d.SchoolAttendance,
		Electricity:      d.Electricity,
		Sanitation:       d.Sanitation,
		DrinkingWater:    d.DrinkingWater,
		CookingFuel:      d.CookingFuel,
		Assets:           d.Assets,
		Housing: indicator.HousingDeprivation{
			StructureQuality: d.Flooring,
			TenureSecurity:   g.tenureDeprivation(survey.TenureType),
			CostBurden:       housingBurden,
		},
		Digital: indicator.DigitalDeprivation{
			NoInternetAccess:  intensity(1.0),
			NoDevice:          intensity(0.9),
			DigitalIlliteracy: intensity(0.8),
		},
		Transport: indicator.TransportDeprivation{
			ExcessiveCommuteTime: g.clamp(intensity(0.6)+0.15*urbanization, 0, 1),
			TransportCostBurden:  transportBurden,
			NoTransportAccess:    g.clamp(intensity(0.8)-0.3*urbanization, 0, 1),
		},
		Economic: indicator.EconomicDeprivation{
			IncomeVolatility:   intensity(0.9),
			NoEmergencySavings: intensity(1.0),
			NoSocialProtection: intensity(0.8),
			HighDebtBurden:     intensity(0.6),
		},
		Environment: indicator.EnvironmentalDeprivation{
			PoorAirQuality: g.clamp(intensity(0.5)+0.3*urbanization, 0, 1),
			FloodRisk:      intensity(0.5),
			HeatExposure:   intensity(0.6),
			ToxicProximity: g.clamp(intensity(0.4)+0.2*urbanization, 0, 1),
		},
	}
}

// survey draws the raw extended-instrument record: demographics, lognormal
// monthly income, housing and transport costs as income shares, and tenure.
// Poorer households skew toward informal tenure and heavier cost shares.
func (g *Generator) survey(h *store.HouseholdRecord, severity, urbanization float64) indicator.EnhancedHousehold {
	income := math.Exp(g.normal(math.Log(4500)-1.1*severity, 0.45))
	housingShare := g.clamp(g.normal(0.22+0.20*severity+0.10*urbanization, 0.08), 0.02, 0.90)
	transportShare := g.clamp(g.normal(0.08+0.10*severity, 0.04), 0.01, 0.50)
	housingCost := income * housingShare
	transportCost := income * transportShare

	children := g.poisson(1.4)
	elderly := g.poisson(0.4)

	return indicator.EnhancedHousehold{
		ID:                   h.ID,
		CellID:               h.CellID,
		Size:                 h.Size,
		NumChildren:          &children,
		NumElderly:           &elderly,
		MonthlyIncome:        &income,
		MonthlyHousingCost:   &housingCost,
		MonthlyTransportCost: &transportCost,
		TenureType:           g.tenure(severity),
	}
}

// tenure draws from an owner / secure_rental / informal mix that shifts
// toward informal tenure as poverty deepens.
func (g *Generator) tenure(severity float64) string {
	owner := g.clamp(0.55-0.35*severity, 0.10, 0.90)
	secure := g.clamp(0.30-0.10*severity, 0.05, 0.40)
	r := g.rng.Float64()
	switch {
	case r < owner:
		return "owner"
	case r < owner+secure:
		return "secure_rental"
	default:
		return "informal"
	}
}

func (g *Generator) tenureDeprivation(tenureType string) float64 {
	switch tenureType {
	case "owner":
		return g.clamp(g.normal(0.05, 0.05), 0, 1)
	case "secure_rental":
		return g.clamp(g.normal(0.35, 0.10), 0, 1)
	default:
		return g.clamp(g.normal(0.85, 0.10), 0, 1)
	}
}

// poisson draws via Knuth's product-of-uniforms method; fine for small means.
func (g *Generator) poisson(mean float64) int {
	limit := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= g.rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *Generator) normal(mean, stddev float64) float64 {
	return mean + g.rng.NormFloat64()*stddev
}

func (g *Generator) clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
