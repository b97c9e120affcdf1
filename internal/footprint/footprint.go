// Package footprint estimates the energy, carbon and water cost of a number
// of message exchanges. The figures deliberately err on the high side.
package footprint

import "math"

// Per-exchange constants.
const (
	WhPerExchange       = 20.0  // inference energy for a long prompt with reasoning
	PUE                 = 1.3   // data-center overhead
	GridKgPerKWh        = 0.45  // grid carbon intensity
	HardwareMultiplier  = 1.5   // embodied carbon on top of operational
	TrainingKgPerQuery  = 0.006 // amortized training carbon
	ReasoningMultiplier = 4.0
	WaterLitersPerKWh   = 10.0 // direct cooling plus power generation
	OffsetUSDPerTon     = 20.0
	CarKgPerMile        = 0.4
	FlightKgPerMile     = 0.25
	LitersPerShower     = 65.0
)

// Estimate is the content of the carbon_footprint section.
type Estimate struct {
	OperationalKWh        float64 `json:"operational_kwh"`
	ElectricityCO2Kg      float64 `json:"electricity_co2_kg"`
	OperationalCO2Kg      float64 `json:"operational_co2_kg"`
	TrainingCO2Kg         float64 `json:"training_co2_kg"`
	TotalCO2Kg            float64 `json:"total_co2_kg"`
	TotalCO2Tons          float64 `json:"total_co2_tons"`
	OffsetCostUSD         float64 `json:"offset_cost_usd"`
	WaterLiters           float64 `json:"water_liters"`
	CarMilesEquivalent    float64 `json:"car_miles_equivalent"`
	FlightMilesEquivalent float64 `json:"flight_miles_equivalent"`
	ShowersEquivalent     float64 `json:"showers_equivalent"`
	MessagePairs          int     `json:"message_pairs"`
}

// Pairs is the number of exchanges: the smaller of the two sender counts.
func Pairs(humanMessages, assistantMessages int) int {
	return min(humanMessages, assistantMessages)
}

// Calculate converts message pairs into rounded footprint figures.
func Calculate(pairs int) Estimate {
	p := float64(pairs)

	kwh := p * WhPerExchange * PUE / 1000
	electricity := kwh * GridKgPerKWh
	operational := electricity * HardwareMultiplier
	training := p * TrainingKgPerQuery * ReasoningMultiplier
	total := operational + training
	tons := total / 1000
	water := kwh * WaterLitersPerKWh

	return Estimate{
		OperationalKWh:        round(kwh, 1),
		ElectricityCO2Kg:      round(electricity, 1),
		OperationalCO2Kg:      round(operational, 1),
		TrainingCO2Kg:         round(training, 1),
		TotalCO2Kg:            round(total, 1),
		TotalCO2Tons:          round(tons, 3),
		OffsetCostUSD:         round(tons*OffsetUSDPerTon, 2),
		WaterLiters:           round(water, 0),
		CarMilesEquivalent:    round(total/CarKgPerMile, 0),
		FlightMilesEquivalent: round(total/FlightKgPerMile, 0),
		ShowersEquivalent:     round(water/LitersPerShower, 1),
		MessagePairs:          pairs,
	}
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(x*p) / p
}
