package geo

import (
	"reskflow-route-optimizer/pkg"
)

// fuel / emission derivation for a travelled distance. the fuel model works in
// US gallons and miles, distances everywhere else in this codebase are km.

func FuelGallons(distanceKm float64) float64 {
	miles := distanceKm / pkg.KM_PER_MILE
	return miles / pkg.FUEL_EFFICIENCY_MPG
}

func FuelCost(distanceKm float64) float64 {
	return FuelGallons(distanceKm) * pkg.GAS_PRICE_PER_GALLON
}

// CO2Emissions. kg of CO2 for the travelled distance.
func CO2Emissions(distanceKm float64) float64 {
	return FuelGallons(distanceKm) * pkg.CO2_KG_PER_GALLON
}

// EstimateEarnings. rough driver payout estimate used by suggestion scoring.
func EstimateEarnings(distanceKm float64) float64 {
	return pkg.DRIVER_BASE_FARE + distanceKm*pkg.DRIVER_RATE_PER_KM
}
