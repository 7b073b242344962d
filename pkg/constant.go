package pkg

import "time"

// strategy selection thresholds, by number of non-start route points
const (
	EXACT_SEARCH_MAX_POINTS   = 10
	GENETIC_SEARCH_MAX_POINTS = 25

	INF_DISTANCE = 1e15
)

const (
	COORDINATE_KEY_PRECISION = 4 // decimal degrees, ~11m resolution
	SEGMENT_CACHE_TTL        = time.Hour
	PROVIDER_TIMEOUT         = 3 * time.Second
	FALLBACK_SPEED_KMH       = 40.0 // assumed average speed when the mapping provider is down

	STOP_SERVICE_TIME_MINUTE = 5.0

	TRAFFIC_MULTIPLIER_MIN = 1.0
	TRAFFIC_MULTIPLIER_MAX = 3.0

	SIGNIFICANT_CHANGE_FRACTION = 0.10
)

// genetic algorithm parameters
const (
	GA_POPULATION_SIZE     = 50
	GA_GENERATIONS         = 100
	GA_MUTATION_RATE       = 0.02
	GA_ELITE_SIZE          = 10
	GA_MAX_REPAIR_ATTEMPTS = 8
)

// fuel & emission model. cost model in US units, distances kept in km
const (
	KM_PER_MILE          = 1.60934
	FUEL_EFFICIENCY_MPG  = 25.0
	GAS_PRICE_PER_GALLON = 3.50
	CO2_KG_PER_GALLON    = 8.887

	DRIVER_RATE_PER_KM = 1.15 // rough earnings estimate for suggestion scoring
	DRIVER_BASE_FARE   = 2.50
)

const (
	DEBUG = false
)
