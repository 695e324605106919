package services

import (
	"github.com/Faarae/dashboard-SmartEcoBin/config"
	"github.com/Faarae/dashboard-SmartEcoBin/models"
)

const (
	CapacityAvailable  = "available"
	CapacityAlmostFull = "almost_full"
	CapacityOverload   = "overload"

	AirFresh  = "fresh"
	AirSmelly = "smelly"
	AirToxic  = "toxic"

	DecaySafe     = "safe"
	DecayWarning  = "warning"
	DecayCritical = "critical"
)

// toxicMargin is how far above the gas threshold the air counts as toxic.
const toxicMargin = 200

// DecayRisk maps gas above the baseline onto 0..100. Display only, it never
// feeds the classifier.
func DecayRisk(gas int, s config.SensorConfig) int {
	if gas <= s.DecayBaseline {
		return 0
	}
	return min(100, (gas-s.DecayBaseline)*100/s.DecaySpan)
}

func DecayBand(risk int) string {
	switch {
	case risk > 70:
		return DecayCritical
	case risk > 30:
		return DecayWarning
	default:
		return DecaySafe
	}
}

// FillPercent converts the ultrasonic distance to the waste surface into how
// full a bin of the given depth is.
func FillPercent(distance, depth int) int {
	return max(0, min(100, (depth-distance)*100/depth))
}

func CapacityBand(fill, distance int, th models.Thresholds) string {
	switch {
	case fill > 90 || distance < th.Distance:
		return CapacityOverload
	case fill > 70:
		return CapacityAlmostFull
	default:
		return CapacityAvailable
	}
}

func AirBand(gas int, th models.Thresholds) string {
	switch {
	case gas > th.Gas+toxicMargin:
		return AirToxic
	case gas > th.Gas:
		return AirSmelly
	default:
		return AirFresh
	}
}

func BuildIndicators(r models.Reading, th models.Thresholds, s config.SensorConfig) models.Indicators {
	fill := FillPercent(r.Distance, s.BinDepthCM)
	risk := DecayRisk(r.Gas, s)

	level := 0.0
	if s.GasMax > 0 {
		level = min(1, float64(r.Gas)/float64(s.GasMax))
	}

	return models.Indicators{
		FillPercent: fill,
		Capacity:    CapacityBand(fill, r.Distance, th),
		GasLevel:    max(0, level),
		Air:         AirBand(r.Gas, th),
		DecayRisk:   risk,
		DecayBand:   DecayBand(risk),
	}
}
