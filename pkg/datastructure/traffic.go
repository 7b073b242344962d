package datastructure

import (
	"reskflow-route-optimizer/pkg"
)

// enum of congestion level
type CongestionLevel uint8

const (
	FREE_FLOW CongestionLevel = iota
	MODERATE
	HEAVY
	SEVERE
)

// TrafficSample. live traffic observation for one segment. ephemeral,
// recomputed each evaluation pass and never cached.
type TrafficSample struct {
	CurrentSpeed    float64 // km/h
	NormalSpeed     float64 // km/h
	CongestionLevel CongestionLevel
}

func NewTrafficSample(currentSpeed, normalSpeed float64) TrafficSample {
	s := TrafficSample{
		CurrentSpeed: currentSpeed,
		NormalSpeed:  normalSpeed,
	}
	s.CongestionLevel = s.congestion()
	return s
}

func (s TrafficSample) congestion() CongestionLevel {
	m := s.DurationMultiplier()
	switch {
	case m < 1.15:
		return FREE_FLOW
	case m < 1.5:
		return MODERATE
	case m < 2.25:
		return HEAVY
	default:
		return SEVERE
	}
}

// DurationMultiplier. normalSpeed/currentSpeed clamped to [1,3], applied on
// top of the cached free-flow duration.
func (s TrafficSample) DurationMultiplier() float64 {
	if s.CurrentSpeed <= 0 || s.NormalSpeed <= 0 {
		return pkg.TRAFFIC_MULTIPLIER_MIN
	}
	m := s.NormalSpeed / s.CurrentSpeed
	if m < pkg.TRAFFIC_MULTIPLIER_MIN {
		return pkg.TRAFFIC_MULTIPLIER_MIN
	}
	if m > pkg.TRAFFIC_MULTIPLIER_MAX {
		return pkg.TRAFFIC_MULTIPLIER_MAX
	}
	return m
}
