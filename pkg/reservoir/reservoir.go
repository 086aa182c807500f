// Package reservoir sizes the storage tank with the Rippl mass-balance method.
package reservoir

import (
	"math"

	"github.com/pumpstation/pumpstation/pkg/types"
	"gonum.org/v1/gonum/floats"
)

const secondsPerHour = 3600

// DemandSeries tiles the hourly factors over the horizon and scales them by
// the design flow (m³/s).
func DemandSeries(designFlow float64, factors []float64, hours int) []float64 {
	demand := make([]float64, hours)
	if len(factors) == 0 {
		return demand
	}
	for h := range demand {
		demand[h] = designFlow * factors[h%len(factors)]
	}
	return demand
}

// ActiveStorage returns the storage swing (m³) needed for a constant supply
// (m³/s) to cover the hourly demand series without overflowing or running dry.
func ActiveStorage(supply float64, demand []float64) float64 {
	if len(demand) == 0 {
		return 0
	}
	net := make([]float64, len(demand))
	for h, d := range demand {
		net[h] = (supply - d) * secondsPerHour
	}
	cumulative := floats.CumSum(make([]float64, len(net)), net)
	return floats.Max(cumulative) - floats.Min(cumulative)
}

// RoundCapacity rounds the capacity up to the next multiple of rounding and
// never returns less than one rounding unit.
func RoundCapacity(capacity, rounding float64) float64 {
	if rounding <= 0 {
		return capacity
	}
	rounded := math.Ceil(capacity/rounding) * rounding
	return math.Max(rounded, rounding)
}

// SizeRippl sizes the tank for pumps supplying a constant flow (m³/s) around
// the clock against the tiled demand profile. The active storage is grossed
// up so it sits above the minimum operating level.
func SizeRippl(supply float64, cfg types.Config) types.Reservoir {
	demand := DemandSeries(cfg.DesignFlow, cfg.HourlyFactors, cfg.Horizon())
	active := ActiveStorage(supply, demand)

	total := active / (1 - cfg.MinTankLevel)
	capacity := RoundCapacity(total, cfg.TankRounding)
	return types.Reservoir{
		CapacityM3:      capacity,
		ActiveStorageM3: active,
		InitialVolumeM3: capacity * cfg.InitialTankLevel,
		Sized:           true,
	}
}

// Resolve returns the configured fixed tank when there is one and otherwise
// sizes it with SizeRippl.
func Resolve(supply float64, cfg types.Config) types.Reservoir {
	if cfg.TankCapacity == nil {
		return SizeRippl(supply, cfg)
	}
	demand := DemandSeries(cfg.DesignFlow, cfg.HourlyFactors, cfg.Horizon())
	capacity := *cfg.TankCapacity
	return types.Reservoir{
		CapacityM3:      capacity,
		ActiveStorageM3: ActiveStorage(supply, demand),
		InitialVolumeM3: capacity * cfg.InitialTankLevel,
		Sized:           false,
	}
}
