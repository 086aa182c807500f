package controller

import (
	"context"
	"log/slog"
	"math"

	"github.com/pumpstation/pumpstation/pkg/log"
	"github.com/pumpstation/pumpstation/pkg/types"
)

const secondsPerHour = 3600

// SimInput holds everything the tank simulation needs.
type SimInput struct {
	CapacityM3      float64
	InitialVolumeM3 float64
	// SupplyM3s is the combined flow of all pumps while running.
	SupplyM3s float64
	// Demand is the hourly outflow (m³/s), one entry per simulated hour.
	Demand []float64
}

// Simulate runs the tank forward one hour at a time. Each hour the controller
// decides from the volume at the start of the hour, then the volume moves by
// (supply - demand) over the hour and is clamped to [0, capacity].
func (c *Controller) Simulate(ctx context.Context, in SimInput) types.SimulationTrace {
	hours := len(in.Demand)
	trace := types.SimulationTrace{
		Volume: make([]float64, 0, hours+1),
		Demand: append([]float64(nil), in.Demand...),
		PumpOn: make([]bool, 0, hours),
		Hours:  make([]types.SimHour, 0, hours),
	}

	volume := clamp(in.InitialVolumeM3, 0, in.CapacityM3)
	trace.Volume = append(trace.Volume, volume)

	var starts int
	var hitEmpty, hitFull bool
	prevOn := false
	for h, demand := range in.Demand {
		decision := c.Decide(ctx, volume, in.CapacityM3)
		on := decision.State == PumpOn

		supply := 0.0
		if on {
			supply = in.SupplyM3s
			if !prevOn {
				starts++
			}
		}
		prevOn = on

		next := volume + (supply-demand)*secondsPerHour
		if next < 0 {
			next = 0
			hitEmpty = true
		}
		if next > in.CapacityM3 {
			next = in.CapacityM3
			hitFull = true
		}
		volume = next

		level := 0.0
		if in.CapacityM3 > 0 {
			level = volume / in.CapacityM3
		}

		trace.Volume = append(trace.Volume, volume)
		trace.PumpOn = append(trace.PumpOn, on)
		trace.Hours = append(trace.Hours, types.SimHour{
			Hour:      h,
			HourOfDay: h % types.HoursPerDay,
			DemandM3s: demand,
			SupplyM3s: supply,
			PumpOn:    on,
			VolumeM3:  volume,
			Level:     level,
			HitEmpty:  hitEmpty,
			HitFull:   hitFull,
		})
	}

	log.Ctx(ctx).DebugContext(
		ctx,
		"simulated tank",
		slog.Int("hours", hours),
		slog.Float64("capacityM3", in.CapacityM3),
		slog.Float64("finalVolumeM3", volume),
		slog.Int("pumpStarts", starts),
		slog.Bool("hitEmpty", hitEmpty),
		slog.Bool("hitFull", hitFull),
	)

	return trace
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
