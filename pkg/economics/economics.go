// Package economics prices a simulated pumping schedule.
package economics

import (
	"github.com/pumpstation/pumpstation/pkg/tariff"
	"github.com/pumpstation/pumpstation/pkg/types"
	"gonum.org/v1/gonum/floats"
)

const secondsPerHour = 3600

// Input is what Calculate needs from the rest of the station.
type Input struct {
	// PowerPerPumpKW is the electrical draw of one pump at the operating point.
	PowerPerPumpKW float64
	PumpCount      int
	// DesignFlow is the total station design flow (m³/s). Pumped volume is
	// credited at this rate, not at the operating point flow.
	DesignFlow float64
	PumpOn     []bool
	Schedule   tariff.Schedule
}

// Calculate returns the energy cost of running the pumps on the given hours.
// The simulation starts at midnight so hour h is priced at h mod 24 by
// tariff.Hourly.
func Calculate(in Input) types.CostSummary {
	schedule := in.Schedule
	if schedule == nil {
		schedule = tariff.Flat(0)
	}

	prices := tariff.Hourly(schedule, len(in.PumpOn))
	power := in.PowerPerPumpKW * float64(in.PumpCount)
	summary := types.CostSummary{
		HourlyCost:     make([]float64, len(in.PumpOn)),
		RunningPowerKW: power,
	}

	prevOn := false
	for h, on := range in.PumpOn {
		if on {
			summary.HourlyCost[h] = power * prices[h]
			summary.OnHours++
			if !prevOn {
				summary.PumpStarts++
			}
		}
		prevOn = on
	}

	summary.TotalCost = floats.Sum(summary.HourlyCost)
	summary.EnergyKWH = power * float64(summary.OnHours)
	summary.TotalVolumePumpedM3 = in.DesignFlow * float64(in.PumpCount) * float64(summary.OnHours) * secondsPerHour
	if summary.TotalVolumePumpedM3 > 0 {
		summary.CostPerM3 = summary.TotalCost / summary.TotalVolumePumpedM3
	}
	if len(in.PumpOn) > 0 {
		summary.DutyCycle = float64(summary.OnHours) / float64(len(in.PumpOn))
	}
	return summary
}
