// Package hydraulics evaluates the system and pump curves of a pumping
// station, solves their intersection and applies the affinity laws for
// variable speed operation.
package hydraulics

import (
	"math"

	"github.com/pumpstation/pumpstation/pkg/types"
	"gonum.org/v1/gonum/floats"
)

const (
	// WaterDensity in kg/m³.
	WaterDensity = 1000.0
	// Gravity in m/s².
	Gravity = 9.81

	// Hazen-Williams friction loss in SI units:
	// hf = 10.67 * L * q^1.852 / (C^1.852 * D^4.871)
	hazenWilliamsK           = 10.67
	hazenWilliamsFlowExp     = 1.852
	hazenWilliamsDiameterExp = 4.871

	// the shutoff head is estimated as this multiple of the design point head
	shutoffHeadFactor = 1.33

	// SolverSamples is the number of per-pump flows evaluated when searching for
	// the operating point.
	SolverSamples = 400
	// SolverMinFlow is the lower bound of the search grid (m³/s).
	SolverMinFlow = 1e-6
	// the grid extends to this multiple of the design flow
	solverRangeFactor = 1.5

	// efficiencies at or below this are treated as a stopped pump
	minEfficiency = 1e-6
	// design flows below this are treated as zero
	minDesignFlow = 1e-12
)

// FrictionLoss returns the Hazen-Williams head loss (m) for the total flow q
// (m³/s) through the discharge pipe.
func FrictionLoss(cfg types.Config, q float64) float64 {
	if q <= 0 || cfg.HazenWilliamsC <= 0 || cfg.PipeDiameter <= 0 {
		return 0
	}
	return hazenWilliamsK * cfg.PipeLength * math.Pow(q, hazenWilliamsFlowExp) /
		(math.Pow(cfg.HazenWilliamsC, hazenWilliamsFlowExp) * math.Pow(cfg.PipeDiameter, hazenWilliamsDiameterExp))
}

// SystemHead returns the head (m) the system requires to move the total flow q.
// It is non-decreasing in q.
func SystemHead(cfg types.Config, q float64) float64 {
	return cfg.StaticHead + FrictionLoss(cfg, q)
}

// FitPumpCurve approximates the pump curve with a parabola that passes through
// the design point and has a shutoff head of 1.33 times the design head.
func FitPumpCurve(cfg types.Config) types.PumpCurve {
	designHead := SystemHead(cfg, cfg.DesignFlow)
	shutoff := shutoffHeadFactor * designHead

	var a float64
	if cfg.DesignFlow >= minDesignFlow {
		a = (shutoff - designHead) / (cfg.DesignFlow * cfg.DesignFlow)
	}
	return types.PumpCurve{
		ShutoffHead: shutoff,
		Curvature:   a,
	}
}

// PumpHead returns the head (m) a single pump at 100% speed delivers at flow q.
func PumpHead(curve types.PumpCurve, q float64) float64 {
	return curve.ShutoffHead - curve.Curvature*q*q
}

// Efficiency returns the pump efficiency (0-1) at flow q. It peaks at the
// design flow and never goes below zero.
func Efficiency(cfg types.Config, q float64) float64 {
	if cfg.DesignFlow < minDesignFlow {
		return 0
	}
	x := (q - cfg.DesignFlow) / cfg.DesignFlow
	return math.Max(0, cfg.PeakEfficiency*(1-x*x))
}

// PowerKW returns the shaft power (kW) of one pump running at flow q on its
// 100% speed curve. It is zero when the pump has no efficiency at q.
func PowerKW(cfg types.Config, curve types.PumpCurve, q float64) float64 {
	return shaftPowerKW(q, PumpHead(curve, q), Efficiency(cfg, q))
}

// OperatingPowerKW returns the shaft power (kW) of one pump at the operating
// point, reusing the head and efficiency solved there.
func OperatingPowerKW(op types.OperatingPoint) float64 {
	return shaftPowerKW(op.FlowPerPump, op.Head, op.Efficiency)
}

func shaftPowerKW(q, head, efficiency float64) float64 {
	if efficiency < minEfficiency {
		return 0
	}
	p := WaterDensity * Gravity * q * head / (1000 * efficiency)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}

// SampleDifferences evaluates |pump head - system head| over the solver grid
// for N pumps in parallel. The flows are per pump.
func SampleDifferences(cfg types.Config, curve types.PumpCurve) ([]float64, []float64) {
	flows := floats.Span(make([]float64, SolverSamples), SolverMinFlow, solverRangeFactor*cfg.DesignFlow)
	n := float64(cfg.PumpCount)
	diffs := make([]float64, len(flows))
	for i, q := range flows {
		diffs[i] = math.Abs(PumpHead(curve, q) - SystemHead(cfg, n*q))
	}
	return flows, diffs
}

// SolveOperatingPoint finds the per-pump flow where the pump curve meets the
// system curve by grid search. Ties resolve to the lowest flow sampled.
func SolveOperatingPoint(cfg types.Config, curve types.PumpCurve) types.OperatingPoint {
	flows, diffs := SampleDifferences(cfg, curve)
	// MinIdx returns the first index when several share the minimum
	idx := floats.MinIdx(diffs)

	q := flows[idx]
	op := types.OperatingPoint{
		FlowPerPump: q,
		TotalFlow:   q * float64(cfg.PumpCount),
		Head:        PumpHead(curve, q),
		Efficiency:  Efficiency(cfg, q),
	}
	op.PowerPerPumpKW = OperatingPowerKW(op)
	return op
}
