// Package station evaluates a pumping station configuration once and exposes
// the results through read-only accessors.
package station

import (
	"context"
	"log/slog"
	"math"

	"github.com/pumpstation/pumpstation/pkg/controller"
	"github.com/pumpstation/pumpstation/pkg/economics"
	"github.com/pumpstation/pumpstation/pkg/hydraulics"
	"github.com/pumpstation/pumpstation/pkg/log"
	"github.com/pumpstation/pumpstation/pkg/reservoir"
	"github.com/pumpstation/pumpstation/pkg/tariff"
	"github.com/pumpstation/pumpstation/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	litersPerM3 = 1000.0

	// DefaultCurvePoints is the number of samples Curves returns when asked for
	// fewer than two.
	DefaultCurvePoints = 50
	// MaxCurvePoints bounds Curves.
	MaxCurvePoints = 1000

	moneyPlaces = 2
	// cost per m³ is usually a fraction of a cent
	unitCostPlaces = 4
)

// Oracle is the narrow view of a station that an external optimizer needs.
type Oracle interface {
	SystemHead(q float64) float64
	Costs() types.CostSummary
}

// Station holds every derived result for one configuration. It is immutable
// after Build and safe for concurrent use.
type Station struct {
	cfg       types.Config
	curve     types.PumpCurve
	op        types.OperatingPoint
	reservoir types.Reservoir
	trace     types.SimulationTrace
	costs     types.CostSummary
}

var _ Oracle = (*Station)(nil)

// Build validates the configuration and computes the pump curve, operating
// point, reservoir, simulation and costs. The configuration is copied so later
// changes by the caller have no effect.
func Build(ctx context.Context, cfg types.Config) (*Station, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()

	s := &Station{cfg: cfg}
	s.curve = hydraulics.FitPumpCurve(cfg)
	s.op = hydraulics.SolveOperatingPoint(cfg, s.curve)
	if !s.hydraulicsFinite() {
		return nil, &types.ConfigError{Field: "designFlow", Reason: "gives pump or system heads that are not finite"}
	}
	log.Ctx(ctx).DebugContext(
		ctx,
		"solved operating point",
		slog.Float64("shutoffHead", s.curve.ShutoffHead),
		slog.Float64("curvature", s.curve.Curvature),
		slog.Float64("flowPerPump", s.op.FlowPerPump),
		slog.Float64("head", s.op.Head),
		slog.Float64("efficiency", s.op.Efficiency),
	)

	supply := s.op.TotalFlow
	s.reservoir = reservoir.Resolve(supply, cfg)

	demand := reservoir.DemandSeries(cfg.DesignFlow, cfg.HourlyFactors, cfg.Horizon())
	s.trace = controller.NewController().Simulate(ctx, controller.SimInput{
		CapacityM3:      s.reservoir.CapacityM3,
		InitialVolumeM3: s.reservoir.InitialVolumeM3,
		SupplyM3s:       supply,
		Demand:          demand,
	})

	s.costs = economics.Calculate(economics.Input{
		PowerPerPumpKW: hydraulics.OperatingPowerKW(s.op),
		PumpCount:      cfg.PumpCount,
		DesignFlow:     cfg.DesignFlow,
		PumpOn:         s.trace.PumpOn,
		Schedule:       tariff.FromConfig(cfg),
	})
	if !finite(s.reservoir.CapacityM3, s.costs.TotalCost, s.costs.CostPerM3, s.costs.EnergyKWH) {
		return nil, &types.ConfigError{Field: "electricityCost", Reason: "gives costs that are not finite"}
	}
	log.Ctx(ctx).DebugContext(
		ctx,
		"built station",
		slog.Float64("capacityM3", s.reservoir.CapacityM3),
		slog.Bool("sized", s.reservoir.Sized),
		slog.Float64("totalCost", s.costs.TotalCost),
		slog.Float64("costPerM3", s.costs.CostPerM3),
	)
	return s, nil
}

// hydraulicsFinite checks the curve, the operating point and both heads at
// the top of the solver grid. Both heads are monotone so Curves stays finite
// below that flow.
func (s *Station) hydraulicsFinite() bool {
	if !finite(s.curve.ShutoffHead, s.curve.Curvature, s.op.Head, s.op.Efficiency, s.op.PowerPerPumpKW) {
		return false
	}
	maxFlow := 1.5 * s.cfg.DesignFlow
	return finite(s.SystemHead(maxFlow*float64(s.cfg.PumpCount)), s.PumpHead(maxFlow))
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Config returns a copy of the configuration the station was built from.
func (s *Station) Config() types.Config {
	return s.cfg.Clone()
}

// SystemHead returns the head (m) the piping needs at total flow q (m³/s).
func (s *Station) SystemHead(q float64) float64 {
	return hydraulics.SystemHead(s.cfg, q)
}

// PumpHead returns the head (m) one pump develops at flow q (m³/s).
func (s *Station) PumpHead(q float64) float64 {
	return hydraulics.PumpHead(s.curve, q)
}

// Efficiency returns the efficiency (0-1) of one pump at flow q (m³/s).
func (s *Station) Efficiency(q float64) float64 {
	return hydraulics.Efficiency(s.cfg, q)
}

// PowerKW returns the electrical draw of one pump at flow q (m³/s).
func (s *Station) PowerKW(q float64) float64 {
	return hydraulics.PowerKW(s.cfg, s.curve, q)
}

func (s *Station) PumpCurve() types.PumpCurve {
	return s.curve
}

func (s *Station) OperatingPoint() types.OperatingPoint {
	return s.op
}

func (s *Station) Reservoir() types.Reservoir {
	return s.reservoir
}

// Trace returns a copy of the simulation output.
func (s *Station) Trace() types.SimulationTrace {
	return s.trace.Clone()
}

// Costs returns a copy of the cost summary.
func (s *Station) Costs() types.CostSummary {
	return s.costs.Clone()
}

// VFD returns the speed the pumps must run at to deliver the total flow
// target in L/s. The boolean is false when no speed can reach it.
func (s *Station) VFD(targetLPS float64) (types.VFDResult, bool) {
	return hydraulics.AnalyzeVFD(s.cfg, s.curve, targetLPS/litersPerM3)
}

// Curves samples the system and pump curves from zero to 1.5x the design
// flow. SystemHead is evaluated at the total flow of all pumps and the other
// columns per pump, so both heads line up at the operating point.
func (s *Station) Curves(points int) []types.CurvePoint {
	if points < 2 {
		points = DefaultCurvePoints
	}
	if points > MaxCurvePoints {
		points = MaxCurvePoints
	}
	n := float64(s.cfg.PumpCount)
	maxFlow := 1.5 * s.cfg.DesignFlow / n
	curve := make([]types.CurvePoint, points)
	for i := range curve {
		q := maxFlow * float64(i) / float64(points-1)
		curve[i] = types.CurvePoint{
			Flow:       q,
			SystemHead: s.SystemHead(q * n),
			PumpHead:   s.PumpHead(q),
			Efficiency: s.Efficiency(q),
			PowerKW:    s.PowerKW(q),
		}
	}
	return curve
}

// Report returns a snapshot of every output.
func (s *Station) Report() types.Report {
	return types.Report{
		Config:           s.Config(),
		PumpCurve:        s.curve,
		OperatingPoint:   s.op,
		Reservoir:        s.reservoir,
		Trace:            s.Trace(),
		Costs:            s.Costs(),
		TotalCostRounded: RoundMoney(s.costs.TotalCost, moneyPlaces),
		CostPerM3Rounded: RoundMoney(s.costs.CostPerM3, unitCostPlaces),
	}
}

// RoundMoney formats a currency amount with a fixed number of decimal places.
func RoundMoney(amount float64, places int32) string {
	return decimal.NewFromFloat(amount).StringFixed(places)
}
