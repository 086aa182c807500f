package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pumpstation/pumpstation/pkg/types"
	"github.com/shopspring/decimal"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "off"
}

func printReport(w io.Writer, r types.Report) error {
	name := r.Config.Name
	if name == "" {
		name = "station"
	}
	fmt.Fprintf(w, "=== %s ===\n\n", name)

	tw := newTable(w)
	fmt.Fprintf(tw, "Shutoff head\t%.2f m\n", r.PumpCurve.ShutoffHead)
	fmt.Fprintf(tw, "Curvature\t%.1f s²/m⁵\n", r.PumpCurve.Curvature)
	fmt.Fprintf(tw, "Flow per pump\t%.2f L/s\n", r.OperatingPoint.FlowPerPump*1000)
	fmt.Fprintf(tw, "Total flow\t%.2f L/s\n", r.OperatingPoint.TotalFlow*1000)
	fmt.Fprintf(tw, "Head\t%.2f m\n", r.OperatingPoint.Head)
	fmt.Fprintf(tw, "Efficiency\t%.1f%%\n", r.OperatingPoint.Efficiency*100)
	fmt.Fprintf(tw, "Power per pump\t%.2f kW\n", r.OperatingPoint.PowerPerPumpKW)
	sized := "fixed"
	if r.Reservoir.Sized {
		sized = "sized"
	}
	fmt.Fprintf(tw, "Tank capacity\t%.0f m³ (%s)\n", r.Reservoir.CapacityM3, sized)
	fmt.Fprintf(tw, "Active storage\t%.2f m³\n", r.Reservoir.ActiveStorageM3)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%-6s %-6s %10s %10s %8s %10s\n", "Hour", "Pumps", "Demand", "Volume", "Level", "Cost")
	for i, h := range r.Trace.Hours {
		var cost float64
		if i < len(r.Costs.HourlyCost) {
			cost = r.Costs.HourlyCost[i]
		}
		fmt.Fprintf(w, "%-6d %-6s %10.2f %10.2f %7.1f%% %10s\n",
			h.Hour, onOff(h.PumpOn), h.DemandM3s*1000, h.VolumeM3, h.Level*100,
			decimal.NewFromFloat(cost).StringFixed(2))
	}

	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintf(tw, "Pump hours\t%d of %d (%.0f%%)\n", r.Costs.OnHours, len(r.Trace.PumpOn), r.Costs.DutyCycle*100)
	fmt.Fprintf(tw, "Pump starts\t%d\n", r.Costs.PumpStarts)
	fmt.Fprintf(tw, "Energy\t%.1f kWh\n", r.Costs.EnergyKWH)
	fmt.Fprintf(tw, "Volume pumped\t%.1f m³\n", r.Costs.TotalVolumePumpedM3)
	fmt.Fprintf(tw, "Total cost\t%s\n", r.TotalCostRounded)
	fmt.Fprintf(tw, "Cost per m³\t%s\n", r.CostPerM3Rounded)
	return tw.Flush()
}

func printVFD(w io.Writer, res types.VFDResult) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Speed\t%.1f%% (%.0f rpm)\n", res.SpeedRatio*100, res.SpeedRPM)
	if res.AboveRatedSpeed {
		fmt.Fprintf(tw, "\tabove rated speed\n")
	}
	fmt.Fprintf(tw, "Flow per pump\t%.2f L/s\t%.2f m³/h\n", res.FlowPerPumpLPS, res.FlowPerPumpM3h)
	fmt.Fprintf(tw, "Total flow\t%.2f L/s\t%.2f m³/h\n", res.TotalFlowLPS, res.TotalFlowM3h)
	fmt.Fprintf(tw, "Head\t%.2f m\n", res.HeadM)
	fmt.Fprintf(tw, "Efficiency\t%.1f%%\n", res.EfficiencyPct)
	fmt.Fprintf(tw, "Power\t%.2f kW per pump\t%.2f kW total\n", res.PowerPerPumpKW, res.TotalPowerKW)
	return tw.Flush()
}

func printCurves(w io.Writer, curve []types.CurvePoint) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Flow (L/s)\tSystem (m)\tPump (m)\tEfficiency\tPower (kW)")
	for _, p := range curve {
		fmt.Fprintf(tw, "%.2f\t%.2f\t%.2f\t%.1f%%\t%.2f\n",
			p.Flow*1000, p.SystemHead, p.PumpHead, p.Efficiency*100, p.PowerKW)
	}
	return tw.Flush()
}
