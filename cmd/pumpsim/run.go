package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pumpstation/pumpstation/pkg/station"
	"github.com/pumpstation/pumpstation/pkg/types"
)

func build(ctx context.Context, path string) (*station.Station, error) {
	cfg, err := types.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	st, err := station.Build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runEvaluate(ctx context.Context, w io.Writer, path string, jsonOut bool) error {
	st, err := build(ctx, path)
	if err != nil {
		return err
	}
	if jsonOut {
		return writeJSON(w, st.Report())
	}
	return printReport(w, st.Report())
}

func runValidate(w io.Writer, path string) error {
	cfg, err := types.LoadConfig(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	_, err = fmt.Fprintf(w, "%s: valid (%d pump(s), %d day horizon)\n", path, cfg.PumpCount, cfg.SimulationDays)
	return err
}

func runVFD(ctx context.Context, w io.Writer, path string, flowLPS float64, jsonOut bool) error {
	if flowLPS < 0 {
		return fmt.Errorf("flow-lps must be non-negative: %g", flowLPS)
	}
	st, err := build(ctx, path)
	if err != nil {
		return err
	}
	res, ok := st.VFD(flowLPS)
	if jsonOut {
		out := struct {
			Feasible bool             `json:"feasible"`
			Result   *types.VFDResult `json:"result,omitempty"`
		}{Feasible: ok}
		if ok {
			out.Result = &res
		}
		return writeJSON(w, out)
	}
	if !ok {
		_, err := fmt.Fprintf(w, "%.2f L/s is not reachable: the system needs %.2f m but the pumps shut off at %.2f m\n",
			flowLPS, st.SystemHead(flowLPS/1000), st.PumpCurve().ShutoffHead)
		return err
	}
	return printVFD(w, res)
}

func runCurves(ctx context.Context, w io.Writer, path string, points int, jsonOut bool) error {
	if points < 2 || points > station.MaxCurvePoints {
		return fmt.Errorf("points must be between 2 and %d", station.MaxCurvePoints)
	}
	st, err := build(ctx, path)
	if err != nil {
		return err
	}
	curve := st.Curves(points)
	if jsonOut {
		return writeJSON(w, curve)
	}
	return printCurves(w, curve)
}
