package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pumpstation/pumpstation/pkg/log"
	"github.com/pumpstation/pumpstation/pkg/station"
	"github.com/pumpstation/pumpstation/pkg/types"
)

type vfdRequest struct {
	Config        types.Config `json:"config"`
	TargetFlowLPS float64      `json:"targetFlowLPS"`
}

type vfdResponse struct {
	Feasible bool             `json:"feasible"`
	Result   *types.VFDResult `json:"result,omitempty"`
}

type curvesRequest struct {
	Config types.Config `json:"config"`
	Points int          `json:"points"`
}

// buildStation applies config defaults and evaluates it through the station
// cache. It writes the error response itself and returns nil on failure.
func (s *Server) buildStation(ctx context.Context, w http.ResponseWriter, cfg types.Config) *station.Station {
	cfg, _, err := types.MigrateConfig(cfg, 0)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to migrate config", slog.Any("error", err))
		writeJSONError(w, "failed to migrate config", http.StatusInternalServerError)
		return nil
	}
	st, err := s.stations.Station(ctx, cfg)
	if err != nil {
		if errors.Is(err, types.ErrInvalidConfig) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return nil
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to build station", slog.Any("error", err))
		writeJSONError(w, "failed to evaluate station", http.StatusInternalServerError)
		return nil
	}
	return st
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var cfg types.Config
	if err := decodeJSON(w, r, &cfg); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	st := s.buildStation(ctx, w, cfg)
	if st == nil {
		return
	}
	writeJSON(w, st.Report())
}

func (s *Server) handleVFD(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req vfdRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.TargetFlowLPS < 0 {
		writeJSONError(w, "targetFlowLPS must be non-negative", http.StatusBadRequest)
		return
	}
	st := s.buildStation(ctx, w, req.Config)
	if st == nil {
		return
	}
	writeJSON(w, vfd(st, req.TargetFlowLPS))
}

func (s *Server) handleCurves(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req curvesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Points == 0 {
		req.Points = station.DefaultCurvePoints
	}
	if req.Points < 2 || req.Points > station.MaxCurvePoints {
		writeJSONError(w, fmt.Sprintf("points must be between 2 and %d", station.MaxCurvePoints), http.StatusBadRequest)
		return
	}
	st := s.buildStation(ctx, w, req.Config)
	if st == nil {
		return
	}
	writeJSON(w, st.Curves(req.Points))
}

func vfd(st *station.Station, targetLPS float64) vfdResponse {
	res, ok := st.VFD(targetLPS)
	if !ok {
		return vfdResponse{Feasible: false}
	}
	return vfdResponse{Feasible: true, Result: &res}
}
