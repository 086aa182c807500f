package server

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pumpstation/pumpstation/pkg/log"
	"github.com/pumpstation/pumpstation/pkg/storage"
	"github.com/pumpstation/pumpstation/pkg/types"
)

// getScenarioWithMigration loads a scenario and brings its config up to the
// current version, saving the migrated config back.
func (s *Server) getScenarioWithMigration(ctx context.Context, id string) (types.Scenario, error) {
	scenario, err := s.storage.GetScenario(ctx, id)
	if err != nil {
		return types.Scenario{}, err
	}

	// Check for migration
	if scenario.Version < types.CurrentConfigVersion {
		log.Ctx(ctx).InfoContext(ctx, "migrating scenario config", slog.String("scenarioID", id), slog.Int("oldVersion", scenario.Version), slog.Int("newVersion", types.CurrentConfigVersion))
		cfg, changed, err := types.MigrateConfig(scenario.Config, scenario.Version)
		if err != nil {
			// Log error but return scenario as is (best effort)
			log.Ctx(ctx).ErrorContext(ctx, "failed to migrate scenario config", slog.Int("currentVersion", scenario.Version), slog.Any("error", err))
			return scenario, nil
		}
		oldVersion := scenario.Version
		scenario.Config = cfg
		scenario.Version = types.CurrentConfigVersion
		if changed {
			scenario.UpdatedAt = time.Now().UTC()
		}
		if err := s.storage.SaveScenario(ctx, scenario); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to save migrated scenario", slog.Any("error", err))
			// Return migrated scenario even if save failed, so current request works with new defaults
		} else {
			log.Ctx(ctx).InfoContext(ctx, "saved migrated scenario", slog.Int("oldVersion", oldVersion), slog.Int("newVersion", types.CurrentConfigVersion))
		}
	}
	return scenario, nil
}

// loadScenario writes the error response itself and returns false on failure.
func (s *Server) loadScenario(w http.ResponseWriter, r *http.Request) (types.Scenario, bool) {
	ctx := r.Context()
	id := r.PathValue("id")
	scenario, err := s.getScenarioWithMigration(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrScenarioNotFound) {
			writeJSONError(w, "scenario not found", http.StatusNotFound)
			return types.Scenario{}, false
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to get scenario", slog.String("scenarioID", id), slog.Any("error", err))
		writeJSONError(w, "failed to get scenario", http.StatusInternalServerError)
		return types.Scenario{}, false
	}
	return scenario, true
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scenarios, err := s.storage.ListScenarios(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list scenarios", slog.Any("error", err))
		writeJSONError(w, "failed to list scenarios", http.StatusInternalServerError)
		return
	}
	if scenarios == nil {
		scenarios = []types.Scenario{}
	}
	writeJSON(w, scenarios)
}

func (s *Server) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var scenario types.Scenario
	if err := decodeJSON(w, r, &scenario); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cfg, _, err := types.MigrateConfig(scenario.Config, scenario.Version)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := cfg.Validate(); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	scenario.Config = cfg
	scenario.Version = types.CurrentConfigVersion
	if scenario.Name == "" {
		scenario.Name = cfg.Name
	}

	now := time.Now().UTC()
	if scenario.ID == "" {
		scenario.ID = uuid.NewString()
		scenario.CreatedAt = now
	} else {
		existing, err := s.storage.GetScenario(ctx, scenario.ID)
		switch {
		case err == nil:
			scenario.CreatedAt = existing.CreatedAt
		case errors.Is(err, storage.ErrScenarioNotFound):
			scenario.CreatedAt = now
		default:
			log.Ctx(ctx).ErrorContext(ctx, "failed to get scenario", slog.String("scenarioID", scenario.ID), slog.Any("error", err))
			writeJSONError(w, "failed to save scenario", http.StatusInternalServerError)
			return
		}
	}
	scenario.UpdatedAt = now

	if err := s.storage.SaveScenario(ctx, scenario); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to save scenario", slog.String("scenarioID", scenario.ID), slog.Any("error", err))
		writeJSONError(w, "failed to save scenario", http.StatusInternalServerError)
		return
	}
	log.Ctx(ctx).InfoContext(ctx, "saved scenario", slog.String("scenarioID", scenario.ID), slog.String("by", s.getUserEmail(r)))
	writeJSON(w, scenario)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	scenario, ok := s.loadScenario(w, r)
	if !ok {
		return
	}
	writeJSON(w, scenario)
}

func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if err := s.storage.DeleteScenario(ctx, id); err != nil {
		if errors.Is(err, storage.ErrScenarioNotFound) {
			writeJSONError(w, "scenario not found", http.StatusNotFound)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to delete scenario", slog.String("scenarioID", id), slog.Any("error", err))
		writeJSONError(w, "failed to delete scenario", http.StatusInternalServerError)
		return
	}
	log.Ctx(ctx).InfoContext(ctx, "deleted scenario", slog.String("scenarioID", id), slog.String("by", s.getUserEmail(r)))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScenarioReport(w http.ResponseWriter, r *http.Request) {
	scenario, ok := s.loadScenario(w, r)
	if !ok {
		return
	}
	st := s.buildStation(r.Context(), w, scenario.Config)
	if st == nil {
		return
	}
	writeJSON(w, st.Report())
}

func (s *Server) handleScenarioVFD(w http.ResponseWriter, r *http.Request) {
	flow, err := strconv.ParseFloat(r.URL.Query().Get("flowLPS"), 64)
	if err != nil || !(flow >= 0) || math.IsInf(flow, 0) {
		writeJSONError(w, "flowLPS must be a non-negative number", http.StatusBadRequest)
		return
	}
	scenario, ok := s.loadScenario(w, r)
	if !ok {
		return
	}
	st := s.buildStation(r.Context(), w, scenario.Config)
	if st == nil {
		return
	}
	writeJSON(w, vfd(st, flow))
}
