package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/pumpstation/pumpstation/pkg/log"
	"github.com/pumpstation/pumpstation/pkg/station"
	"github.com/pumpstation/pumpstation/pkg/storage"
	"github.com/pumpstation/pumpstation/pkg/types"
)

func main() {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	}
	s := storage.Configured()
	dir := lflag.String("examples-dir", "examples", "Directory of station YAML files to seed")
	lflag.Configure()

	ctx := context.Background()
	defer s.Close()

	paths, err := filepath.Glob(filepath.Join(*dir, "*.yaml"))
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list examples", "error", err)
		os.Exit(1)
	}
	log.Ctx(ctx).InfoContext(ctx, "seeding example scenarios", "count", len(paths))

	now := time.Now().UTC()
	for _, path := range paths {
		cfg, err := types.LoadConfig(path)
		if err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to load example", "path", path, "error", err)
			os.Exit(1)
		}
		// make sure every seeded scenario can be evaluated
		st, err := station.Build(ctx, cfg)
		if err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "invalid example", "path", path, "error", err)
			os.Exit(1)
		}

		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		name := cfg.Name
		if name == "" {
			name = id
		}
		scenario := types.Scenario{
			ID:        "example-" + id,
			Name:      name,
			Config:    cfg,
			Version:   types.CurrentConfigVersion,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.SaveScenario(ctx, scenario); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to seed scenario", "path", path, "error", err)
			os.Exit(1)
		}

		costs := st.Costs()
		fmt.Printf("Seeded %s: tank %.0f m³, cost %s (%s per m³)\n",
			scenario.ID, st.Reservoir().CapacityM3,
			station.RoundMoney(costs.TotalCost, 2), station.RoundMoney(costs.CostPerM3, 4))
	}

	log.Ctx(ctx).InfoContext(ctx, "seeded example scenarios successfully")
}
