package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/levenlabs/go-lflag"
	"github.com/pumpstation/pumpstation/pkg/types"
)

var (
	ErrScenarioNotFound = errors.New("scenario not found")
)

// Database defines the interface for persisting scenarios.
type Database interface {
	// SaveScenario creates or replaces the scenario with the same ID.
	SaveScenario(ctx context.Context, scenario types.Scenario) error
	// GetScenario returns ErrScenarioNotFound if there's no scenario with id.
	GetScenario(ctx context.Context, id string) (types.Scenario, error)
	// ListScenarios returns every scenario ordered by name.
	ListScenarios(ctx context.Context) ([]types.Scenario, error)
	// DeleteScenario returns ErrScenarioNotFound if there's no scenario with id.
	DeleteScenario(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}

// Configured sets up the Storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "firestore", "Storage provider to use (available: firestore, sqlite)")

	var p struct{ Database }

	fs := configuredFirestore()
	sq := configuredSQLite()

	lflag.Do(func() {
		switch *provider {
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			p.Database = fs
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
		case "sqlite":
			if err := sq.Validate(); err != nil {
				panic(fmt.Sprintf("sqlite validation failed: %v", err))
			}
			p.Database = sq
			if err := sq.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("sqlite init failed: %v", err))
			}
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}

func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("scenario ID cannot be empty")
	}
	return nil
}
