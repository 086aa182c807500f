package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/levenlabs/go-lflag"
	"github.com/pumpstation/pumpstation/pkg/log"
	"github.com/pumpstation/pumpstation/pkg/types"
	_ "modernc.org/sqlite"
)

// SQLiteProvider implements the Database interface with a local SQLite file.
// Scenarios are stored the same way as in Firestore: the scenario as JSON text
// next to its config version.
type SQLiteProvider struct {
	conn *sqlx.DB
	path string
}

type scenarioRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Version int    `db:"version"`
	JSON    string `db:"json"`
}

// configuredSQLite sets up the SQLite provider.
// It registers flags for configuration.
func configuredSQLite() *SQLiteProvider {
	path := lflag.String("sqlite-path", "pumpstation.db", "Path to the SQLite database file")

	s := &SQLiteProvider{}

	lflag.Do(func() {
		s.path = *path
	})

	return s
}

// NewSQLite returns a provider for the database at path. Init must be called
// before use.
func NewSQLite(path string) *SQLiteProvider {
	return &SQLiteProvider{path: path}
}

// Validate checks if the provider is properly configured.
func (s *SQLiteProvider) Validate() error {
	if s.path == "" {
		return fmt.Errorf("sqlite-path is required")
	}
	return nil
}

// modernc.org/sqlite applies each _pragma on every new connection.
const sqliteDSNParams = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// Init opens or creates the database and its schema.
func (s *SQLiteProvider) Init(ctx context.Context) error {
	conn, err := sqlx.Open("sqlite", s.path+sqliteDSNParams)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	s.conn = conn
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		s.conn = nil
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteProvider) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *SQLiteProvider) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		version INTEGER NOT NULL,
		json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scenarios_name ON scenarios(name);
	`
	_, err := s.conn.ExecContext(ctx, schema)
	return err
}

// SaveScenario creates or replaces the scenario row.
func (s *SQLiteProvider) SaveScenario(ctx context.Context, scenario types.Scenario) error {
	if err := validateID(scenario.ID); err != nil {
		return err
	}
	jsonBytes, err := json.Marshal(scenario)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	_, err = s.conn.NamedExecContext(ctx,
		`INSERT INTO scenarios (id, name, version, json) VALUES (:id, :name, :version, :json)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, version = excluded.version, json = excluded.json`,
		scenarioRow{
			ID:      scenario.ID,
			Name:    scenario.Name,
			Version: scenario.Version,
			JSON:    string(jsonBytes),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to save scenario %s: %w", scenario.ID, err)
	}
	return nil
}

// GetScenario reads one scenario row.
func (s *SQLiteProvider) GetScenario(ctx context.Context, id string) (types.Scenario, error) {
	if err := validateID(id); err != nil {
		return types.Scenario{}, err
	}
	var row scenarioRow
	err := s.conn.GetContext(ctx, &row, "SELECT id, name, version, json FROM scenarios WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Scenario{}, fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
		}
		return types.Scenario{}, fmt.Errorf("failed to get scenario %s: %w", id, err)
	}
	return decodeScenarioRow(ctx, row)
}

// ListScenarios retrieves all scenarios ordered by name.
func (s *SQLiteProvider) ListScenarios(ctx context.Context) ([]types.Scenario, error) {
	var rows []scenarioRow
	if err := s.conn.SelectContext(ctx, &rows, "SELECT id, name, version, json FROM scenarios ORDER BY name, id"); err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	scenarios := make([]types.Scenario, 0, len(rows))
	for _, row := range rows {
		scenario, err := decodeScenarioRow(ctx, row)
		if err != nil {
			// Skip malformed rows
			continue
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

// DeleteScenario removes one scenario row.
func (s *SQLiteProvider) DeleteScenario(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	res, err := s.conn.ExecContext(ctx, "DELETE FROM scenarios WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete scenario %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
	}
	return nil
}

func decodeScenarioRow(ctx context.Context, row scenarioRow) (types.Scenario, error) {
	var scenario types.Scenario
	if err := json.Unmarshal([]byte(row.JSON), &scenario); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal scenario", slog.String("scenarioID", row.ID), slog.Any("err", err))
		return types.Scenario{}, fmt.Errorf("failed to unmarshal scenario %s: %w", row.ID, err)
	}
	scenario.ID = row.ID
	scenario.Version = row.Version
	return scenario, nil
}
