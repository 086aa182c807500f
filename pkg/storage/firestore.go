package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"github.com/pumpstation/pumpstation/pkg/log"
	"github.com/pumpstation/pumpstation/pkg/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const scenariosCollection = "scenarios"

// FirestoreProvider implements the Database interface using Google Cloud
// Firestore. Each scenario is a document in the "scenarios" collection holding
// the scenario as a JSON string next to its config version.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	// Project ID can be empty since it is detected from the environment.
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// SaveScenario writes the scenario to the "scenarios/{id}" document.
func (f *FirestoreProvider) SaveScenario(ctx context.Context, scenario types.Scenario) error {
	if err := validateID(scenario.ID); err != nil {
		return err
	}
	jsonBytes, err := json.Marshal(scenario)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	_, err = f.client.Collection(scenariosCollection).Doc(scenario.ID).Set(ctx, map[string]interface{}{
		"json":    string(jsonBytes),
		"name":    scenario.Name,
		"version": scenario.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to save scenario %s: %w", scenario.ID, err)
	}
	return nil
}

// GetScenario reads the "scenarios/{id}" document.
func (f *FirestoreProvider) GetScenario(ctx context.Context, id string) (types.Scenario, error) {
	if err := validateID(id); err != nil {
		return types.Scenario{}, err
	}
	doc, err := f.client.Collection(scenariosCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Scenario{}, fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
		}
		return types.Scenario{}, fmt.Errorf("failed to get scenario %s: %w", id, err)
	}
	return decodeScenarioDoc(ctx, doc)
}

// ListScenarios retrieves all scenarios ordered by name.
func (f *FirestoreProvider) ListScenarios(ctx context.Context) ([]types.Scenario, error) {
	iter := f.client.Collection(scenariosCollection).OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var scenarios []types.Scenario
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating scenarios: %w", err)
		}

		scenario, err := decodeScenarioDoc(ctx, doc)
		if err != nil {
			// Skip malformed documents
			continue
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

// DeleteScenario removes the "scenarios/{id}" document.
func (f *FirestoreProvider) DeleteScenario(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	// Delete with Exists fails with NotFound instead of silently succeeding
	_, err := f.client.Collection(scenariosCollection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
		}
		return fmt.Errorf("failed to delete scenario %s: %w", id, err)
	}
	return nil
}

func decodeScenarioDoc(ctx context.Context, doc *firestore.DocumentSnapshot) (types.Scenario, error) {
	id := doc.Ref.ID

	// Read version if available (default 0)
	var version int
	if v, err := doc.DataAt("version"); err == nil {
		if vInt, ok := v.(int64); ok {
			version = int(vInt)
		}
	}

	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "scenario doc missing json", slog.String("scenarioID", id), slog.Any("err", err))
		return types.Scenario{}, fmt.Errorf("scenario %s missing json: %w", id, err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "scenario doc json not string", slog.String("scenarioID", id))
		return types.Scenario{}, fmt.Errorf("scenario %s json not string", id)
	}

	var scenario types.Scenario
	if err := json.Unmarshal([]byte(jsonStr), &scenario); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal scenario", slog.String("scenarioID", id), slog.Any("err", err))
		return types.Scenario{}, fmt.Errorf("failed to unmarshal scenario %s: %w", id, err)
	}
	scenario.ID = id
	scenario.Version = version
	return scenario, nil
}
