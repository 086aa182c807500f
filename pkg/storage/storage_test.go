package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pumpstation/pumpstation/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScenario(id, name string) types.Scenario {
	capacity := 250.0
	factors := make([]float64, types.HoursPerDay)
	for i := range factors {
		factors[i] = 1
	}
	now := time.Now().Truncate(time.Second).UTC()
	return types.Scenario{
		ID:   id,
		Name: name,
		Config: types.Config{
			Name:             name,
			DesignFlow:       0.01,
			StaticHead:       20,
			PumpSpeedRPM:     1500,
			PipeLength:       500,
			PipeDiameter:     0.1,
			HazenWilliamsC:   130,
			PumpCount:        1,
			PeakEfficiency:   0.7,
			HourlyFactors:    factors,
			ElectricityCost:  0.1,
			MinTankLevel:     0.2,
			InitialTankLevel: 0.5,
			TankCapacity:     &capacity,
			TankRounding:     50,
			SimulationDays:   1,
		},
		Version:   types.CurrentConfigVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// testDatabase runs the same checks against every provider.
func testDatabase(t *testing.T, db Database) {
	ctx := context.Background()

	t.Run("Save And Get", func(t *testing.T) {
		s := testScenario("scenario-a", "Alpha")
		require.NoError(t, db.SaveScenario(ctx, s))

		got, err := db.GetScenario(ctx, "scenario-a")
		require.NoError(t, err)
		assert.Equal(t, s.ID, got.ID)
		assert.Equal(t, s.Name, got.Name)
		assert.Equal(t, s.Version, got.Version)
		assert.Equal(t, s.Config, got.Config)
		assert.True(t, s.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("Overwrite", func(t *testing.T) {
		s := testScenario("scenario-a", "Alpha")
		s.Config.StaticHead = 42
		s.Version = 1
		require.NoError(t, db.SaveScenario(ctx, s))

		got, err := db.GetScenario(ctx, "scenario-a")
		require.NoError(t, err)
		assert.Equal(t, 42.0, got.Config.StaticHead)
		assert.Equal(t, 1, got.Version)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, db.SaveScenario(ctx, testScenario("scenario-b", "Bravo")))
		require.NoError(t, db.SaveScenario(ctx, testScenario("scenario-0", "Aardvark")))

		list, err := db.ListScenarios(ctx)
		require.NoError(t, err)
		var names []string
		for _, s := range list {
			names = append(names, s.Name)
		}
		assert.Subset(t, names, []string{"Aardvark", "Alpha", "Bravo"})
		assert.IsNonDecreasing(t, names)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.DeleteScenario(ctx, "scenario-b"))
		_, err := db.GetScenario(ctx, "scenario-b")
		assert.True(t, errors.Is(err, ErrScenarioNotFound))

		err = db.DeleteScenario(ctx, "scenario-b")
		assert.True(t, errors.Is(err, ErrScenarioNotFound))
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := db.GetScenario(ctx, "missing")
		assert.True(t, errors.Is(err, ErrScenarioNotFound))
	})

	t.Run("Empty ID", func(t *testing.T) {
		_, err := db.GetScenario(ctx, "")
		assert.ErrorContains(t, err, "scenario ID cannot be empty")
		assert.ErrorContains(t, db.SaveScenario(ctx, types.Scenario{}), "scenario ID cannot be empty")
		assert.ErrorContains(t, db.DeleteScenario(ctx, ""), "scenario ID cannot be empty")
	})
}
