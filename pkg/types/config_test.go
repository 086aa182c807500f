package types

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatFactors() []float64 {
	f := make([]float64, HoursPerDay)
	for i := range f {
		f[i] = 1.0
	}
	return f
}

func validConfig() Config {
	return Config{
		DesignFlow:       0.01,
		StaticHead:       20,
		PumpSpeedRPM:     1500,
		HourlyFactors:    flatFactors(),
		PipeLength:       500,
		PipeDiameter:     0.1,
		HazenWilliamsC:   130,
		PumpCount:        1,
		PeakEfficiency:   0.70,
		ElectricityCost:  0.10,
		MinTankLevel:     0.20,
		InitialTankLevel: 0.50,
		SimulationDays:   1,
		TankRounding:     50,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := []struct {
		name  string
		field string
		edit  func(c *Config)
	}{
		{"too few factors", "hourlyFactors", func(c *Config) { c.HourlyFactors = c.HourlyFactors[:23] }},
		{"too many factors", "hourlyFactors", func(c *Config) { c.HourlyFactors = append(c.HourlyFactors, 1) }},
		{"negative factor", "hourlyFactors[3]", func(c *Config) { c.HourlyFactors[3] = -1 }},
		{"min level one", "minTankLevel", func(c *Config) { c.MinTankLevel = 1 }},
		{"min level negative", "minTankLevel", func(c *Config) { c.MinTankLevel = -0.1 }},
		{"initial level above one", "initialTankLevel", func(c *Config) { c.InitialTankLevel = 1.01 }},
		{"initial level NaN", "initialTankLevel", func(c *Config) { c.InitialTankLevel = math.NaN() }},
		{"zero days", "simulationDays", func(c *Config) { c.SimulationDays = 0 }},
		{"negative days", "simulationDays", func(c *Config) { c.SimulationDays = -2 }},
		{"too many days", "simulationDays", func(c *Config) { c.SimulationDays = MaxSimulationDays + 1 }},
		{"overflowing days", "simulationDays", func(c *Config) { c.SimulationDays = math.MaxInt64 / 2 }},
		{"negative design flow", "designFlow", func(c *Config) { c.DesignFlow = -0.1 }},
		{"zero diameter", "pipeDiameter", func(c *Config) { c.PipeDiameter = 0 }},
		{"zero roughness", "hazenWilliamsC", func(c *Config) { c.HazenWilliamsC = 0 }},
		{"no pumps", "pumpCount", func(c *Config) { c.PumpCount = 0 }},
		{"efficiency above one", "peakEfficiency", func(c *Config) { c.PeakEfficiency = 1.2 }},
		{"bad tariff", "tariffPeriods[0]", func(c *Config) { c.TariffPeriods = []TariffPeriod{{HourStart: 6, HourEnd: 6}} }},
		{"zero rounding", "tankRounding", func(c *Config) { c.TankRounding = 0 }},
		{"zero capacity", "tankCapacity", func(c *Config) { zero := 0.0; c.TankCapacity = &zero }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.edit(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.field, cfgErr.Field)
			assert.Contains(t, err.Error(), tc.field)
		})
	}

	t.Run("zero design flow is allowed", func(t *testing.T) {
		c := validConfig()
		c.DesignFlow = 0
		assert.NoError(t, c.Validate())
	})

	t.Run("level bounds are inclusive where allowed", func(t *testing.T) {
		c := validConfig()
		c.MinTankLevel = 0
		c.InitialTankLevel = 1
		assert.NoError(t, c.Validate())
	})
}

func TestMigrateConfig(t *testing.T) {
	t.Run("v1: initial defaults", func(t *testing.T) {
		c, changed, err := MigrateConfig(Config{}, 0)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, DefaultTankRounding, c.TankRounding)
		assert.Equal(t, 1, c.PumpCount)
		assert.Equal(t, 130.0, c.HazenWilliamsC)
	})

	t.Run("v1 to v2: keeps explicit roughness", func(t *testing.T) {
		c, changed, err := MigrateConfig(Config{HazenWilliamsC: 100}, 1)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, 100.0, c.HazenWilliamsC)
	})

	t.Run("no change: current version", func(t *testing.T) {
		current := validConfig()
		c, changed, err := MigrateConfig(current, CurrentConfigVersion)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, current, c)
	})
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "station.yaml")
	data := `
name: test station
designFlow: 0.02
staticHead: 15
pumpSpeedRPM: 1450
pipeLength: 800
pipeDiameter: 0.15
pumpCount: 2
peakEfficiency: 0.75
electricityCost: 0.12
minTankLevel: 0.1
initialTankLevel: 0.6
simulationDays: 2
tankCapacity: 300
hourlyFactors: [0.5, 0.5, 0.5, 0.5, 0.5, 0.8, 1.2, 1.5, 1.4, 1.2, 1.1, 1.1,
                1.2, 1.1, 1.0, 1.0, 1.1, 1.3, 1.5, 1.4, 1.2, 0.9, 0.7, 0.6]
tariffPeriods:
  - hourStart: 0
    hourEnd: 6
    costPerKWH: 0.05
    description: night
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "test station", c.Name)
	assert.Equal(t, 0.02, c.DesignFlow)
	assert.Equal(t, 2, c.PumpCount)
	assert.Len(t, c.HourlyFactors, HoursPerDay)
	require.NotNil(t, c.TankCapacity)
	assert.Equal(t, 300.0, *c.TankCapacity)
	require.Len(t, c.TariffPeriods, 1)
	assert.True(t, c.TariffPeriods[0].Contains(5))
	assert.False(t, c.TariffPeriods[0].Contains(6))
	// defaults from migration
	assert.Equal(t, DefaultTankRounding, c.TankRounding)
	assert.Equal(t, 130.0, c.HazenWilliamsC)
	assert.Equal(t, 48, c.Horizon())
	assert.NoError(t, c.Validate())

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}
