package types

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// CurrentConfigVersion is the current version of the Config struct.
// Increment this value when adding new fields that require default values.
const CurrentConfigVersion = 2

// HoursPerDay is the length of the repeating demand profile.
const HoursPerDay = 24

// MaxSimulationDays bounds the simulated horizon.
const MaxSimulationDays = 3650

// DefaultTankRounding is the tank capacity granularity (m³) used when none is
// configured.
const DefaultTankRounding = 50.0

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError names the configuration field that failed validation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Config describes one pumping installation. Flows are m³/s, lengths and
// diameters are meters and levels/efficiencies are fractions between 0 and 1.
type Config struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Hydraulics
	DesignFlow     float64 `json:"designFlow" yaml:"designFlow"`
	StaticHead     float64 `json:"staticHead" yaml:"staticHead"`
	PumpSpeedRPM   float64 `json:"pumpSpeedRPM" yaml:"pumpSpeedRPM"`
	PipeLength     float64 `json:"pipeLength" yaml:"pipeLength"`
	PipeDiameter   float64 `json:"pipeDiameter" yaml:"pipeDiameter"`
	HazenWilliamsC float64 `json:"hazenWilliamsC" yaml:"hazenWilliamsC"`
	PumpCount      int     `json:"pumpCount" yaml:"pumpCount"`
	PeakEfficiency float64 `json:"peakEfficiency" yaml:"peakEfficiency"`

	// Demand multipliers applied to DesignFlow, one per hour of the day.
	HourlyFactors []float64 `json:"hourlyFactors" yaml:"hourlyFactors"`

	// Economics, in currency per kWh.
	ElectricityCost float64 `json:"electricityCost" yaml:"electricityCost"`
	// Optional time-of-use schedule. When set it replaces ElectricityCost.
	TariffPeriods []TariffPeriod `json:"tariffPeriods,omitempty" yaml:"tariffPeriods,omitempty"`

	// Reservoir
	MinTankLevel     float64 `json:"minTankLevel" yaml:"minTankLevel"`
	InitialTankLevel float64 `json:"initialTankLevel" yaml:"initialTankLevel"`
	// TankCapacity skips Rippl sizing when set (m³).
	TankCapacity *float64 `json:"tankCapacity,omitempty" yaml:"tankCapacity,omitempty"`
	TankRounding float64  `json:"tankRounding" yaml:"tankRounding"`

	SimulationDays int `json:"simulationDays" yaml:"simulationDays"`
}

// TariffPeriod prices every hour in [HourStart, HourEnd) of the day.
// Overlapping periods add up.
type TariffPeriod struct {
	HourStart   int     `json:"hourStart" yaml:"hourStart"`
	HourEnd     int     `json:"hourEnd" yaml:"hourEnd"`
	CostPerKWH  float64 `json:"costPerKWH" yaml:"costPerKWH"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// Contains reports whether the hour of day falls in the period.
func (p TariffPeriod) Contains(hourOfDay int) bool {
	return hourOfDay >= p.HourStart && hourOfDay < p.HourEnd
}

// Clone returns a deep copy of the configuration.
func (c Config) Clone() Config {
	c.HourlyFactors = append([]float64(nil), c.HourlyFactors...)
	c.TariffPeriods = append([]TariffPeriod(nil), c.TariffPeriods...)
	if c.TankCapacity != nil {
		capacity := *c.TankCapacity
		c.TankCapacity = &capacity
	}
	return c
}

// Horizon returns the number of simulated hours.
func (c Config) Horizon() int {
	return HoursPerDay * c.SimulationDays
}

// Validate checks the configuration and returns a *ConfigError for the first
// offending field.
func (c Config) Validate() error {
	if len(c.HourlyFactors) != HoursPerDay {
		return &ConfigError{Field: "hourlyFactors", Reason: fmt.Sprintf("must have exactly %d values, got %d", HoursPerDay, len(c.HourlyFactors))}
	}
	for i, f := range c.HourlyFactors {
		if !finite(f) || f < 0 {
			return &ConfigError{Field: fmt.Sprintf("hourlyFactors[%d]", i), Reason: "must be a non-negative number"}
		}
	}
	if !finite(c.MinTankLevel) || c.MinTankLevel < 0 || c.MinTankLevel >= 1 {
		return &ConfigError{Field: "minTankLevel", Reason: "must be in [0, 1)"}
	}
	if !finite(c.InitialTankLevel) || c.InitialTankLevel < 0 || c.InitialTankLevel > 1 {
		return &ConfigError{Field: "initialTankLevel", Reason: "must be in [0, 1]"}
	}
	if c.SimulationDays <= 0 || c.SimulationDays > MaxSimulationDays {
		return &ConfigError{Field: "simulationDays", Reason: fmt.Sprintf("must be between 1 and %d", MaxSimulationDays)}
	}

	if !finite(c.DesignFlow) || c.DesignFlow < 0 {
		return &ConfigError{Field: "designFlow", Reason: "must be a non-negative number"}
	}
	if !finite(c.StaticHead) {
		return &ConfigError{Field: "staticHead", Reason: "must be a number"}
	}
	if !finite(c.PumpSpeedRPM) || c.PumpSpeedRPM < 0 {
		return &ConfigError{Field: "pumpSpeedRPM", Reason: "must be a non-negative number"}
	}
	if !finite(c.PipeLength) || c.PipeLength < 0 {
		return &ConfigError{Field: "pipeLength", Reason: "must be a non-negative number"}
	}
	if !finite(c.PipeDiameter) || c.PipeDiameter <= 0 {
		return &ConfigError{Field: "pipeDiameter", Reason: "must be greater than 0"}
	}
	if !finite(c.HazenWilliamsC) || c.HazenWilliamsC <= 0 {
		return &ConfigError{Field: "hazenWilliamsC", Reason: "must be greater than 0"}
	}
	if c.PumpCount < 1 {
		return &ConfigError{Field: "pumpCount", Reason: "must be at least 1"}
	}
	if !finite(c.PeakEfficiency) || c.PeakEfficiency <= 0 || c.PeakEfficiency > 1 {
		return &ConfigError{Field: "peakEfficiency", Reason: "must be in (0, 1]"}
	}
	if !finite(c.ElectricityCost) || c.ElectricityCost < 0 {
		return &ConfigError{Field: "electricityCost", Reason: "must be a non-negative number"}
	}
	for i, p := range c.TariffPeriods {
		if p.HourStart < 0 || p.HourEnd > HoursPerDay || p.HourStart >= p.HourEnd {
			return &ConfigError{Field: fmt.Sprintf("tariffPeriods[%d]", i), Reason: "must satisfy 0 <= hourStart < hourEnd <= 24"}
		}
		if !finite(p.CostPerKWH) {
			return &ConfigError{Field: fmt.Sprintf("tariffPeriods[%d].costPerKWH", i), Reason: "must be a number"}
		}
	}
	if !finite(c.TankRounding) || c.TankRounding <= 0 {
		return &ConfigError{Field: "tankRounding", Reason: "must be greater than 0"}
	}
	if c.TankCapacity != nil && (!finite(*c.TankCapacity) || *c.TankCapacity <= 0) {
		return &ConfigError{Field: "tankCapacity", Reason: "must be greater than 0 when set"}
	}
	return nil
}

// MigrateConfig migrates the config to the current version.
// It returns the migrated config, a boolean indicating if changes were made, and an error if migration failed.
func MigrateConfig(c Config, currentVersion int) (Config, bool, error) {
	if currentVersion >= CurrentConfigVersion {
		return c, false, nil
	}

	migrated := false
	for version := currentVersion + 1; version <= CurrentConfigVersion; version++ {
		switch version {
		case 1:
			// version 1: initial
			if c.TankRounding == 0 {
				c.TankRounding = DefaultTankRounding
				migrated = true
			}
			if c.PumpCount == 0 {
				c.PumpCount = 1
				migrated = true
			}
		case 2:
			// version 2: roughness became configurable, default to new PVC/steel
			if c.HazenWilliamsC == 0 {
				c.HazenWilliamsC = 130
				migrated = true
			}
		default:
			return c, false, fmt.Errorf("unknown config version: %d", version)
		}
	}

	return c, migrated, nil
}

// LoadConfig reads a YAML (or JSON) station file and applies defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config YAML: %w", err)
	}

	c, _, err = MigrateConfig(c, 0)
	if err != nil {
		return Config{}, err
	}
	return c, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
