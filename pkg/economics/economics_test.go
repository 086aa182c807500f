package economics

import (
	"testing"

	"github.com/pumpstation/pumpstation/pkg/tariff"
	"github.com/pumpstation/pumpstation/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	t.Run("Flat Price", func(t *testing.T) {
		s := Calculate(Input{
			PowerPerPumpKW: 4,
			PumpCount:      2,
			DesignFlow:     0.01,
			PumpOn:         []bool{true, true, false, true},
			Schedule:       tariff.Flat(0.10),
		})
		require.Len(t, s.HourlyCost, 4)
		assert.InDelta(t, 0.8, s.HourlyCost[0], 1e-12)
		assert.Equal(t, 0.0, s.HourlyCost[2])
		assert.InDelta(t, 2.4, s.TotalCost, 1e-12)
		assert.Equal(t, 8.0, s.RunningPowerKW)
		assert.Equal(t, 24.0, s.EnergyKWH)
		assert.Equal(t, 3, s.OnHours)
		assert.Equal(t, 2, s.PumpStarts)
		assert.InDelta(t, 0.75, s.DutyCycle, 1e-12)
		// 0.01 m³/s * 2 pumps * 3 h * 3600 s
		assert.InDelta(t, 216.0, s.TotalVolumePumpedM3, 1e-9)
		assert.InDelta(t, 2.4/216.0, s.CostPerM3, 1e-12)
	})

	t.Run("Never On", func(t *testing.T) {
		s := Calculate(Input{
			PowerPerPumpKW: 4,
			PumpCount:      1,
			DesignFlow:     0.01,
			PumpOn:         make([]bool, 24),
			Schedule:       tariff.Flat(0.10),
		})
		assert.Equal(t, 0.0, s.TotalCost)
		assert.Equal(t, 0.0, s.TotalVolumePumpedM3)
		assert.Equal(t, 0.0, s.CostPerM3)
		assert.Equal(t, 0, s.PumpStarts)
	})

	t.Run("Zero Design Flow", func(t *testing.T) {
		s := Calculate(Input{
			PowerPerPumpKW: 4,
			PumpCount:      1,
			PumpOn:         []bool{true},
			Schedule:       tariff.Flat(0.10),
		})
		assert.Greater(t, s.TotalCost, 0.0)
		assert.Equal(t, 0.0, s.CostPerM3)
	})

	t.Run("Time Of Use Wraps Days", func(t *testing.T) {
		on := make([]bool, 48)
		on[1] = true
		on[25] = true
		on[47] = true
		s := Calculate(Input{
			PowerPerPumpKW: 10,
			PumpCount:      1,
			DesignFlow:     0.01,
			PumpOn:         on,
			Schedule: tariff.NewTimeOfUse([]types.TariffPeriod{
				{HourStart: 0, HourEnd: 6, CostPerKWH: 0.05},
				{HourStart: 6, HourEnd: 24, CostPerKWH: 0.20},
			}),
		})
		assert.InDelta(t, 0.5, s.HourlyCost[1], 1e-12)
		assert.InDelta(t, 0.5, s.HourlyCost[25], 1e-12)
		assert.InDelta(t, 2.0, s.HourlyCost[47], 1e-12)
		assert.InDelta(t, 3.0, s.TotalCost, 1e-12)
		assert.Equal(t, 3, s.PumpStarts)
	})

	t.Run("Nil Schedule Is Free", func(t *testing.T) {
		s := Calculate(Input{PowerPerPumpKW: 1, PumpCount: 1, DesignFlow: 1, PumpOn: []bool{true}})
		assert.Equal(t, 0.0, s.TotalCost)
		assert.Equal(t, 1, s.PumpStarts, "an ON first hour counts as a start")
	})
}
