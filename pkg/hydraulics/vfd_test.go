package hydraulics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeVFD(t *testing.T) {
	cfg := exampleConfig()
	curve := FitPumpCurve(cfg)

	t.Run("Reduced Flow", func(t *testing.T) {
		res, ok := AnalyzeVFD(cfg, curve, 0.008)
		require.True(t, ok)
		assert.InDelta(t, 0.9102, res.SpeedRatio, 1e-3)
		assert.InDelta(t, 0.9102*1500, res.SpeedRPM, 2)
		assert.False(t, res.AboveRatedSpeed)
		assert.InDelta(t, 26.304, res.HeadM, 1e-2)
		assert.InDelta(t, 8.0, res.TotalFlowLPS, 1e-9)
		assert.InDelta(t, 28.8, res.TotalFlowM3h, 1e-9)
		assert.InDelta(t, 0.008/res.SpeedRatio, res.HomologousFlow, 1e-12)
		assert.InDelta(t, 68.97, res.EfficiencyPct, 1e-1)

		// pump head at the reduced speed matches the system head
		h := res.SpeedRatio*res.SpeedRatio*curve.ShutoffHead - curve.Curvature*res.FlowPerPumpM3s*res.FlowPerPumpM3s
		assert.InDelta(t, res.HeadM, h, 1e-9)

		expectedPower := WaterDensity * Gravity * 0.008 * res.HeadM / (1000 * res.EfficiencyPct / 100)
		assert.InDelta(t, expectedPower, res.PowerPerPumpKW, 1e-9)
		assert.Equal(t, res.PowerPerPumpKW, res.TotalPowerKW)
	})

	t.Run("Design Flow Is Full Speed", func(t *testing.T) {
		res, ok := AnalyzeVFD(cfg, curve, cfg.DesignFlow)
		require.True(t, ok)
		assert.InDelta(t, 1.0, res.SpeedRatio, 1e-9)
		assert.InDelta(t, 70.0, res.EfficiencyPct, 1e-6)
	})

	t.Run("Parallel Pumps Split Flow", func(t *testing.T) {
		c := cfg
		c.PumpCount = 2
		curve := FitPumpCurve(c)
		res, ok := AnalyzeVFD(c, curve, 0.008)
		require.True(t, ok)
		assert.InDelta(t, 0.004, res.FlowPerPumpM3s, 1e-12)
		assert.InDelta(t, 4.0, res.FlowPerPumpLPS, 1e-9)
		assert.InDelta(t, 2*res.PowerPerPumpKW, res.TotalPowerKW, 1e-12)
	})

	t.Run("Infeasible Above Shutoff Head", func(t *testing.T) {
		// 30 L/s needs ~93 m against a 39 m shutoff head
		require.Greater(t, SystemHead(cfg, 0.03), curve.ShutoffHead)
		res, ok := AnalyzeVFD(cfg, curve, 0.03)
		assert.False(t, ok)
		assert.Equal(t, 0.0, res.SpeedRatio)
	})

	t.Run("Above Rated Speed Is Flagged", func(t *testing.T) {
		// just under the shutoff head but with a large flow term
		res, ok := AnalyzeVFD(cfg, curve, 0.0135)
		require.True(t, ok)
		assert.Greater(t, res.SpeedRatio, 1.0)
		assert.True(t, res.AboveRatedSpeed)
	})

	t.Run("Zero Target", func(t *testing.T) {
		res, ok := AnalyzeVFD(cfg, curve, 0)
		require.True(t, ok)
		assert.InDelta(t, math.Sqrt(20/curve.ShutoffHead), res.SpeedRatio, 1e-9)
		assert.Equal(t, 0.0, res.TotalPowerKW)
	})

	t.Run("Non Positive Shutoff", func(t *testing.T) {
		c := cfg
		c.StaticHead = -50
		curve := FitPumpCurve(c)
		_, ok := AnalyzeVFD(c, curve, 0.001)
		assert.False(t, ok)
	})
}
