package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pumpstation/pumpstation/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const examplePath = "../../examples/station.yaml"

func TestRunEvaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("Table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runEvaluate(ctx, &buf, examplePath, false))
		out := buf.String()
		assert.Contains(t, out, "=== example ===")
		assert.Contains(t, out, "Tank capacity")
		assert.Contains(t, out, "50 m³ (sized)")
		assert.Contains(t, out, "Total cost")
		assert.Contains(t, out, "9.93")
		assert.Contains(t, out, "0.0115")
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runEvaluate(ctx, &buf, examplePath, true))
		var report types.Report
		require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
		assert.Equal(t, 50.0, report.Reservoir.CapacityM3)
		assert.Len(t, report.Costs.HourlyCost, 24)
	})

	t.Run("Missing File", func(t *testing.T) {
		err := runEvaluate(ctx, &bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.yaml"), false)
		assert.ErrorContains(t, err, "reading config file")
	})
}

func TestRunValidate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runValidate(&buf, examplePath))
	assert.Contains(t, buf.String(), "valid (1 pump(s), 1 day horizon)")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("designFlow: 0.01\nhourlyFactors: [1, 1]\nsimulationDays: 1\n"), 0o644))
	err := runValidate(&bytes.Buffer{}, bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidConfig))
	assert.ErrorContains(t, err, "hourlyFactors")
}

func TestRunVFD(t *testing.T) {
	ctx := context.Background()

	t.Run("Feasible", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runVFD(ctx, &buf, examplePath, 8, false))
		assert.Contains(t, buf.String(), "91.0%")
		assert.Contains(t, buf.String(), "8.00 L/s")
	})

	t.Run("Above Rated", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runVFD(ctx, &buf, examplePath, 13.5, false))
		assert.Contains(t, buf.String(), "above rated speed")
	})

	t.Run("Infeasible", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runVFD(ctx, &buf, examplePath, 30, false))
		assert.Contains(t, buf.String(), "not reachable")

		buf.Reset()
		require.NoError(t, runVFD(ctx, &buf, examplePath, 30, true))
		assert.JSONEq(t, `{"feasible": false}`, buf.String())
	})

	t.Run("Negative", func(t *testing.T) {
		assert.Error(t, runVFD(ctx, &bytes.Buffer{}, examplePath, -1, false))
	})
}

func TestRunCurves(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, runCurves(ctx, &buf, examplePath, 5, true))
	var pts []types.CurvePoint
	require.NoError(t, json.Unmarshal(buf.Bytes(), &pts))
	require.Len(t, pts, 5)
	assert.Equal(t, 20.0, pts[0].SystemHead)

	buf.Reset()
	require.NoError(t, runCurves(ctx, &buf, examplePath, 3, false))
	assert.Contains(t, buf.String(), "Flow (L/s)")

	assert.Error(t, runCurves(ctx, &bytes.Buffer{}, examplePath, 1, false))
}
