package storagemock

import (
	"context"

	"github.com/pumpstation/pumpstation/pkg/storage"
	"github.com/pumpstation/pumpstation/pkg/types"
	"github.com/stretchr/testify/mock"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) SaveScenario(ctx context.Context, scenario types.Scenario) error {
	args := m.Called(ctx, scenario)
	return args.Error(0)
}

func (m *MockDatabase) GetScenario(ctx context.Context, id string) (types.Scenario, error) {
	args := m.Called(ctx, id)
	// return empty if not specified, or checks args
	if len(args) > 0 {
		return args.Get(0).(types.Scenario), args.Error(1)
	}
	return types.Scenario{}, nil
}

func (m *MockDatabase) ListScenarios(ctx context.Context) ([]types.Scenario, error) {
	args := m.Called(ctx)
	if len(args) > 0 {
		if args.Get(0) == nil {
			return nil, args.Error(1)
		}
		return args.Get(0).([]types.Scenario), args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) DeleteScenario(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	if len(args) > 0 {
		return args.Error(0)
	}
	return nil
}
