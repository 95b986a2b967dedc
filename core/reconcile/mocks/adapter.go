package mocks

import (
	"context"

	"point-record/core/point"
	"point-record/core/reconcile"

	"github.com/stretchr/testify/mock"
)

// Adapter is a mock implementation of reconcile.Adapter
type Adapter struct {
	mock.Mock
}

var _ reconcile.Adapter = (*Adapter)(nil)

func (m *Adapter) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Adapter) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *Adapter) Capabilities() reconcile.Capabilities {
	args := m.Called()
	return args.Get(0).(reconcile.Capabilities)
}

func (m *Adapter) SelectRange(ctx context.Context, id string, r point.TimeRange) ([]point.Point, error) {
	args := m.Called(ctx, id, r)
	if pts, ok := args.Get(0).([]point.Point); ok {
		return pts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Adapter) SelectPrevious(ctx context.Context, id string, t int64) (point.Point, bool, error) {
	args := m.Called(ctx, id, t)
	return args.Get(0).(point.Point), args.Bool(1), args.Error(2)
}

func (m *Adapter) SelectNext(ctx context.Context, id string, t int64) (point.Point, bool, error) {
	args := m.Called(ctx, id, t)
	return args.Get(0).(point.Point), args.Bool(1), args.Error(2)
}

func (m *Adapter) InsertSingle(ctx context.Context, id string, p point.Point) error {
	args := m.Called(ctx, id, p)
	return args.Error(0)
}

func (m *Adapter) InsertRange(ctx context.Context, id string, points []point.Point) error {
	args := m.Called(ctx, id, points)
	return args.Error(0)
}

func (m *Adapter) RemoveRecord(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Adapter) ListIdentifiersAndUnits(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if ids, ok := args.Get(0).(map[string]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Adapter) InsertIdentifierAndUnits(ctx context.Context, id, units string) error {
	args := m.Called(ctx, id, units)
	return args.Error(0)
}

func (m *Adapter) AssignUnitsToRecord(ctx context.Context, id, units string) error {
	args := m.Called(ctx, id, units)
	return args.Error(0)
}

func (m *Adapter) BeginTransaction(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Adapter) EndTransaction(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
