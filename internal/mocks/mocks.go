// Package mocks provides testify mocks for the domain contracts.
package mocks

import (
	"context"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
	"github.com/stretchr/testify/mock"
)

// MockRateFetcher mocks the RateFetcher interface
type MockRateFetcher struct {
	mock.Mock
}

func (m *MockRateFetcher) FetchRates(ctx context.Context, currencyCode string) (*entity.RateSnapshot, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RateSnapshot), args.Error(1)
}

// MockObjectStore mocks the ObjectStore interface
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Create(ctx context.Context, d entity.Descriptor) (entity.Entity, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.Entity), args.Error(1)
}

func (m *MockObjectStore) FetchAll(ctx context.Context, kind entity.Kind) []entity.Entity {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return []entity.Entity{}
	}
	return args.Get(0).([]entity.Entity)
}

func (m *MockObjectStore) FetchWhere(ctx context.Context, kind entity.Kind, pred entity.Predicate) ([]entity.Entity, error) {
	args := m.Called(ctx, kind, pred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Entity), args.Error(1)
}

func (m *MockObjectStore) Update(ctx context.Context, p entity.Patch) (entity.Entity, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.Entity), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, e entity.Entity) bool {
	args := m.Called(ctx, e)
	return args.Bool(0)
}

func (m *MockObjectStore) Count(ctx context.Context, kind entity.Kind, pred entity.Predicate) (int, error) {
	args := m.Called(ctx, kind, pred)
	return args.Int(0), args.Error(1)
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	args := m.Called(key, value)
	return args.Get(0).(logger.Logger)
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	args := m.Called(fields)
	return args.Get(0).(logger.Logger)
}
