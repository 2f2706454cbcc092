package mocks

import (
	"context"

	"csvstats/internal/model"
	"csvstats/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockDatasetRepository runs WithTx callbacks against Tx.
type MockDatasetRepository struct {
	mock.Mock
	Tx *MockDatasetTx
}

func (m *MockDatasetRepository) WithTx(ctx context.Context, fn func(tx repository.DatasetTx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Tx)
}

func (m *MockDatasetRepository) LastRecords(ctx context.Context, fileName string, limit int) ([]model.Record, error) {
	args := m.Called(ctx, fileName, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Record), args.Error(1)
}

func (m *MockDatasetRepository) FindSummaries(ctx context.Context, f model.SummaryFilter) ([]model.Summary, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Summary), args.Error(1)
}

type MockDatasetTx struct {
	mock.Mock
}

func (m *MockDatasetTx) LockFile(ctx context.Context, fileName string) error {
	args := m.Called(ctx, fileName)
	return args.Error(0)
}

func (m *MockDatasetTx) FindDataset(ctx context.Context, fileName string) (int64, error) {
	args := m.Called(ctx, fileName)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDatasetTx) CreateDataset(ctx context.Context, fileName string) (int64, error) {
	args := m.Called(ctx, fileName)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDatasetTx) DeleteRecords(ctx context.Context, datasetID int64) error {
	args := m.Called(ctx, datasetID)
	return args.Error(0)
}

func (m *MockDatasetTx) InsertRecords(ctx context.Context, datasetID int64, records []model.Record) error {
	args := m.Called(ctx, datasetID, records)
	return args.Error(0)
}

func (m *MockDatasetTx) InsertSummary(ctx context.Context, s *model.Summary) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockDatasetTx) UpdateSummary(ctx context.Context, s *model.Summary) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
