package mocks

import (
	"context"

	"csvstats/internal/model"
	"csvstats/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) Ingest(ctx context.Context, files []service.UploadFile) *service.BatchResult {
	args := m.Called(ctx, files)
	return args.Get(0).(*service.BatchResult)
}

func (m *MockDatasetService) Summaries(ctx context.Context, f model.SummaryFilter) ([]model.Summary, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Summary), args.Error(1)
}

func (m *MockDatasetService) LastRecords(ctx context.Context, fileName string) ([]model.Record, error) {
	args := m.Called(ctx, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Record), args.Error(1)
}
