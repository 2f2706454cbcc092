package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"csvstats/internal/model"
	repoMocks "csvstats/internal/repository/mocks"
	"csvstats/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDatasetService_Upsert(t *testing.T) {
	ctx := context.Background()
	records := []model.Record{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ExecutionTime: 1, Value: 1},
		{Date: time.Date(2024, 1, 1, 0, 0, 30, 0, time.UTC), ExecutionTime: 3, Value: 3},
	}
	isSummary := mock.MatchedBy(func(s *model.Summary) bool {
		return s.FileName == "a.csv" && s.AvgValue == 2 && s.MedianValue == 2 && s.DeltaSeconds == 30
	})

	tests := []struct {
		name        string
		records     []model.Record
		setupMocks  func(mRepo *repoMocks.MockDatasetRepository, mTx *repoMocks.MockDatasetTx)
		wantCreated bool
		wantErr     error
		wantErrMsg  string
	}{
		{
			name:    "new file inserts dataset and summary",
			records: records,
			setupMocks: func(mRepo *repoMocks.MockDatasetRepository, mTx *repoMocks.MockDatasetTx) {
				mRepo.On("WithTx", mock.Anything).Return(nil)
				mTx.On("LockFile", mock.Anything, "a.csv").Return(nil)
				mTx.On("FindDataset", mock.Anything, "a.csv").Return(int64(0), sql.ErrNoRows)
				mTx.On("CreateDataset", mock.Anything, "a.csv").Return(int64(1), nil)
				mTx.On("InsertRecords", mock.Anything, int64(1), records).Return(nil)
				mTx.On("InsertSummary", mock.Anything, isSummary).Return(nil)
			},
			wantCreated: true,
		},
		{
			name:    "known file replaces records and overwrites summary",
			records: records,
			setupMocks: func(mRepo *repoMocks.MockDatasetRepository, mTx *repoMocks.MockDatasetTx) {
				mRepo.On("WithTx", mock.Anything).Return(nil)
				mTx.On("LockFile", mock.Anything, "a.csv").Return(nil)
				mTx.On("FindDataset", mock.Anything, "a.csv").Return(int64(9), nil)
				mTx.On("DeleteRecords", mock.Anything, int64(9)).Return(nil)
				mTx.On("InsertRecords", mock.Anything, int64(9), records).Return(nil)
				mTx.On("UpdateSummary", mock.Anything, isSummary).Return(nil)
			},
		},
		{
			name:    "known file without summary gets one inserted",
			records: records,
			setupMocks: func(mRepo *repoMocks.MockDatasetRepository, mTx *repoMocks.MockDatasetTx) {
				mRepo.On("WithTx", mock.Anything).Return(nil)
				mTx.On("LockFile", mock.Anything, "a.csv").Return(nil)
				mTx.On("FindDataset", mock.Anything, "a.csv").Return(int64(9), nil)
				mTx.On("DeleteRecords", mock.Anything, int64(9)).Return(nil)
				mTx.On("InsertRecords", mock.Anything, int64(9), records).Return(nil)
				mTx.On("UpdateSummary", mock.Anything, isSummary).Return(sql.ErrNoRows)
				mTx.On("InsertSummary", mock.Anything, isSummary).Return(nil)
			},
		},
		{
			name:       "empty records never reach the repository",
			records:    nil,
			setupMocks: func(mRepo *repoMocks.MockDatasetRepository, mTx *repoMocks.MockDatasetTx) {},
			wantErr:    stats.ErrEmptyInput,
		},
		{
			name:    "begin transaction error",
			records: records,
			setupMocks: func(mRepo *repoMocks.MockDatasetRepository, mTx *repoMocks.MockDatasetTx) {
				mRepo.On("WithTx", mock.Anything).Return(errors.New("begin tx: db down"))
			},
			wantErrMsg: "begin tx: db down",
		},
		{
			name:    "lock error",
			records: records,
			setupMocks: func(mRepo *repoMocks.MockDatasetRepository, mTx *repoMocks.MockDatasetTx) {
				mRepo.On("WithTx", mock.Anything).Return(nil)
				mTx.On("LockFile", mock.Anything, "a.csv").Return(errors.New("deadlock detected"))
			},
			wantErrMsg: "lock file: deadlock detected",
		},
		{
			name:    "delete error aborts the replace",
			records: records,
			setupMocks: func(mRepo *repoMocks.MockDatasetRepository, mTx *repoMocks.MockDatasetTx) {
				mRepo.On("WithTx", mock.Anything).Return(nil)
				mTx.On("LockFile", mock.Anything, "a.csv").Return(nil)
				mTx.On("FindDataset", mock.Anything, "a.csv").Return(int64(9), nil)
				mTx.On("DeleteRecords", mock.Anything, int64(9)).Return(errors.New("timeout"))
			},
			wantErrMsg: "delete records: timeout",
		},
		{
			name:    "summary insert error",
			records: records,
			setupMocks: func(mRepo *repoMocks.MockDatasetRepository, mTx *repoMocks.MockDatasetTx) {
				mRepo.On("WithTx", mock.Anything).Return(nil)
				mTx.On("LockFile", mock.Anything, "a.csv").Return(nil)
				mTx.On("FindDataset", mock.Anything, "a.csv").Return(int64(0), sql.ErrNoRows)
				mTx.On("CreateDataset", mock.Anything, "a.csv").Return(int64(1), nil)
				mTx.On("InsertRecords", mock.Anything, int64(1), records).Return(nil)
				mTx.On("InsertSummary", mock.Anything, isSummary).Return(errors.New("unique violation"))
			},
			wantErrMsg: "insert summary: unique violation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mTx := new(repoMocks.MockDatasetTx)
			mRepo := &repoMocks.MockDatasetRepository{Tx: mTx}
			svc := NewDatasetService(mRepo, nil, Options{}).(*datasetService)

			tt.setupMocks(mRepo, mTx)

			created, err := svc.upsert(ctx, "a.csv", tt.records)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantCreated, created)
			}

			mRepo.AssertExpectations(t)
			mTx.AssertExpectations(t)
		})
	}
}
