package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"csvstats/internal/model"
	"csvstats/internal/service"
	serviceMocks "csvstats/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})

	t.Run("no database", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(nil))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type formPart struct {
	field, name, content string
}

func multipartRequest(t *testing.T, parts ...formPart) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, p := range parts {
		part, err := writer.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		part.Write([]byte(p.content))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadFiles(t *testing.T) {
	mockSvc := new(serviceMocks.MockDatasetService)
	app := fiber.New()
	app.Post("/upload", UploadFiles(mockSvc))

	t.Run("success", func(t *testing.T) {
		want := []service.UploadFile{
			{Name: "a.csv", Content: []byte("A")},
			{Name: "b.csv", Content: []byte("B")},
			{Name: "c.csv", Content: []byte("C")},
		}
		mockSvc.On("Ingest", mock.Anything, want).
			Return(&service.BatchResult{Uploaded: []string{"a.csv", "b.csv", "c.csv"}}).Once()

		req := multipartRequest(t,
			formPart{"other", "c.csv", "C"},
			formPart{"files", "a.csv", "A"},
			formPart{"files", "b.csv", "B"},
		)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result uploadResponse
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, []string{"a.csv", "b.csv", "c.csv"}, result.Uploaded)
		assert.Empty(t, result.Errors)
		mockSvc.AssertExpectations(t)
	})

	t.Run("partial failure", func(t *testing.T) {
		mockSvc.On("Ingest", mock.Anything, mock.Anything).Return(&service.BatchResult{
			Uploaded: []string{"b.csv"},
			Errors: []service.FileError{{
				FileName: "a.csv",
				Kind:     service.KindValidation,
				Messages: []string{`file "a.csv": row 1: value must not be negative`},
			}},
		}).Once()

		req := multipartRequest(t, formPart{"files", "a.csv", "x"}, formPart{"files", "b.csv", "y"})
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var result uploadResponse
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, []string{"b.csv"}, result.Uploaded)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "a.csv", result.Errors[0].FileName)
		assert.Equal(t, service.KindValidation, result.Errors[0].Kind)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no multipart body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILES_REQUIRED", res.Error.Code)
	})

	t.Run("form without files", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("note", "hello")
		writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILES_REQUIRED", res.Error.Code)
	})
}

func TestLastRecords(t *testing.T) {
	mockSvc := new(serviceMocks.MockDatasetService)
	app := fiber.New()
	app.Get("/lastRecords/:filename", LastRecords(mockSvc))

	t.Run("success", func(t *testing.T) {
		records := []model.Record{{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ExecutionTime: 1.5, Value: 3}}
		mockSvc.On("LastRecords", mock.Anything, "a.csv").Return(records, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/lastRecords/a.csv", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result, 1)
		assert.Equal(t, "2024-01-02T00:00:00Z", result[0]["date"])
		assert.Equal(t, 1.5, result[0]["executionTime"])
		assert.Equal(t, 3.0, result[0]["value"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("LastRecords", mock.Anything, "missing.csv").Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/lastRecords/missing.csv", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("LastRecords", mock.Anything, "a.csv").Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/lastRecords/a.csv", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestResultFilter(t *testing.T) {
	mockSvc := new(serviceMocks.MockDatasetService)
	app := fiber.New()
	app.Get("/resultFilter", ResultFilter(mockSvc))

	t.Run("success", func(t *testing.T) {
		minStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		mockSvc.On("Summaries", mock.Anything, mock.MatchedBy(func(f model.SummaryFilter) bool {
			return f.FileName != nil && *f.FileName == "b" &&
				f.MinAvgValue != nil && *f.MinAvgValue == 10 &&
				f.MinDate != nil && f.MinDate.Equal(minStart) &&
				f.MaxDate == nil && f.MaxAvgValue == nil &&
				f.MinAvgExecutionTime == nil && f.MaxAvgExecutionTime == nil
		})).Return([]model.Summary{{FileName: "b", AvgValue: 50}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/resultFilter?filename=b&minAvgValue=10&minStart=2024-01-01", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []model.Summary
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result, 1)
		assert.Equal(t, "b", result[0].FileName)
		mockSvc.AssertExpectations(t)
	})

	t.Run("date aliases and execution time bounds", func(t *testing.T) {
		maxDate := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		mockSvc.On("Summaries", mock.Anything, mock.MatchedBy(func(f model.SummaryFilter) bool {
			return f.MaxDate != nil && f.MaxDate.Equal(maxDate) &&
				f.MinAvgExecutionTime != nil && *f.MinAvgExecutionTime == 0.5 &&
				f.MaxAvgExecutionTime != nil && *f.MaxAvgExecutionTime == 2
		})).Return([]model.Summary{{FileName: "a"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/resultFilter?maxDate=2024-03-01T14:00:00%2B02:00&minAvgExecutionTime=0.5&maxAvgExecutionTime=2", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid number", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/resultFilter?minAvgValue=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_QUERY", res.Error.Code)
		assert.Contains(t, res.Error.Message, "minAvgValue")
	})

	t.Run("invalid date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/resultFilter?minStart=yesterday", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_QUERY", res.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Summaries", mock.Anything, model.SummaryFilter{}).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/resultFilter", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockDatasetService)
	RegisterRoutes(app, nil, mockSvc)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})
}
