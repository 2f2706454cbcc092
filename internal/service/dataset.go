package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"csvstats/internal/ingest"
	"csvstats/internal/model"
	"csvstats/internal/repository"
	"csvstats/internal/stats"
	"csvstats/internal/storage"
)

var (
	ErrNotFound         = errors.New("no matching records")
	ErrFileNameRequired = errors.New("file name is required")
)

// LastRecordsLimit is the number of records returned by LastRecords.
const LastRecordsLimit = 10

const archivePrefix = "uploads"

var tracer = otel.Tracer("csvstats/internal/service")

// UploadFile is one named file of an upload batch.
type UploadFile struct {
	Name    string
	Content []byte
}

// ErrorKind classifies why a file was rejected.
type ErrorKind string

const (
	KindDecode      ErrorKind = "decode"
	KindRowCount    ErrorKind = "row_count"
	KindValidation  ErrorKind = "validation"
	KindAggregation ErrorKind = "aggregation"
	KindStorage     ErrorKind = "storage"
)

const outcomeSuccess = "success"

// FileError reports every problem found in one rejected file.
type FileError struct {
	FileName string    `json:"fileName"`
	Kind     ErrorKind `json:"kind"`
	Messages []string  `json:"messages"`
}

func (e FileError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// BatchResult is the outcome of one upload batch. Uploaded and Errors keep the upload order.
type BatchResult struct {
	Uploaded []string    `json:"uploaded"`
	Errors   []FileError `json:"errors"`
}

// Failed reports whether at least one file was rejected.
func (r *BatchResult) Failed() bool {
	return len(r.Errors) > 0
}

// DatasetService defines the use cases for CSV datasets.
type DatasetService interface {
	// Ingest processes every file independently: a rejected file never stops the others.
	// Each accepted file fully replaces the dataset and summary stored under its name.
	Ingest(ctx context.Context, files []UploadFile) *BatchResult

	// Summaries returns every summary matching the filter, or ErrNotFound.
	Summaries(ctx context.Context, f model.SummaryFilter) ([]model.Summary, error)

	// LastRecords returns the newest LastRecordsLimit records of a dataset, or ErrNotFound.
	LastRecords(ctx context.Context, fileName string) ([]model.Record, error)
}

// Options tunes a DatasetService. Zero values pick defaults.
type Options struct {
	// Workers bounds parallel file processing within one batch. Default 1.
	Workers int
	Logger  *slog.Logger
	Metrics *IngestMetrics
	// Now returns the current time. Default time.Now.
	Now func() time.Time
}

type datasetService struct {
	repo    repository.DatasetRepository
	store   storage.Storage
	locks   *keyLock
	workers int
	logger  *slog.Logger
	metrics *IngestMetrics
	now     func() time.Time
}

// NewDatasetService constructs a new DatasetService. store may be nil, which disables archiving.
func NewDatasetService(repo repository.DatasetRepository, store storage.Storage, opt Options) DatasetService {
	s := &datasetService{
		repo:    repo,
		store:   store,
		locks:   newKeyLock(),
		workers: opt.Workers,
		logger:  opt.Logger,
		metrics: opt.Metrics,
		now:     opt.Now,
	}
	if s.workers < 1 {
		s.workers = 1
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.logger = s.logger.With("component", "dataset_service")
	return s
}

func (s *datasetService) Ingest(ctx context.Context, files []UploadFile) *BatchResult {
	ctx, span := tracer.Start(ctx, "DatasetService.Ingest", trace.WithAttributes(attribute.Int("files.count", len(files))))
	defer span.End()

	// Files sharing a name run in upload order on one goroutine so the last one wins.
	var order []string
	groups := make(map[string][]int)
	for i, f := range files {
		if _, ok := groups[f.Name]; !ok {
			order = append(order, f.Name)
		}
		groups[f.Name] = append(groups[f.Name], i)
	}

	outcomes := make([]error, len(files))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, name := range order {
		idx := groups[name]
		g.Go(func() error {
			for _, i := range idx {
				outcomes[i] = s.ingestFile(ctx, files[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	res := &BatchResult{Uploaded: []string{}, Errors: []FileError{}}
	for i, f := range files {
		if err := outcomes[i]; err != nil {
			res.Errors = append(res.Errors, newFileError(f.Name, err))
			continue
		}
		res.Uploaded = append(res.Uploaded, f.Name)
	}

	span.SetAttributes(
		attribute.Int("files.uploaded", len(res.Uploaded)),
		attribute.Int("files.rejected", len(res.Errors)),
	)
	return res
}

func (s *datasetService) ingestFile(ctx context.Context, f UploadFile) (err error) {
	ctx, span := tracer.Start(ctx, "DatasetService.ingestFile", trace.WithAttributes(attribute.String("file.name", f.Name)))
	start := time.Now()
	rows := 0
	defer func() {
		outcome := outcomeSuccess
		if err != nil {
			outcome = string(classify(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			s.logger.WarnContext(ctx, "file_rejected", "file", f.Name, "kind", outcome, "error", err.Error())
		}
		s.metrics.observe(outcome, rows, time.Since(start))
		span.End()
	}()

	if f.Name == "" {
		return ErrFileNameRequired
	}

	records, err := ingest.Decode(bytes.NewReader(f.Content))
	if err != nil {
		return err
	}
	rows = len(records)

	if err := ingest.Validate(records, ingest.Today(s.now())); err != nil {
		return err
	}

	// Store and archive under one lock so the archived copy matches the stored dataset.
	unlock := s.locks.Lock(f.Name)
	defer unlock()

	created, err := s.upsert(ctx, f.Name, records)
	if err != nil {
		return err
	}

	s.archive(ctx, f)

	s.logger.InfoContext(ctx, "file_ingested",
		"file", f.Name,
		"rows", rows,
		"created", created,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// archive keeps a copy of the raw upload; failures are logged and never reject the file.
func (s *datasetService) archive(ctx context.Context, f UploadFile) {
	if s.store == nil {
		return
	}

	key := archiveKey(f.Name)
	_, err := s.store.Put(ctx, key, bytes.NewReader(f.Content), storage.PutObjectOptions{
		Size:        int64(len(f.Content)),
		ContentType: "text/csv",
		Metadata: map[string]string{
			"original-filename": f.Name,
			"upload-id":         uuid.NewString(),
		},
	})
	if err != nil {
		s.logger.WarnContext(ctx, "archive_failed", "file", f.Name, "key", key, "error", err.Error())
	}
}

func archiveKey(fileName string) string {
	return path.Join(archivePrefix, path.Base(strings.ReplaceAll(fileName, "\\", "/")))
}

func (s *datasetService) Summaries(ctx context.Context, f model.SummaryFilter) ([]model.Summary, error) {
	items, err := s.repo.FindSummaries(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

func (s *datasetService) LastRecords(ctx context.Context, fileName string) ([]model.Record, error) {
	if fileName == "" {
		return nil, ErrFileNameRequired
	}
	items, err := s.repo.LastRecords(ctx, fileName, LastRecordsLimit)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

func classify(err error) ErrorKind {
	var (
		de  *ingest.DecodeError
		rce *ingest.RowCountError
		ve  *ingest.ValidationError
	)
	switch {
	case errors.As(err, &de):
		return KindDecode
	case errors.As(err, &rce):
		return KindRowCount
	case errors.As(err, &ve), errors.Is(err, ErrFileNameRequired):
		return KindValidation
	case errors.Is(err, stats.ErrEmptyInput):
		return KindAggregation
	default:
		return KindStorage
	}
}

func newFileError(fileName string, err error) FileError {
	fe := FileError{FileName: fileName, Kind: classify(err)}

	switch fe.Kind {
	case KindDecode:
		fe.Messages = []string{fmt.Sprintf("file %q: malformed CSV: %v", fileName, err)}
	case KindRowCount, KindAggregation:
		fe.Messages = []string{fmt.Sprintf("file %q: %v", fileName, err)}
	case KindValidation:
		var ve *ingest.ValidationError
		if !errors.As(err, &ve) {
			fe.Messages = []string{fmt.Sprintf("file %q: %v", fileName, err)}
			break
		}
		for _, m := range ve.Messages {
			fe.Messages = append(fe.Messages, fmt.Sprintf("file %q: %s", fileName, m))
		}
	default:
		fe.Messages = []string{fmt.Sprintf("file %q: failed to store data", fileName)}
	}
	return fe
}
