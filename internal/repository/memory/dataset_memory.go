package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"csvstats/internal/model"
	"csvstats/internal/repository"
)

// DatasetMemory is an in-process repository.DatasetRepository.
// Transactions are serialized by a single lock and applied on success only.
type DatasetMemory struct {
	mu    sync.RWMutex
	state state
}

type state struct {
	nextID    int64
	datasets  map[string]*dataset
	names     map[int64]string
	summaries map[string]model.Summary
}

type dataset struct {
	id      int64
	records []model.Record
}

// NewDatasetMemory creates an empty store.
func NewDatasetMemory() *DatasetMemory {
	return &DatasetMemory{
		state: state{
			datasets:  make(map[string]*dataset),
			names:     make(map[int64]string),
			summaries: make(map[string]model.Summary),
		},
	}
}

var _ repository.DatasetRepository = (*DatasetMemory)(nil)

func (s *DatasetMemory) WithTx(ctx context.Context, fn func(tx repository.DatasetTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state = tx.state
	return nil
}

func (s *DatasetMemory) LastRecords(ctx context.Context, fileName string, limit int) ([]model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.state.datasets[fileName]
	if !ok {
		return []model.Record{}, nil
	}

	items := make([]model.Record, len(ds.records))
	copy(items, ds.records)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *DatasetMemory) FindSummaries(ctx context.Context, f model.SummaryFilter) ([]model.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.Summary, 0)
	for _, sum := range s.state.summaries {
		if f.Match(sum) {
			items = append(items, sum)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].FileName < items[j].FileName
	})
	return items, nil
}

// clone copies the maps; dataset values are replaced, never mutated, inside a tx.
func (st state) clone() state {
	out := state{
		nextID:    st.nextID,
		datasets:  make(map[string]*dataset, len(st.datasets)),
		names:     make(map[int64]string, len(st.names)),
		summaries: make(map[string]model.Summary, len(st.summaries)),
	}
	for k, v := range st.datasets {
		out.datasets[k] = v
	}
	for k, v := range st.names {
		out.names[k] = v
	}
	for k, v := range st.summaries {
		out.summaries[k] = v
	}
	return out
}

type memoryTx struct {
	state state
}

// LockFile is a no-op: WithTx already holds the store lock.
func (t *memoryTx) LockFile(ctx context.Context, fileName string) error {
	return nil
}

func (t *memoryTx) FindDataset(ctx context.Context, fileName string) (int64, error) {
	ds, ok := t.state.datasets[fileName]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return ds.id, nil
}

func (t *memoryTx) CreateDataset(ctx context.Context, fileName string) (int64, error) {
	if ds, ok := t.state.datasets[fileName]; ok {
		return ds.id, nil
	}
	t.state.nextID++
	id := t.state.nextID
	t.state.datasets[fileName] = &dataset{id: id}
	t.state.names[id] = fileName
	return id, nil
}

func (t *memoryTx) DeleteRecords(ctx context.Context, datasetID int64) error {
	name, ok := t.state.names[datasetID]
	if !ok {
		return nil
	}
	t.state.datasets[name] = &dataset{id: datasetID}
	return nil
}

func (t *memoryTx) InsertRecords(ctx context.Context, datasetID int64, records []model.Record) error {
	name, ok := t.state.names[datasetID]
	if !ok {
		return sql.ErrNoRows
	}
	prev := t.state.datasets[name]

	merged := make([]model.Record, 0, len(prev.records)+len(records))
	merged = append(merged, prev.records...)
	for _, r := range records {
		r.Date = r.Date.UTC()
		merged = append(merged, r)
	}
	t.state.datasets[name] = &dataset{id: datasetID, records: merged}
	return nil
}

func (t *memoryTx) InsertSummary(ctx context.Context, s *model.Summary) error {
	t.state.summaries[s.FileName] = *s
	return nil
}

func (t *memoryTx) UpdateSummary(ctx context.Context, s *model.Summary) error {
	if _, ok := t.state.summaries[s.FileName]; !ok {
		return sql.ErrNoRows
	}
	t.state.summaries[s.FileName] = *s
	return nil
}
