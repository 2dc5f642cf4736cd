package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/model"
	"eversoul.dev/stageguide/internal/pkg/pgerr"
)

var errFake = errors.New("fake failure")

type memStore struct {
	mu      sync.Mutex
	entries map[string]*model.GameDataCache
	failGet bool
	failPut bool
	puts    int
	touches int
}

var _ TableStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{entries: map[string]*model.GameDataCache{}}
}

func (s *memStore) GetEntry(ctx context.Context, source, table string) (*model.GameDataCache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, errFake
	}
	e, ok := s.entries[CacheKey(source, table)]
	if !ok {
		return nil, pgerr.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) UpsertEntry(ctx context.Context, entry *model.GameDataCache) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return errFake
	}
	s.puts++
	cp := *entry
	s.entries[CacheKey(entry.DataSource, entry.TableName)] = &cp
	return nil
}

func (s *memStore) TouchEntry(ctx context.Context, source, table string, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return errFake
	}
	e, ok := s.entries[CacheKey(source, table)]
	if !ok {
		return pgerr.ErrNotFound
	}
	s.touches++
	e.FetchedAt = fetchedAt
	e.IsValid = true
	return nil
}

func (s *memStore) DeleteAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.entries = map[string]*model.GameDataCache{}
	return n, nil
}

func (s *memStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

func (s *memStore) Compact(ctx context.Context) error {
	return nil
}

func (s *memStore) CountBySource(ctx context.Context) ([]*model.SourceCacheStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySource := map[string]*model.SourceCacheStat{}
	for _, e := range s.entries {
		stat, ok := bySource[e.DataSource]
		if !ok {
			stat = &model.SourceCacheStat{DataSource: e.DataSource}
			bySource[e.DataSource] = stat
		}
		stat.Count++
		updated := e.FetchedAt
		if stat.LastUpdatedAt == nil || updated.After(*stat.LastUpdatedAt) {
			stat.LastUpdatedAt = &updated
		}
	}

	stats := make([]*model.SourceCacheStat, 0, len(bySource))
	for _, stat := range bySource {
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].DataSource < stats[j].DataSource })
	return stats, nil
}

func (s *memStore) entry(source, table string) (*model.GameDataCache, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[CacheKey(source, table)]
	return e, ok
}

// fakeOrigin serves "[]" for any table not listed in tables.
type fakeOrigin struct {
	mu     sync.Mutex
	tables map[string]string
	fail   map[string]error
	calls  map[string]int
	delay  time.Duration
}

var _ TableFetcher = (*fakeOrigin)(nil)

func newFakeOrigin() *fakeOrigin {
	return &fakeOrigin{
		tables: map[string]string{},
		fail:   map[string]error{},
		calls:  map[string]int{},
	}
}

func (o *fakeOrigin) Fetch(ctx context.Context, source, table string) (json.RawMessage, error) {
	key := CacheKey(source, table)

	o.mu.Lock()
	o.calls[key]++
	raw, ok := o.tables[key]
	err := o.fail[key]
	delay := o.delay
	o.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		raw = "[]"
	}
	return json.RawMessage(raw), nil
}

func (o *fakeOrigin) set(source, table, raw string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tables[CacheKey(source, table)] = raw
}

func (o *fakeOrigin) failWith(source, table string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fail[CacheKey(source, table)] = err
}

func (o *fakeOrigin) count(source, table string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls[CacheKey(source, table)]
}

func (o *fakeOrigin) total() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, c := range o.calls {
		n += c
	}
	return n
}

type memTasks struct {
	mu    sync.Mutex
	tasks []*model.CacheUpdateTask
	// progress records UpdatedFiles on every update.
	progress []int
}

var _ TaskStore = (*memTasks)(nil)

func (s *memTasks) CreateTask(ctx context.Context, task *model.CacheUpdateTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *task
	s.tasks = append(s.tasks, &cp)
	return nil
}

func (s *memTasks) UpdateTask(ctx context.Context, task *model.CacheUpdateTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == task.ID {
			cp := *task
			s.tasks[i] = &cp
			s.progress = append(s.progress, task.UpdatedFiles)
			return nil
		}
	}
	return pgerr.ErrNotFound
}

func (s *memTasks) GetRunningTask(ctx context.Context, taskType string) (*model.CacheUpdateTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.TaskType == taskType && t.Status == constant.TaskStatusRunning {
			cp := *t
			return &cp, nil
		}
	}
	return nil, pgerr.ErrNotFound
}

func (s *memTasks) GetRecentTasks(ctx context.Context, limit int) ([]*model.CacheUpdateTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := make([]*model.CacheUpdateTask, 0, limit)
	for i := len(s.tasks) - 1; i >= 0 && len(tasks) < limit; i-- {
		cp := *s.tasks[i]
		tasks = append(tasks, &cp)
	}
	return tasks, nil
}

func (s *memTasks) get(id string) *model.CacheUpdateTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			cp := *t
			return &cp
		}
	}
	return nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

var _ Locker = (*memLocker)(nil)

func (l *memLocker) Lock(ctx context.Context, name string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[name] {
		return nil, errFake
	}
	l.held[name] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, name)
	}, nil
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
