package api

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/viewsplit/pkg/cache"
	"github.com/matzehuels/viewsplit/pkg/core/partition"
	"github.com/matzehuels/viewsplit/pkg/core/split"
	splitio "github.com/matzehuels/viewsplit/pkg/io"
	"github.com/matzehuels/viewsplit/pkg/pipeline"
)

// RunStatus is the state of a split run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
)

// Run summarizes one split request.
type Run struct {
	ID          string           `json:"id"`
	Status      RunStatus        `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	DatasetHash string           `json:"dataset_hash"`
	Params      partition.Params `json:"params"`
	Stats       pipeline.Stats   `json:"stats"`
	CacheHit    bool             `json:"cache_hit"`
}

// storedRun is the cache document of a run.
type storedRun struct {
	Run    Run             `json:"run"`
	Result json.RawMessage `json:"result"`
}

// DefaultMaxResults bounds the split results a [RunStore] keeps in memory.
const DefaultMaxResults = 64

// RunStore keeps run summaries in memory and writes every run through to a
// cache.
//
// Summaries expire after [cache.TTLRun]. At most MaxResults split results are
// held in memory; older ones are evicted first and read back from the cache
// on demand.
type RunStore struct {
	// MaxResults bounds the split results held in memory.
	MaxResults int

	mu      sync.Mutex
	runs    map[string]*Run
	results map[string]*split.Result
	order   []string // result IDs, oldest first

	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
	now   func() time.Time
}

// NewRunStore creates a store backed by c. With a nil cache evicted results
// are gone for good.
func NewRunStore(c cache.Cache, keyer cache.Keyer) *RunStore {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &RunStore{
		MaxResults: DefaultMaxResults,
		runs:       make(map[string]*Run),
		results:    make(map[string]*split.Result),
		cache:      c,
		keyer:      keyer,
		ttl:        cache.TTLRun,
		now:        time.Now,
	}
}

// Create records a finished pipeline result as a new run.
func (s *RunStore) Create(ctx context.Context, result *pipeline.Result) (*Run, error) {
	run := &Run{
		ID:          uuid.New().String(),
		Status:      RunStatusCompleted,
		CreatedAt:   s.now().UTC(),
		DatasetHash: result.DatasetHash,
		Params:      result.Params,
		Stats:       result.Stats,
		CacheHit:    result.CacheInfo.SplitHit,
	}

	var buf bytes.Buffer
	if err := splitio.WriteResult(result.Split, &buf); err != nil {
		return nil, err
	}
	if data, err := json.Marshal(storedRun{Run: *run, Result: buf.Bytes()}); err == nil {
		_ = s.cache.Set(ctx, s.keyer.RunKey(run.ID), data, s.ttl)
	}

	s.mu.Lock()
	s.expire()
	s.runs[run.ID] = run
	s.remember(run.ID, result.Split)
	s.mu.Unlock()

	return run, nil
}

// Get returns the run and its split result. Runs or results not in memory
// are looked up in the cache.
func (s *RunStore) Get(ctx context.Context, id string) (*Run, *split.Result, bool) {
	s.mu.Lock()
	run, ok := s.runs[id]
	if ok && s.expired(run) {
		s.forget(id)
		ok = false
	}
	res := s.results[id]
	s.mu.Unlock()
	if ok && res != nil {
		return run, res, true
	}

	data, hit, err := s.cache.Get(ctx, s.keyer.RunKey(id))
	if err != nil || !hit {
		return nil, nil, false
	}
	var stored storedRun
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, nil, false
	}
	if s.expired(&stored.Run) {
		return nil, nil, false
	}
	res, err = splitio.ReadResult(bytes.NewReader(stored.Result))
	if err != nil {
		return nil, nil, false
	}

	s.mu.Lock()
	s.runs[id] = &stored.Run
	s.remember(id, res)
	s.mu.Unlock()

	return &stored.Run, res, true
}

// remember holds res in memory, evicting the oldest results beyond
// MaxResults. The caller holds mu.
func (s *RunStore) remember(id string, res *split.Result) {
	if _, ok := s.results[id]; !ok {
		s.order = append(s.order, id)
	}
	s.results[id] = res
	for len(s.order) > max(s.MaxResults, 1) {
		delete(s.results, s.order[0])
		s.order = s.order[1:]
	}
}

// expire drops every expired run. The caller holds mu.
func (s *RunStore) expire() {
	for id, run := range s.runs {
		if s.expired(run) {
			s.forget(id)
		}
	}
}

// forget drops a run and its result. The caller holds mu.
func (s *RunStore) forget(id string) {
	delete(s.runs, id)
	if _, ok := s.results[id]; ok {
		delete(s.results, id)
		s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	}
}

func (s *RunStore) expired(run *Run) bool {
	return s.now().Sub(run.CreatedAt) > s.ttl
}

// Results returns the number of split results held in memory.
func (s *RunStore) Results() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Len returns the number of runs held in memory.
func (s *RunStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}
