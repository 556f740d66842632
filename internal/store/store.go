// Package store orchestrates classification, aggregation, scoring, and
// persistence behind the relevancy API surface.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/konomi/internal/classify"
	"github.com/hyperjump/konomi/internal/interest"
	"github.com/hyperjump/konomi/internal/scoring"
	"github.com/hyperjump/konomi/internal/storage"
	"github.com/hyperjump/konomi/internal/telemetry"
)

// Store owns the persisted interest vector. Construction never touches disk;
// the database opens on first use. Reads run concurrently, ingests serialize
// on a write lock, and Interrupt cancels in-flight operations without closing
// the store. Close is terminal.
type Store struct {
	dbPath      string
	classifier  *classify.Classifier
	logger      *zap.Logger
	metrics     *telemetry.Metrics
	references  map[string]interest.Vector
	parallelism int

	mu          sync.Mutex // guards db, closed, interruptCh
	db          storage.Storage
	closed      bool
	interruptCh chan struct{}

	writeMu sync.Mutex     // serializes the ingest read-modify-write
	wg      sync.WaitGroup // in-flight operations, drained by Close
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a logger. Skipped URLs log at Debug, lifecycle at Info.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics sets telemetry collectors.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithReferences sets named reference vectors for CompareReferences.
func WithReferences(refs map[string]interest.Vector) Option {
	return func(s *Store) { s.references = refs }
}

// WithParallelism caps the classification workers per ingest. Zero or
// negative means one worker per CPU.
func WithParallelism(n int) Option {
	return func(s *Store) { s.parallelism = n }
}

// New creates a store persisting to dbPath. Only argument validation can
// fail here; the database is not opened until the first operation needs it.
func New(dbPath string, classifier *classify.Classifier, opts ...Option) (*Store, error) {
	if dbPath == "" {
		return nil, &UnexpectedError{Reason: "database path is empty"}
	}
	if classifier == nil {
		return nil, &UnexpectedError{Reason: "classifier is nil"}
	}
	s := &Store{
		dbPath:      dbPath,
		classifier:  classifier,
		interruptCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// begin registers an in-flight operation and derives a context that is
// cancelled by Interrupt and Close. The returned end func must be called
// exactly once.
func (s *Store) begin(ctx context.Context) (context.Context, func(), error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, nil, s.unexpected("store is closed", nil)
	}
	interruptCh := s.interruptCh
	s.wg.Add(1)
	s.mu.Unlock()

	opCtx, cancel := context.WithCancel(ctx)
	stop := make(chan struct{})
	go func() {
		select {
		case <-interruptCh:
			cancel()
		case <-stop:
		}
	}()
	end := func() {
		close(stop)
		cancel()
		s.wg.Done()
	}
	return opCtx, end, nil
}

var errClosed = errors.New("store is closed")

// getDB returns the open database, opening it lazily on first use.
func (s *Store) getDB() (storage.Storage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed
	}
	if s.db != nil {
		return s.db, nil
	}
	db, err := storage.NewSQLiteStorage(s.dbPath)
	if err != nil {
		return nil, err
	}
	s.db = db
	if s.logger != nil {
		s.logger.Info("storage opened", zap.String("path", s.dbPath))
	}
	return db, nil
}

// unexpected folds a cause into the store's single surfaced error kind.
// Cancellation causes report as interruption regardless of which layer they
// surfaced from.
func (s *Store) unexpected(reason string, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		reason = "operation interrupted"
	case errors.Is(err, errClosed):
		reason = "store is closed"
	}
	s.metrics.RecordStoreError()
	if s.logger != nil {
		s.logger.Warn("operation failed", zap.String("reason", reason), zap.Error(err))
	}
	return &UnexpectedError{Reason: reason, Err: err}
}

// Ingest classifies the given URLs, merges the result into the persisted
// vector in one transaction, and returns the updated vector. Malformed and
// unknown URLs are skipped. An interrupted or failed ingest leaves the
// previously committed vector intact.
func (s *Store) Ingest(ctx context.Context, urls []string) (interest.Vector, error) {
	start := time.Now()
	v, err := s.ingest(ctx, urls)
	s.metrics.RecordIngest(time.Since(start), err)
	return v, err
}

func (s *Store) ingest(ctx context.Context, urls []string) (interest.Vector, error) {
	opCtx, end, err := s.begin(ctx)
	if err != nil {
		return interest.Vector{}, err
	}
	defer end()

	delta, stats, err := s.classifier.ClassifyBatch(opCtx, urls, s.parallelism)
	if err != nil {
		return interest.Vector{}, s.unexpected("classification aborted", err)
	}
	s.metrics.RecordClassification(stats.Classified, stats.Skipped)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	db, err := s.getDB()
	if err != nil {
		return interest.Vector{}, s.unexpected("failed to open storage", err)
	}
	updated, err := db.UpdateVector(opCtx, func(cur interest.Vector) interest.Vector {
		return cur.Merge(delta)
	})
	if err != nil {
		return interest.Vector{}, s.unexpected("failed to persist interest vector", err)
	}

	if s.logger != nil {
		s.logger.Info("ingest complete",
			zap.Int("urls", len(urls)),
			zap.Int("classified", stats.Classified),
			zap.Int("skipped", stats.Skipped),
			zap.Uint64("total_count", updated.Total()),
		)
	}
	return updated, nil
}

// UserInterestVector returns the persisted vector; all-zero before any
// ingest.
func (s *Store) UserInterestVector(ctx context.Context) (interest.Vector, error) {
	opCtx, end, err := s.begin(ctx)
	if err != nil {
		return interest.Vector{}, err
	}
	defer end()
	return s.readVector(opCtx)
}

func (s *Store) readVector(opCtx context.Context) (interest.Vector, error) {
	db, err := s.getDB()
	if err != nil {
		return interest.Vector{}, s.unexpected("failed to open storage", err)
	}
	v, err := db.ReadVector(opCtx)
	if err != nil {
		return interest.Vector{}, s.unexpected("failed to read interest vector", err)
	}
	return v, nil
}

// CalculateMetrics scores the persisted vector against its own top-1, top-2,
// and top-3 references. An empty store yields all-zero metrics.
func (s *Store) CalculateMetrics(ctx context.Context) (interest.Metrics, error) {
	opCtx, end, err := s.begin(ctx)
	if err != nil {
		return interest.Metrics{}, err
	}
	defer end()

	v, err := s.readVector(opCtx)
	if err != nil {
		return interest.Metrics{}, err
	}
	return scoring.CalculateMetrics(v), nil
}

// ReferenceScore is the scaled similarity between the persisted vector and
// one configured reference vector.
type ReferenceScore struct {
	Name       string `json:"name"`
	Similarity uint32 `json:"similarity"`
}

// CompareReferences scores the persisted vector against every configured
// reference, ordered by reference name.
func (s *Store) CompareReferences(ctx context.Context) ([]ReferenceScore, error) {
	opCtx, end, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer end()

	v, err := s.readVector(opCtx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(s.references))
	for name := range s.references {
		names = append(names, name)
	}
	sort.Strings(names)

	scores := make([]ReferenceScore, 0, len(names))
	for _, name := range names {
		scores = append(scores, ReferenceScore{
			Name:       name,
			Similarity: scoring.ScaledSimilarity(v, s.references[name]),
		})
	}
	return scores, nil
}

// Interrupt cancels in-flight operations without closing the store.
// Operations started afterwards are unaffected.
func (s *Store) Interrupt() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	close(s.interruptCh)
	s.interruptCh = make(chan struct{})
	s.mu.Unlock()

	s.metrics.RecordInterrupt()
	if s.logger != nil {
		s.logger.Info("interrupt requested")
	}
}

// Close interrupts in-flight operations, waits for them to drain, and
// releases storage. Every operation after Close fails. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.interruptCh)
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	db := s.db
	s.db = nil
	s.mu.Unlock()

	if db != nil {
		if err := db.Close(); err != nil {
			return s.unexpected("failed to close storage", err)
		}
	}
	if s.logger != nil {
		s.logger.Info("store closed", zap.String("path", s.dbPath))
	}
	return nil
}

// Stats describes the store for status surfaces.
type Stats struct {
	State       string `json:"state"`
	DBPath      string `json:"db_path"`
	DBSizeBytes int64  `json:"db_size_bytes"`
	TotalCount  uint64 `json:"total_count"`
	TableSize   int    `json:"table_size"`
	References  int    `json:"references"`
}

// Stats reports the store's state. On an open store it reads the persisted
// vector, opening the database if this is the first access; on a closed
// store it reports without touching storage.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{
		State:      "open",
		DBPath:     s.dbPath,
		TableSize:  s.classifier.TableSize(),
		References: len(s.references),
	}
	if n, err := storage.DatabaseSizeBytes(s.dbPath); err == nil {
		st.DBSizeBytes = n
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		st.State = "closed"
		return st, nil
	}

	v, err := s.UserInterestVector(ctx)
	if err != nil {
		return Stats{}, err
	}
	st.TotalCount = v.Total()
	return st, nil
}
