package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"alfredoptarigan/career-coach/internal/logger"
)

// ScoringWorker runs document scoring out of band. Enqueue never blocks and
// never reports failure to the caller.
type ScoringWorker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(documentID uuid.UUID)
}

type taskState int

const (
	stateQueued taskState = iota + 1
	stateRunning
	stateRerun // running, and another update arrived meanwhile
)

type WorkerOption func(*scoringWorker)

// WithObserver registers a callback that receives every finished task.
func WithObserver(fn func(ScoringResult)) WorkerOption {
	return func(w *scoringWorker) {
		w.observer = fn
	}
}

type scoringWorker struct {
	scorer      DocumentScorer
	log         *logger.Logger
	metrics     *Metrics
	observer    func(ScoringResult)
	jobQueue    chan uuid.UUID
	concurrency int

	mu      sync.Mutex
	states  map[uuid.UUID]taskState
	stopped bool

	wg       sync.WaitGroup
	stopChan chan struct{}
	cancel   context.CancelFunc
}

func NewScoringWorker(
	scorer DocumentScorer,
	log *logger.Logger,
	metrics *Metrics,
	concurrency int,
	queueSize int,
	opts ...WorkerOption,
) ScoringWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	w := &scoringWorker{
		scorer:      scorer,
		log:         log.With("component", "ScoringWorker"),
		metrics:     metrics,
		jobQueue:    make(chan uuid.UUID, queueSize),
		concurrency: concurrency,
		states:      make(map[uuid.UUID]taskState),
		stopChan:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start implements ScoringWorker.
func (w *scoringWorker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	w.log.Info("starting scoring workers", "concurrency", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements ScoringWorker. In-flight tasks see their context cancelled.
func (w *scoringWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	cancel := w.cancel
	w.mu.Unlock()

	w.log.Info("stopping scoring workers")
	close(w.stopChan)
	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
	w.log.Info("scoring workers stopped")
}

// Enqueue implements ScoringWorker. A document already waiting is coalesced;
// a document being scored gets exactly one follow-up run so its newest
// version is scored too.
func (w *scoringWorker) Enqueue(documentID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		w.log.Warn("worker stopped, dropping scoring request", "document_id", documentID)
		w.metrics.ScoringTask(OutcomeDropped)
		return
	}

	switch w.states[documentID] {
	case stateQueued, stateRerun:
		w.metrics.ScoringTask(OutcomeCoalesced)
	case stateRunning:
		w.states[documentID] = stateRerun
		w.metrics.ScoringTask(OutcomeCoalesced)
	default:
		w.push(documentID)
	}
}

// push must be called with mu held.
func (w *scoringWorker) push(documentID uuid.UUID) {
	select {
	case w.jobQueue <- documentID:
		w.states[documentID] = stateQueued
		w.log.Debug("scoring job enqueued", "document_id", documentID)
	default:
		delete(w.states, documentID)
		w.log.Warn("scoring queue full, dropping request", "document_id", documentID)
		w.metrics.ScoringTask(OutcomeDropped)
	}
	w.metrics.QueueDepth(len(w.jobQueue))
}

func (w *scoringWorker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.log.Debug("scoring worker exiting", "worker", workerID)
			return
		case documentID := <-w.jobQueue:
			w.run(ctx, workerID, documentID)
		}
	}
}

func (w *scoringWorker) run(ctx context.Context, workerID int, documentID uuid.UUID) {
	w.mu.Lock()
	w.states[documentID] = stateRunning
	w.metrics.QueueDepth(len(w.jobQueue))
	w.mu.Unlock()

	result := w.scorer.ScoreLatest(ctx, documentID)
	w.report(workerID, result)

	w.mu.Lock()
	defer w.mu.Unlock()
	rerun := w.states[documentID] == stateRerun
	delete(w.states, documentID)
	if rerun && !w.stopped {
		w.push(documentID)
	}
}

func (w *scoringWorker) report(workerID int, result ScoringResult) {
	switch result.Outcome {
	case OutcomeScored:
		w.log.Info("document scored",
			"worker", workerID,
			"document_id", result.DocumentID,
			"version", result.VersionNumber,
			"score", result.Score.Score,
		)
	case OutcomeSkipped:
		w.log.Info("document gone, scoring skipped", "worker", workerID, "document_id", result.DocumentID)
	default:
		w.log.Warn("document scoring failed",
			"worker", workerID,
			"document_id", result.DocumentID,
			"version", result.VersionNumber,
			"error", result.Err,
		)
	}

	w.metrics.ScoringTask(result.Outcome)
	if w.observer != nil {
		w.observer(result)
	}
}
