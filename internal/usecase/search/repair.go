package search

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/metrics"
)

// Repair worker defaults.
const (
	DefaultRepairQueueSize  = 256
	DefaultRepairRatePerSec = 5
	DefaultRepairTimeout    = 10 * time.Second
)

// Deleter removes documents from the index.
type Deleter interface {
	DeleteDocuments(ctx context.Context, ids []string) error
}

// RepairConfig tunes the stale-ID repair worker.
type RepairConfig struct {
	QueueSize  int
	RatePerSec float64
	Timeout    time.Duration
}

func (c *RepairConfig) applyDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultRepairQueueSize
	}
	if c.RatePerSec <= 0 {
		c.RatePerSec = DefaultRepairRatePerSec
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultRepairTimeout
	}
}

// Repairer removes stale IDs from the index in the background.
// Submit never blocks; batches that do not fit the queue are dropped.
type Repairer struct {
	index   Deleter
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan []string
	done   chan struct{}
}

// NewRepairer starts the repair worker.
func NewRepairer(index Deleter, cfg RepairConfig, logger *zap.Logger) *Repairer {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Repairer{
		index:   index,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		timeout: cfg.Timeout,
		logger:  logger,
		queue:   make(chan []string, cfg.QueueSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Submit queues ids for removal.
func (r *Repairer) Submit(ids []string) {
	if len(ids) == 0 {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}

	batch := append([]string(nil), ids...)
	select {
	case r.queue <- batch:
		metrics.StaleIDsTotal.WithLabelValues("queued").Add(float64(len(batch)))
	default:
		metrics.StaleIDsTotal.WithLabelValues("dropped").Add(float64(len(batch)))
		r.logger.Error("repair queue full, dropping stale ids",
			zap.Strings("ids", batch), zap.Int("queue_size", cap(r.queue)))
	}
}

// Close stops accepting work, drains the queue and waits for the worker.
func (r *Repairer) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *Repairer) run() {
	defer close(r.done)
	for ids := range r.queue {
		r.repair(ids)
	}
}

func (r *Repairer) repair(ids []string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	err := r.limiter.Wait(ctx)
	if err == nil {
		err = r.index.DeleteDocuments(ctx, ids)
	}
	if err != nil {
		metrics.StaleIDsTotal.WithLabelValues("failed").Add(float64(len(ids)))
		r.logger.Error("stale index cleanup failed",
			zap.Error(&domain.ReconciliationError{IDs: ids, Err: err}),
			zap.Strings("ids", ids),
		)
		return
	}
	metrics.StaleIDsTotal.WithLabelValues("deleted").Add(float64(len(ids)))
	r.logger.Info("removed stale index entries", zap.Int("count", len(ids)))
}
