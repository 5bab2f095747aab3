// Package worker runs background jobs with per-key ordering.
package worker

import (
	"context"
	"hash/fnv"
	"sync"

	"go.uber.org/zap"

	"walletpalz/internal/logger"
	"walletpalz/internal/metrics"
)

// Job is a unit of background work. It receives a context that is cancelled
// when the dispatcher is closed.
type Job func(ctx context.Context)

// Dispatcher shards jobs across a fixed set of workers by key. Jobs with the
// same key always run on the same worker, one at a time and in submission
// order.
type Dispatcher struct {
	queues []chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	log    *zap.SugaredLogger
}

// NewDispatcher starts workers goroutines, each with a queue of queueSize jobs.
func NewDispatcher(workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		queues: make([]chan Job, workers),
		ctx:    ctx,
		cancel: cancel,
		log:    logger.Named("worker"),
	}
	for i := range d.queues {
		d.queues[i] = make(chan Job, queueSize)
		d.wg.Add(1)
		go d.run(d.queues[i])
	}
	return d
}

func (d *Dispatcher) run(queue <-chan Job) {
	defer d.wg.Done()
	for job := range queue {
		d.execute(job)
	}
}

func (d *Dispatcher) execute(job Job) {
	defer func() {
		if r := recover(); r != nil {
			metrics.AlertJobs.WithLabelValues("panicked").Inc()
			d.log.Errorw("Background job panicked", "panic", r)
		}
	}()
	job(d.ctx)
	metrics.AlertJobs.WithLabelValues("done").Inc()
}

// Submit queues job behind earlier jobs for key. It reports false when the
// dispatcher is closed or the key's queue is full; the job is then dropped.
func (d *Dispatcher) Submit(key string, job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.AlertJobs.WithLabelValues("dropped").Inc()
		return false
	}

	select {
	case d.queues[d.shard(key)] <- job:
		return true
	default:
		metrics.AlertJobs.WithLabelValues("dropped").Inc()
		d.log.Warnw("Job queue full, dropping job", "key", key)
		return false
	}
}

func (d *Dispatcher) shard(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.queues)))
}

// Close stops accepting jobs and waits for queued jobs to finish or ctx to
// expire. When ctx expires first, running jobs see their context cancelled.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
