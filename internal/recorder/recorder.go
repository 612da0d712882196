package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/hyperscope-stream/internal/model"
	"github.com/rickgao/hyperscope-stream/internal/stream"
)

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("recorder already started")

// Sink persists a batch of frames and returns how many were written.
type Sink interface {
	Write(ctx context.Context, frames []model.Frame) (int, error)
}

// Config holds batching settings.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	BufferSize    int // initial queue capacity
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     500,
		FlushInterval: time.Second,
		BufferSize:    10000,
	}
}

// Stats holds recorder counters.
type Stats struct {
	Received int64 // frames accepted by a handler
	Dropped  int64 // frames offered after Stop
	Written  int64
	Flushes  int64
	Errors   int64
	Pending  int
}

// Recorder batches frames from stream handlers into a Sink.
type Recorder struct {
	cfg    Config
	sink   Sink
	queue  *Queue[model.Frame]
	logger *slog.Logger
	now    func() time.Time

	kick    chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started atomic.Bool

	received atomic.Int64
	dropped  atomic.Int64
	written  atomic.Int64
	flushes  atomic.Int64
	errors   atomic.Int64
}

// New creates a Recorder. Zero config fields take defaults.
func New(cfg Config, sink Sink, logger *slog.Logger) *Recorder {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Recorder{
		cfg:    cfg,
		sink:   sink,
		queue:  NewQueue[model.Frame](cfg.BufferSize),
		logger: logger.With("component", "recorder"),
		now:    time.Now,
		kick:   make(chan struct{}, 1),
	}
}

// Handler returns a stream.Handler that records every frame on channel.
func (r *Recorder) Handler(channel string) stream.Handler {
	return stream.HandlerFunc(func(data json.RawMessage) {
		r.Record(model.Frame{
			Channel:    channel,
			Payload:    append(json.RawMessage(nil), data...),
			ReceivedAt: r.now(),
		})
	})
}

// Record enqueues a frame. Frames offered after Stop are counted and dropped.
func (r *Recorder) Record(f model.Frame) {
	if !r.queue.Push(f) {
		r.dropped.Add(1)
		return
	}
	r.received.Add(1)

	if r.queue.Len() >= r.cfg.BatchSize {
		select {
		case r.kick <- struct{}{}:
		default:
		}
	}
}

// Start begins the flush loop.
func (r *Recorder) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.loop(ctx)

	r.logger.Info("recorder started",
		"batch_size", r.cfg.BatchSize,
		"flush_interval", r.cfg.FlushInterval,
	)
	return nil
}

// Stop closes the queue, waits for the loop, and flushes what remains
// using ctx for the final writes.
func (r *Recorder) Stop(ctx context.Context) error {
	r.logger.Info("stopping recorder")
	r.queue.Close()

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn("recorder stop timed out")
		return ctx.Err()
	}

	// Final flush
	for r.queue.Len() > 0 {
		if err := r.flush(ctx); err != nil {
			return err
		}
	}

	r.logger.Info("recorder stopped", "written", r.written.Load())
	return nil
}

// Stats returns current counters.
func (r *Recorder) Stats() Stats {
	return Stats{
		Received: r.received.Load(),
		Dropped:  r.dropped.Load(),
		Written:  r.written.Load(),
		Flushes:  r.flushes.Load(),
		Errors:   r.errors.Load(),
		Pending:  r.queue.Len(),
	}
}

func (r *Recorder) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.FlushInterval)
	defer ticker.Stop()

	// In-flight writes finish even after Stop cancels the loop.
	writeCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.flush(writeCtx)
		case <-r.kick:
			for r.queue.Len() >= r.cfg.BatchSize {
				if r.flush(writeCtx) != nil {
					break
				}
			}
		}
	}
}

// flush writes at most one batch. Failed batches are counted and discarded.
func (r *Recorder) flush(ctx context.Context) error {
	batch := r.queue.Drain(r.cfg.BatchSize)
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	n, err := r.sink.Write(ctx, batch)
	r.flushes.Add(1)
	r.written.Add(int64(n))
	if err != nil {
		r.errors.Add(1)
		r.logger.Error("batch write failed", "error", err, "count", len(batch), "written", n)
		return err
	}

	r.logger.Debug("flushed frames",
		"count", len(batch),
		"duration", time.Since(start),
	)
	return nil
}
