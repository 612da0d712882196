package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/hyperscope-stream/internal/model"
)

// SnapshotSource fetches order book snapshots. *api.Client satisfies it.
type SnapshotSource interface {
	GetOrderbook(ctx context.Context, pair string, depth int) (model.OrderbookSnapshot, error)
}

// SnapshotHandler receives fetched snapshots.
type SnapshotHandler interface {
	HandleSnapshot(snapshot model.OrderbookSnapshot) error
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(model.OrderbookSnapshot) error

func (f SnapshotHandlerFunc) HandleSnapshot(s model.OrderbookSnapshot) error {
	return f(s)
}

// Config holds poller configuration.
type Config struct {
	Interval    time.Duration // Poll interval
	Concurrency int           // Max concurrent requests
	Timeout     time.Duration // Per-request timeout
	Depth       int           // Levels per side
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    5 * time.Minute,
		Concurrency: 4,
		Timeout:     10 * time.Second,
		Depth:       20,
	}
}

// Stats holds poll counters.
type Stats struct {
	Cycles  int64
	Fetched int64
	Errors  int64
}

// Poller periodically fetches snapshots for a fixed set of pairs.
type Poller struct {
	cfg     Config
	source  SnapshotSource
	pairs   []string
	handler SnapshotHandler
	logger  *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	cycles  atomic.Int64
	fetched atomic.Int64
	errors  atomic.Int64
}

// New creates a new Poller. Zero config fields take defaults.
func New(cfg Config, source SnapshotSource, pairs []string, handler SnapshotHandler, logger *slog.Logger) *Poller {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Depth <= 0 {
		cfg.Depth = def.Depth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:     cfg,
		source:  source,
		pairs:   pairs,
		handler: handler,
		logger:  logger.With("component", "poller"),
	}
}

// Start begins the polling loop. The first poll happens after one interval;
// callers seed their books before starting.
func (p *Poller) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("snapshot poller started",
		"interval", p.cfg.Interval,
		"pairs", len(p.pairs),
	)
	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("snapshot poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns poll counters.
func (p *Poller) Stats() Stats {
	return Stats{
		Cycles:  p.cycles.Load(),
		Fetched: p.fetched.Load(),
		Errors:  p.errors.Load(),
	}
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce fetches every pair with bounded concurrency and returns how many
// snapshots were handled and how many failed.
func (p *Poller) PollOnce(ctx context.Context) (fetched, failed int) {
	start := time.Now()
	var ok, bad atomic.Int64

	var g errgroup.Group
	g.SetLimit(p.cfg.Concurrency)

	for _, pair := range p.pairs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := p.poll(ctx, pair); err != nil {
				p.logger.Warn("failed to poll order book", "pair", pair, "error", err)
				bad.Add(1)
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	g.Wait()

	p.cycles.Add(1)
	p.fetched.Add(ok.Load())
	p.errors.Add(bad.Load())

	p.logger.Debug("poll cycle complete",
		"pairs", len(p.pairs),
		"fetched", ok.Load(),
		"errors", bad.Load(),
		"duration", time.Since(start),
	)
	return int(ok.Load()), int(bad.Load())
}

func (p *Poller) poll(ctx context.Context, pair string) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	snap, err := p.source.GetOrderbook(ctx, pair, p.cfg.Depth)
	if err != nil {
		return err
	}
	if p.handler != nil {
		return p.handler.HandleSnapshot(snap)
	}
	return nil
}
