// streamtest subscribes to HyperScope stream channels and prints decoded events to the console.
// Usage: go run ./cmd/streamtest --config configs/streamtest.example.yaml
//
// l2book channels are seeded from the REST order book and the merged top of
// book is logged with the periodic stats.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/hyperscope-stream/internal/api"
	"github.com/rickgao/hyperscope-stream/internal/config"
	"github.com/rickgao/hyperscope-stream/internal/feed"
	"github.com/rickgao/hyperscope-stream/internal/logging"
	"github.com/rickgao/hyperscope-stream/internal/model"
	"github.com/rickgao/hyperscope-stream/internal/poller"
	"github.com/rickgao/hyperscope-stream/internal/stream"
	"github.com/rickgao/hyperscope-stream/internal/version"
)

const (
	statusInterval = 2 * time.Second
	statsInterval  = 10 * time.Second
)

func main() {
	configPath := flag.String("config", "configs/streamtest.example.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional dotenv file")
	verbose := flag.Bool("verbose", false, "print full event JSON")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if err := config.LoadDotEnv(*envPath); err != nil {
		slog.Error("failed to load env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, closer := logging.New(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, *verbose, logger)
	stop()
	closer.Close()

	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, verbose bool, logger *slog.Logger) error {
	logger.Info("starting streamtest", "version", version.Version, "commit", version.Commit)

	apiClient := api.NewClient(cfg.API.RESTConfig(), logger)

	if health, err := apiClient.GetHealth(ctx); err != nil {
		logger.Warn("health check failed, streaming anyway", "error", err)
	} else {
		logger.Info("server health", "status", health.Status, "version", health.Version, "uptime_seconds", health.UptimeSeconds)
	}

	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		logger.Error("invalid stream endpoint", "error", err)
		return err
	}
	channels, err := cfg.Feeds.Channels()
	if err != nil {
		logger.Error("invalid feeds", "error", err)
		return err
	}

	mux := stream.New(cfg.Stream.MuxConfig(), stream.NewDialer(clientCfg, logger), stream.WithLogger(logger))
	defer mux.Disconnect()

	books := make(map[string]*feed.Book)
	for _, ch := range channels {
		c, err := feed.Parse(ch)
		if err != nil {
			logger.Warn("skipping channel", "channel", ch, "error", err)
			continue
		}

		if c.Kind == feed.KindL2Book {
			book := feed.NewBook(c.Pair)
			snap, err := apiClient.GetOrderbook(ctx, c.Pair, cfg.Feeds.BookDepth)
			if err != nil {
				logger.Warn("order book seed failed, using stream only", "pair", c.Pair, "error", err)
			} else {
				book.Seed(snap)
			}
			books[c.Pair] = book
			mux.Subscribe(ch, feed.BookHandler(book, logger))
		}

		mux.Subscribe(ch, feed.Handler(ch, func(ev feed.Event) { printEvent(ev, verbose) }, logger))
	}

	if cfg.Feeds.ResyncInterval > 0 && len(books) > 0 {
		p := poller.New(poller.Config{
			Interval: cfg.Feeds.ResyncInterval,
			Timeout:  cfg.API.Timeout,
			Depth:    cfg.Feeds.BookDepth,
		}, apiClient, pairsOf(books), reseed(books, logger), logger)
		if err := p.Start(ctx); err != nil {
			return err
		}
		defer p.Stop(context.Background())
	}

	logger.Info("streaming started - press Ctrl+C to stop",
		"endpoint", clientCfg.URL,
		"channels", len(channels),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		watchStatus(gctx, mux, logger)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				logStats(mux.Stats(), books, logger)
			}
		}
	})

	err = g.Wait()
	logger.Info("shutting down...", "final_state", mux.Status())
	return err
}

func pairsOf(books map[string]*feed.Book) []string {
	pairs := make([]string, 0, len(books))
	for pair := range books {
		pairs = append(pairs, pair)
	}
	return pairs
}

// reseed replaces a book with a REST snapshot unless the stream has
// already moved past it.
func reseed(books map[string]*feed.Book, logger *slog.Logger) poller.SnapshotHandler {
	return poller.SnapshotHandlerFunc(func(snap model.OrderbookSnapshot) error {
		book, ok := books[snap.Pair]
		if !ok {
			return fmt.Errorf("no book for %s", snap.Pair)
		}
		if !book.Reseed(snap) {
			logger.Debug("skipping stale snapshot", "pair", snap.Pair)
		}
		return nil
	})
}

// watchStatus logs every observed change in connection state.
func watchStatus(ctx context.Context, mux *stream.Mux, logger *slog.Logger) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	last := mux.Status()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if state := mux.Status(); state != last {
				logger.Info("stream state changed", "from", last, "to", state)
				last = state
			}
		}
	}
}

func logStats(s stream.Stats, books map[string]*feed.Book, logger *slog.Logger) {
	logger.Info("stats",
		"state", s.State,
		"channels", s.Channels,
		"subscriptions", s.Subscriptions,
		"reconnects", s.Reconnects,
		"received", s.FramesReceived,
		"dispatched", s.FramesDispatched,
		"malformed", s.FramesMalformed,
		"unrouted", s.FramesUnrouted,
		"handler_panics", s.HandlerPanics,
		"control_pending", s.ControlPending,
	)

	for pair, book := range books {
		bid, ask, ok := book.Top()
		if !ok {
			continue
		}
		bps, _ := book.SpreadBps()
		nb, na := book.Depth()
		logger.Info("book",
			"pair", pair,
			"bid", bid.Price,
			"ask", ask.Price,
			"spread_bps", bps.StringFixed(2),
			"bid_levels", nb,
			"ask_levels", na,
		)
	}
}

func printEvent(ev feed.Event, verbose bool) {
	if verbose {
		data, _ := json.MarshalIndent(ev, "", "  ")
		fmt.Printf("[%s] %s\n", ev.Channel, data)
		return
	}

	switch ev.Kind {
	case feed.KindL2Book:
		fmt.Printf("[L2BOOK] coin=%s bids=%d asks=%d time=%d\n",
			ev.L2Book.Coin, len(ev.L2Book.Bids), len(ev.L2Book.Asks), ev.L2Book.Time)
	case feed.KindTrades, feed.KindLargeTrades:
		for _, t := range ev.Trades {
			fmt.Printf("[TRADE] coin=%s side=%s px=%s sz=%s notional=%s\n",
				t.Coin, t.Side, t.Price, t.Size, t.Notional().StringFixed(2))
		}
	case feed.KindBBO:
		fmt.Printf("[BBO] coin=%s bid=%s ask=%s\n", ev.BBO.Coin, levelPrice(ev.BBO.Bid), levelPrice(ev.BBO.Ask))
	case feed.KindCandle:
		c := ev.Candle
		fmt.Printf("[CANDLE] coin=%s i=%s o=%s h=%s l=%s c=%s v=%s\n",
			c.Coin, c.Interval, c.Open, c.High, c.Low, c.Close, c.Volume)
	case feed.KindAllMids:
		fmt.Printf("[MIDS] coins=%d\n", len(ev.Mids))
	case feed.KindActiveAsset:
		a := ev.ActiveAsset
		fmt.Printf("[ASSET] coin=%s mark=%s oracle=%s funding=%s oi=%s\n",
			a.Coin, a.MarkPrice, a.OraclePrice, a.Funding, a.OpenInterest)
	case feed.KindLiquidations:
		for _, l := range ev.Liquidations {
			fmt.Printf("[LIQUIDATION] coin=%s side=%s px=%s sz=%s\n", l.Coin, l.Side, l.Price, l.Size)
		}
	default:
		fmt.Printf("[RAW] channel=%s bytes=%d\n", ev.Channel, len(ev.Raw))
	}
}

func levelPrice(l *model.Level) string {
	if l == nil {
		return "-"
	}
	return l.Price.String()
}
