package feed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rickgao/hyperscope-stream/internal/stream"
)

// Kind identifies the feed a channel belongs to.
type Kind string

const (
	KindL2Book       Kind = stream.FeedL2Book
	KindTrades       Kind = stream.FeedTrades
	KindBBO          Kind = stream.FeedBBO
	KindCandle       Kind = stream.FeedCandle
	KindActiveAsset  Kind = stream.FeedActiveAsset
	KindAllMids      Kind = stream.FeedAllMids
	KindLargeTrades  Kind = stream.FeedLargeTrades
	KindLiquidations Kind = stream.FeedLiquidations
	KindRaw          Kind = "raw" // Unknown feed, payload left undecoded
)

var (
	ErrUnknownFeed     = errors.New("unknown feed")
	ErrMissingPair     = errors.New("feed requires a pair")
	ErrInvalidInterval = errors.New("invalid candle interval")
)

// Intervals lists the supported candle intervals, shortest first.
var Intervals = []string{"1m", "3m", "5m", "15m", "30m", "1h", "2h", "4h", "8h", "12h", "1d"}

// ValidInterval reports whether interval is a supported candle interval.
func ValidInterval(interval string) bool {
	for _, i := range Intervals {
		if i == interval {
			return true
		}
	}
	return false
}

// perPair reports whether the feed is keyed by a pair.
func (k Kind) perPair() bool {
	switch k {
	case KindL2Book, KindTrades, KindBBO, KindCandle, KindActiveAsset:
		return true
	}
	return false
}

// Channel is a structured channel name.
type Channel struct {
	Kind     Kind
	Pair     string // Empty for global feeds
	Interval string // Candles only
}

// String builds the wire name using the stream package conventions.
func (c Channel) String() string {
	switch c.Kind {
	case KindL2Book:
		return stream.L2BookChannel(c.Pair)
	case KindTrades:
		return stream.TradesChannel(c.Pair)
	case KindBBO:
		return stream.BBOChannel(c.Pair)
	case KindActiveAsset:
		return stream.ActiveAssetChannel(c.Pair)
	case KindCandle:
		return stream.CandleChannel(c.Pair, c.Interval)
	case KindAllMids:
		return stream.AllMidsChannel()
	case KindLargeTrades:
		return stream.LargeTradesChannel()
	case KindLiquidations:
		return stream.LiquidationsChannel()
	}
	return string(c.Kind)
}

// Validate checks the channel is one the server can serve.
func (c Channel) Validate() error {
	switch c.Kind {
	case KindL2Book, KindTrades, KindBBO, KindActiveAsset, KindCandle,
		KindAllMids, KindLargeTrades, KindLiquidations:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFeed, c.Kind)
	}
	if c.Kind.perPair() && c.Pair == "" {
		return fmt.Errorf("%s: %w", c.Kind, ErrMissingPair)
	}
	if c.Kind == KindCandle && !ValidInterval(c.Interval) {
		return fmt.Errorf("%w: %q", ErrInvalidInterval, c.Interval)
	}
	return nil
}

// Parse splits a channel name into its parts. Names of unknown feeds parse as KindRaw.
// Pairs may contain dashes; the candle interval is the last dot segment.
func Parse(name string) (Channel, error) {
	if name == "" {
		return Channel{}, fmt.Errorf("%w: empty channel", ErrUnknownFeed)
	}

	feed, rest, _ := strings.Cut(name, ".")
	c := Channel{Kind: Kind(feed)}

	switch c.Kind {
	case KindAllMids, KindLargeTrades, KindLiquidations:
		if rest != "" {
			return Channel{}, fmt.Errorf("%s takes no pair: %q", c.Kind, name)
		}
		return c, nil

	case KindCandle:
		i := strings.LastIndex(rest, ".")
		if i < 0 {
			return Channel{}, fmt.Errorf("%w: %q", ErrInvalidInterval, name)
		}
		c.Pair, c.Interval = rest[:i], rest[i+1:]

	case KindL2Book, KindTrades, KindBBO, KindActiveAsset:
		c.Pair = rest

	default:
		return Channel{Kind: KindRaw}, nil
	}

	if err := c.Validate(); err != nil {
		return Channel{}, err
	}
	return c, nil
}

// Expand builds channel names for every feed in feeds. Per-pair feeds are
// multiplied by pairs; candle feeds use interval. Duplicates are dropped.
func Expand(feeds []string, pairs []string, interval string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(c Channel) error {
		if err := c.Validate(); err != nil {
			return err
		}
		name := c.String()
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
		return nil
	}

	for _, f := range feeds {
		kind := Kind(strings.TrimSpace(f))
		if !kind.perPair() {
			if err := add(Channel{Kind: kind}); err != nil {
				return nil, err
			}
			continue
		}
		if len(pairs) == 0 {
			return nil, fmt.Errorf("%s: %w", kind, ErrMissingPair)
		}
		for _, p := range pairs {
			c := Channel{Kind: kind, Pair: strings.ToUpper(strings.TrimSpace(p))}
			if kind == KindCandle {
				c.Interval = interval
			}
			if err := add(c); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}
