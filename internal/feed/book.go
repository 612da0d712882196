package feed

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rickgao/hyperscope-stream/internal/model"
)

var (
	two        = decimal.NewFromInt(2)
	bpsPerUnit = decimal.NewFromInt(10_000)
)

// Book is a live order book: a REST snapshot with l2book updates merged on top.
// It is safe for concurrent use; the stream writes while readers render.
type Book struct {
	pair string

	mu      sync.RWMutex
	bids    map[string]model.Level // keyed by canonical price string
	asks    map[string]model.Level
	updated int64 // ms timestamp of the newest applied state
}

// NewBook creates an empty book for pair.
func NewBook(pair string) *Book {
	return &Book{
		pair: pair,
		bids: make(map[string]model.Level),
		asks: make(map[string]model.Level),
	}
}

// Pair returns the book's pair.
func (b *Book) Pair() string {
	return b.pair
}

// Seed replaces the book with a REST snapshot.
func (b *Book) Seed(snap model.OrderbookSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seedLocked(snap)
}

// Reseed is Seed unless the book already holds newer state. It reports
// whether the snapshot was taken.
func (b *Book) Reseed(snap model.OrderbookSnapshot) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if snap.Timestamp < b.updated {
		return false
	}
	b.seedLocked(snap)
	return true
}

func (b *Book) seedLocked(snap model.OrderbookSnapshot) {
	b.bids = make(map[string]model.Level, len(snap.Bids))
	b.asks = make(map[string]model.Level, len(snap.Asks))
	setLevels(b.bids, snap.Bids)
	setLevels(b.asks, snap.Asks)
	b.updated = snap.Timestamp
}

// Apply merges an update: each level overwrites its price, size zero removes it.
// Updates older than the current state are ignored; Apply reports whether it merged.
func (b *Book) Apply(update *model.L2Book) bool {
	if update == nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if update.Time != 0 && update.Time < b.updated {
		return false
	}
	setLevels(b.bids, update.Bids)
	setLevels(b.asks, update.Asks)
	if update.Time != 0 {
		b.updated = update.Time
	}
	return true
}

func setLevels(side map[string]model.Level, levels []model.Level) {
	for _, lvl := range levels {
		key := lvl.Price.String()
		if lvl.Size.IsZero() {
			delete(side, key)
			continue
		}
		side[key] = lvl
	}
}

// Bids returns up to n bids, best first. n <= 0 returns all.
func (b *Book) Bids(n int) []model.Level {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return sorted(b.bids, n, true)
}

// Asks returns up to n asks, best first. n <= 0 returns all.
func (b *Book) Asks(n int) []model.Level {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return sorted(b.asks, n, false)
}

func sorted(side map[string]model.Level, n int, desc bool) []model.Level {
	out := make([]model.Level, 0, len(side))
	for _, lvl := range side {
		out = append(out, lvl)
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].Price.GreaterThan(out[j].Price)
		}
		return out[i].Price.LessThan(out[j].Price)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Depth returns the number of bid and ask levels.
func (b *Book) Depth() (bids, asks int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.bids), len(b.asks)
}

// Updated returns the exchange timestamp (ms) of the newest applied state.
func (b *Book) Updated() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updated
}

// Top returns the best bid and ask. ok is false if either side is empty.
func (b *Book) Top() (bid, ask model.Level, ok bool) {
	bids, asks := b.Bids(1), b.Asks(1)
	if len(bids) == 0 || len(asks) == 0 {
		return model.Level{}, model.Level{}, false
	}
	return bids[0], asks[0], true
}

// Spread returns best ask minus best bid.
func (b *Book) Spread() (decimal.Decimal, bool) {
	bid, ask, ok := b.Top()
	if !ok {
		return decimal.Zero, false
	}
	return ask.Price.Sub(bid.Price), true
}

// Mid returns the midpoint of the best bid and ask.
func (b *Book) Mid() (decimal.Decimal, bool) {
	bid, ask, ok := b.Top()
	if !ok {
		return decimal.Zero, false
	}
	return bid.Price.Add(ask.Price).Div(two), true
}

// SpreadBps returns the spread in basis points of the mid.
func (b *Book) SpreadBps() (decimal.Decimal, bool) {
	bid, ask, ok := b.Top()
	if !ok {
		return decimal.Zero, false
	}
	mid := bid.Price.Add(ask.Price).Div(two)
	if !mid.IsPositive() {
		return decimal.Zero, false
	}
	return ask.Price.Sub(bid.Price).Div(mid).Mul(bpsPerUnit), true
}
