package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Order Book Types
// -----------------------------------------------------------------------------

// Level is a single price level of an order book.
// JSON input may be [price, size], {"px","sz","n"} or {"price","size","count"}.
type Level struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
	Count int             `json:"count"` // Number of orders, 0 when unknown
}

// L2Book is an order book update for one coin.
// Bids are sorted best (highest) first, asks best (lowest) first.
type L2Book struct {
	Coin string  // Coin or pair (e.g. "BTC")
	Time int64   // Exchange timestamp (ms)
	Bids []Level // Buy side
	Asks []Level // Sell side
}

// BBO is the best bid and offer for one coin. Either side may be nil on an empty book.
type BBO struct {
	Coin string
	Time int64
	Bid  *Level
	Ask  *Level
}

// OrderbookSnapshot is the REST order book used to seed a live book.
type OrderbookSnapshot struct {
	Pair      string          `json:"pair"`
	Bids      []Level         `json:"bids"`
	Asks      []Level         `json:"asks"`
	SpreadBps decimal.Decimal `json:"spread_bps"`
	SpreadUSD decimal.Decimal `json:"spread_usd"`
	MidPrice  decimal.Decimal `json:"mid_price"`
	Timestamp int64           `json:"timestamp"` // ms
}

// -----------------------------------------------------------------------------
// Trade Types
// -----------------------------------------------------------------------------

// Side is the aggressor side of a trade.
type Side string

const (
	SideBuy  Side = "B" // Taker bought (lifted the ask)
	SideSell Side = "A" // Taker sold (hit the bid)
)

// Trade is a single trade print.
type Trade struct {
	Coin  string          `json:"coin"`
	Side  Side            `json:"side"`
	Price decimal.Decimal `json:"px"`
	Size  decimal.Decimal `json:"sz"`
	Time  int64           `json:"time"`
	Hash  string          `json:"hash,omitempty"`
	TID   int64           `json:"tid,omitempty"`
}

// Notional returns price * size.
func (t Trade) Notional() decimal.Decimal {
	return t.Price.Mul(t.Size)
}

// Liquidation is a forced position close.
type Liquidation struct {
	Coin  string          `json:"coin"`
	Side  Side            `json:"side"`
	Price decimal.Decimal `json:"px"`
	Size  decimal.Decimal `json:"sz"`
	Time  int64           `json:"time"`
	User  string          `json:"user,omitempty"`
}

// -----------------------------------------------------------------------------
// Price Types
// -----------------------------------------------------------------------------

// Candle is an OHLCV bar.
type Candle struct {
	OpenTime  int64           `json:"t"`
	CloseTime int64           `json:"T"`
	Coin      string          `json:"s"`
	Interval  string          `json:"i"`
	Open      decimal.Decimal `json:"o"`
	Close     decimal.Decimal `json:"c"`
	High      decimal.Decimal `json:"h"`
	Low       decimal.Decimal `json:"l"`
	Volume    decimal.Decimal `json:"v"`
	Trades    int             `json:"n"`
}

// Mids maps coin to mid price.
type Mids map[string]decimal.Decimal

// AssetContext is the live context of one perpetual.
type AssetContext struct {
	Coin              string
	Funding           decimal.Decimal
	OpenInterest      decimal.Decimal
	MarkPrice         decimal.Decimal
	OraclePrice       decimal.Decimal
	MidPrice          decimal.Decimal
	DayNotionalVolume decimal.Decimal
	PrevDayPrice      decimal.Decimal
}

// -----------------------------------------------------------------------------
// Stream Types
// -----------------------------------------------------------------------------

// Frame is one inbound stream payload as received.
type Frame struct {
	Channel    string
	Payload    json.RawMessage
	ReceivedAt time.Time
}
