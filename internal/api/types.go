package api

import (
	"github.com/shopspring/decimal"

	"github.com/rickgao/hyperscope-stream/internal/model"
)

// OrderbookResponse from GET /api/orderbook/{pair}
type OrderbookResponse struct {
	Pair        string          `json:"pair"`
	Bids        []model.Level   `json:"bids"`
	Asks        []model.Level   `json:"asks"`
	SpreadBps   decimal.Decimal `json:"spread_bps"`
	SpreadUSD   decimal.Decimal `json:"spread_usd"`
	MidPrice    decimal.Decimal `json:"mid_price"`
	Timestamp   int64           `json:"timestamp"` // ms
	BidDepthUSD decimal.Decimal `json:"bid_depth_usd"`
	AskDepthUSD decimal.Decimal `json:"ask_depth_usd"`
}

// HealthResponse from GET /health
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// OK reports whether the server declared itself healthy.
func (h HealthResponse) OK() bool {
	return h.Status == "ok"
}
