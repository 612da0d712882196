package api

import (
	"strings"

	"github.com/rickgao/hyperscope-stream/internal/model"
)

// ToSnapshot converts an OrderbookResponse to model.OrderbookSnapshot.
// pair is used when the response omits it.
func (o *OrderbookResponse) ToSnapshot(pair string) model.OrderbookSnapshot {
	if o.Pair != "" {
		pair = o.Pair
	}

	return model.OrderbookSnapshot{
		Pair:      strings.ToUpper(pair),
		Bids:      o.Bids,
		Asks:      o.Asks,
		SpreadBps: o.SpreadBps,
		SpreadUSD: o.SpreadUSD,
		MidPrice:  o.MidPrice,
		Timestamp: o.Timestamp,
	}
}
