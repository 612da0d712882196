package stream

import (
	"strings"
)

// Feed names used as the first segment of a channel.
const (
	FeedL2Book       = "l2book"
	FeedTrades       = "trades"
	FeedBBO          = "bbo"
	FeedCandle       = "candle"
	FeedActiveAsset  = "active-asset"
	FeedAllMids      = "all-mids"
	FeedLargeTrades  = "large-trades"
	FeedLiquidations = "liquidations"
)

func pairChannel(feed, pair string) string {
	return feed + "." + strings.ToUpper(strings.TrimSpace(pair))
}

// L2BookChannel returns the order-book delta channel for pair, e.g. "l2book.BTC-PERP".
func L2BookChannel(pair string) string { return pairChannel(FeedL2Book, pair) }

// TradesChannel returns the trade-print channel for pair.
func TradesChannel(pair string) string { return pairChannel(FeedTrades, pair) }

// BBOChannel returns the best bid/offer channel for pair.
func BBOChannel(pair string) string { return pairChannel(FeedBBO, pair) }

// ActiveAssetChannel returns the asset context channel for pair.
func ActiveAssetChannel(pair string) string { return pairChannel(FeedActiveAsset, pair) }

// CandleChannel returns the candle channel for pair and interval, e.g. "candle.ETH.1m".
func CandleChannel(pair, interval string) string {
	return pairChannel(FeedCandle, pair) + "." + strings.TrimSpace(interval)
}

// AllMidsChannel returns the global mid-price channel.
func AllMidsChannel() string { return FeedAllMids }

// LargeTradesChannel returns the global large-trade channel.
func LargeTradesChannel() string { return FeedLargeTrades }

// LiquidationsChannel returns the global liquidation channel.
func LiquidationsChannel() string { return FeedLiquidations }

// SubscribeL2Book subscribes h to L2BookChannel(pair).
func (m *Mux) SubscribeL2Book(pair string, h Handler) *Subscription {
	return m.Subscribe(L2BookChannel(pair), h)
}

// SubscribeTrades subscribes h to TradesChannel(pair).
func (m *Mux) SubscribeTrades(pair string, h Handler) *Subscription {
	return m.Subscribe(TradesChannel(pair), h)
}

// SubscribeBBO subscribes h to BBOChannel(pair).
func (m *Mux) SubscribeBBO(pair string, h Handler) *Subscription {
	return m.Subscribe(BBOChannel(pair), h)
}

// SubscribeActiveAsset subscribes h to ActiveAssetChannel(pair).
func (m *Mux) SubscribeActiveAsset(pair string, h Handler) *Subscription {
	return m.Subscribe(ActiveAssetChannel(pair), h)
}

// SubscribeCandles subscribes h to CandleChannel(pair, interval).
func (m *Mux) SubscribeCandles(pair, interval string, h Handler) *Subscription {
	return m.Subscribe(CandleChannel(pair, interval), h)
}

// SubscribeAllMids subscribes h to the global mid-price channel.
func (m *Mux) SubscribeAllMids(h Handler) *Subscription {
	return m.Subscribe(AllMidsChannel(), h)
}

// SubscribeLargeTrades subscribes h to the global large-trade channel.
func (m *Mux) SubscribeLargeTrades(h Handler) *Subscription {
	return m.Subscribe(LargeTradesChannel(), h)
}

// SubscribeLiquidations subscribes h to the global liquidation channel.
func (m *Mux) SubscribeLiquidations(h Handler) *Subscription {
	return m.Subscribe(LiquidationsChannel(), h)
}
