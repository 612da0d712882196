package feed

import (
	"encoding/json"
	"fmt"

	"github.com/rickgao/hyperscope-stream/internal/model"
)

// Event is a decoded frame payload. Exactly one payload field is set, chosen by Kind.
type Event struct {
	Channel Channel
	Kind    Kind

	L2Book       *model.L2Book
	Trades       []model.Trade // trades and large-trades
	BBO          *model.BBO
	Candle       *model.Candle
	Mids         model.Mids
	ActiveAsset  *model.AssetContext
	Liquidations []model.Liquidation
	Raw          json.RawMessage // KindRaw only
}

// Decode turns the opaque payload of a channel into a typed Event.
// Frames of unknown feeds decode as KindRaw with the payload untouched.
func Decode(channel string, data json.RawMessage) (Event, error) {
	c, err := Parse(channel)
	if err != nil {
		return Event{}, err
	}
	ev := Event{Channel: c, Kind: c.Kind}

	switch c.Kind {
	case KindL2Book:
		ev.L2Book = new(model.L2Book)
		err = json.Unmarshal(data, ev.L2Book)
		if err == nil && ev.L2Book.Coin == "" {
			ev.L2Book.Coin = c.Pair
		}

	case KindTrades, KindLargeTrades:
		ev.Trades, err = decodeList[model.Trade](data)

	case KindBBO:
		ev.BBO = new(model.BBO)
		err = json.Unmarshal(data, ev.BBO)
		if err == nil && ev.BBO.Coin == "" {
			ev.BBO.Coin = c.Pair
		}

	case KindCandle:
		ev.Candle = new(model.Candle)
		err = json.Unmarshal(data, ev.Candle)

	case KindAllMids:
		err = json.Unmarshal(data, &ev.Mids)

	case KindActiveAsset:
		ev.ActiveAsset = new(model.AssetContext)
		err = json.Unmarshal(data, ev.ActiveAsset)
		if err == nil && ev.ActiveAsset.Coin == "" {
			ev.ActiveAsset.Coin = c.Pair
		}

	case KindLiquidations:
		ev.Liquidations, err = decodeList[model.Liquidation](data)

	default:
		ev.Raw = data
	}

	if err != nil {
		return Event{}, fmt.Errorf("decode %s: %w", channel, err)
	}
	return ev, nil
}

// decodeList accepts a JSON array or a single object.
func decodeList[T any](data json.RawMessage) ([]T, error) {
	var list []T
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}
