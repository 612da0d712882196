package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidLevel is returned for a price level that has no price or size.
var ErrInvalidLevel = errors.New("invalid price level")

// UnmarshalJSON accepts the array and both object forms of a level.
func (l *Level) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ErrInvalidLevel
	}

	switch b[0] {
	case '[':
		var pair []decimal.Decimal
		if err := json.Unmarshal(b, &pair); err != nil {
			return fmt.Errorf("level: %w", err)
		}
		if len(pair) < 2 {
			return fmt.Errorf("level %s: %w", b, ErrInvalidLevel)
		}
		*l = Level{Price: pair[0], Size: pair[1]}
		return nil

	case '{':
		var obj struct {
			Px    *decimal.Decimal `json:"px"`
			Sz    *decimal.Decimal `json:"sz"`
			N     int              `json:"n"`
			Price *decimal.Decimal `json:"price"`
			Size  *decimal.Decimal `json:"size"`
			Count int              `json:"count"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return fmt.Errorf("level: %w", err)
		}
		switch {
		case obj.Px != nil && obj.Sz != nil:
			*l = Level{Price: *obj.Px, Size: *obj.Sz, Count: obj.N}
		case obj.Price != nil && obj.Size != nil:
			*l = Level{Price: *obj.Price, Size: *obj.Size, Count: obj.Count}
		default:
			return fmt.Errorf("level %s: %w", b, ErrInvalidLevel)
		}
		return nil
	}

	return fmt.Errorf("level %s: %w", b, ErrInvalidLevel)
}

// UnmarshalJSON accepts {"coin","time","levels":[bids, asks]} and {"bids","asks"}.
func (book *L2Book) UnmarshalJSON(b []byte) error {
	var raw struct {
		Coin   string    `json:"coin"`
		Time   int64     `json:"time"`
		Levels [][]Level `json:"levels"`
		Bids   []Level   `json:"bids"`
		Asks   []Level   `json:"asks"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*book = L2Book{Coin: raw.Coin, Time: raw.Time, Bids: raw.Bids, Asks: raw.Asks}
	if len(raw.Levels) > 0 {
		book.Bids = raw.Levels[0]
		book.Asks = nil
		if len(raw.Levels) > 1 {
			book.Asks = raw.Levels[1]
		}
	}
	return nil
}

// UnmarshalJSON accepts {"coin","time","bbo":[bid, ask]} where either side may be null.
func (bbo *BBO) UnmarshalJSON(b []byte) error {
	var raw struct {
		Coin string   `json:"coin"`
		Time int64    `json:"time"`
		BBO  []*Level `json:"bbo"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*bbo = BBO{Coin: raw.Coin, Time: raw.Time}
	if len(raw.BBO) > 0 {
		bbo.Bid = raw.BBO[0]
	}
	if len(raw.BBO) > 1 {
		bbo.Ask = raw.BBO[1]
	}
	return nil
}

// UnmarshalJSON accepts {"mids":{coin:px}} and a bare {coin:px} object.
func (m *Mids) UnmarshalJSON(b []byte) error {
	var wrapped struct {
		Mids map[string]decimal.Decimal `json:"mids"`
	}
	if err := json.Unmarshal(b, &wrapped); err == nil && wrapped.Mids != nil {
		*m = wrapped.Mids
		return nil
	}

	var bare map[string]decimal.Decimal
	if err := json.Unmarshal(b, &bare); err != nil {
		return err
	}
	*m = bare
	return nil
}

// UnmarshalJSON accepts {"coin","ctx":{...}}.
func (a *AssetContext) UnmarshalJSON(b []byte) error {
	var raw struct {
		Coin string `json:"coin"`
		Ctx  struct {
			Funding      decimal.Decimal `json:"funding"`
			OpenInterest decimal.Decimal `json:"openInterest"`
			MarkPx       decimal.Decimal `json:"markPx"`
			OraclePx     decimal.Decimal `json:"oraclePx"`
			MidPx        decimal.Decimal `json:"midPx"`
			DayNtlVlm    decimal.Decimal `json:"dayNtlVlm"`
			PrevDayPx    decimal.Decimal `json:"prevDayPx"`
		} `json:"ctx"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*a = AssetContext{
		Coin:              raw.Coin,
		Funding:           raw.Ctx.Funding,
		OpenInterest:      raw.Ctx.OpenInterest,
		MarkPrice:         raw.Ctx.MarkPx,
		OraclePrice:       raw.Ctx.OraclePx,
		MidPrice:          raw.Ctx.MidPx,
		DayNotionalVolume: raw.Ctx.DayNtlVlm,
		PrevDayPrice:      raw.Ctx.PrevDayPx,
	}
	return nil
}
