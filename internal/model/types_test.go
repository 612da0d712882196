package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLevel_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Level
	}{
		{"array numbers", `[100, 1.5]`, Level{Price: dec("100"), Size: dec("1.5")}},
		{"array strings", `["100.25", "0.01"]`, Level{Price: dec("100.25"), Size: dec("0.01")}},
		{"exchange object", `{"px":"64000.5","sz":"2","n":3}`, Level{Price: dec("64000.5"), Size: dec("2"), Count: 3}},
		{"api object", `{"price":101,"size":2,"count":7,"cumulative_size":9}`, Level{Price: dec("101"), Size: dec("2"), Count: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Level
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !got.Price.Equal(tt.want.Price) {
				t.Errorf("Price = %s, want %s", got.Price, tt.want.Price)
			}
			if !got.Size.Equal(tt.want.Size) {
				t.Errorf("Size = %s, want %s", got.Size, tt.want.Size)
			}
			if got.Count != tt.want.Count {
				t.Errorf("Count = %d, want %d", got.Count, tt.want.Count)
			}
		})
	}
}

func TestLevel_UnmarshalJSONInvalid(t *testing.T) {
	inputs := []string{`[100]`, `[]`, `{"px":"1"}`, `{}`, `"100"`, `7`, `null`}

	for _, input := range inputs {
		var l Level
		err := json.Unmarshal([]byte(input), &l)
		if err == nil {
			t.Errorf("Unmarshal(%s) should fail", input)
			continue
		}
		if !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Unmarshal(%s) error = %v, want ErrInvalidLevel", input, err)
		}
	}
}

func TestL2Book_UnmarshalJSON(t *testing.T) {
	t.Run("levels form", func(t *testing.T) {
		input := `{"coin":"BTC","time":1700000000000,"levels":[[{"px":"100","sz":"1","n":1}],[{"px":"101","sz":"2","n":1},{"px":"102","sz":"3","n":2}]]}`

		var book L2Book
		if err := json.Unmarshal([]byte(input), &book); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if book.Coin != "BTC" || book.Time != 1700000000000 {
			t.Errorf("Coin/Time = %q/%d", book.Coin, book.Time)
		}
		if len(book.Bids) != 1 || len(book.Asks) != 2 {
			t.Fatalf("len(Bids)/len(Asks) = %d/%d, want 1/2", len(book.Bids), len(book.Asks))
		}
		if !book.Asks[1].Price.Equal(dec("102")) {
			t.Errorf("Asks[1].Price = %s, want 102", book.Asks[1].Price)
		}
	})

	t.Run("bids asks form", func(t *testing.T) {
		var book L2Book
		if err := json.Unmarshal([]byte(`{"bids":[[100,1]],"asks":[[101,2]]}`), &book); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if len(book.Bids) != 1 || len(book.Asks) != 1 {
			t.Fatalf("len(Bids)/len(Asks) = %d/%d, want 1/1", len(book.Bids), len(book.Asks))
		}
		if !book.Bids[0].Price.Equal(dec("100")) || !book.Asks[0].Size.Equal(dec("2")) {
			t.Errorf("book = %+v", book)
		}
	})
}

func TestBBO_UnmarshalJSON(t *testing.T) {
	var bbo BBO
	input := `{"coin":"ETH","time":5,"bbo":[{"px":"3000","sz":"4","n":2},null]}`
	if err := json.Unmarshal([]byte(input), &bbo); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if bbo.Coin != "ETH" {
		t.Errorf("Coin = %q, want ETH", bbo.Coin)
	}
	if bbo.Bid == nil || !bbo.Bid.Price.Equal(dec("3000")) {
		t.Errorf("Bid = %+v, want price 3000", bbo.Bid)
	}
	if bbo.Ask != nil {
		t.Errorf("Ask = %+v, want nil", bbo.Ask)
	}
}

func TestMids_UnmarshalJSON(t *testing.T) {
	for _, input := range []string{
		`{"mids":{"BTC":"64000.5","ETH":"3000"}}`,
		`{"BTC":"64000.5","ETH":3000}`,
	} {
		var mids Mids
		if err := json.Unmarshal([]byte(input), &mids); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", input, err)
		}
		if len(mids) != 2 {
			t.Errorf("len(mids) = %d, want 2", len(mids))
		}
		if !mids["BTC"].Equal(dec("64000.5")) {
			t.Errorf("mids[BTC] = %s, want 64000.5", mids["BTC"])
		}
	}
}

func TestAssetContext_UnmarshalJSON(t *testing.T) {
	input := `{"coin":"BTC","ctx":{"funding":"0.0000125","openInterest":"1234.5","markPx":"64001","oraclePx":"64000","midPx":null,"dayNtlVlm":"1000000","prevDayPx":"63000"}}`

	var ctx AssetContext
	if err := json.Unmarshal([]byte(input), &ctx); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if ctx.Coin != "BTC" {
		t.Errorf("Coin = %q, want BTC", ctx.Coin)
	}
	if !ctx.Funding.Equal(dec("0.0000125")) {
		t.Errorf("Funding = %s", ctx.Funding)
	}
	if !ctx.MarkPrice.Equal(dec("64001")) {
		t.Errorf("MarkPrice = %s", ctx.MarkPrice)
	}
	if !ctx.MidPrice.IsZero() {
		t.Errorf("MidPrice = %s, want 0", ctx.MidPrice)
	}
}

func TestTrade_Notional(t *testing.T) {
	var trades []Trade
	input := `[{"coin":"BTC","side":"B","px":"64000","sz":"0.5","time":1,"hash":"0xabc","tid":42}]`
	if err := json.Unmarshal([]byte(input), &trades); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if len(trades) != 1 {
		t.Fatalf("len(trades) = %d, want 1", len(trades))
	}
	tr := trades[0]
	if tr.Side != SideBuy {
		t.Errorf("Side = %q, want %q", tr.Side, SideBuy)
	}
	if !tr.Notional().Equal(dec("32000")) {
		t.Errorf("Notional() = %s, want 32000", tr.Notional())
	}
}
