package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rickgao/hyperscope-stream/internal/model"
)

// Depth limits accepted by the order book endpoint.
const (
	MinDepth = 1
	MaxDepth = 100
)

var ErrInvalidDepth = errors.New("depth must be between 1 and 100")

// GetOrderbook fetches an order book snapshot with up to depth levels per side.
func (c *Client) GetOrderbook(ctx context.Context, pair string, depth int) (model.OrderbookSnapshot, error) {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	if pair == "" {
		return model.OrderbookSnapshot{}, errors.New("pair is required")
	}
	if depth < MinDepth || depth > MaxDepth {
		return model.OrderbookSnapshot{}, fmt.Errorf("%w, got %d", ErrInvalidDepth, depth)
	}

	query := url.Values{}
	query.Set("depth", strconv.Itoa(depth))

	var resp OrderbookResponse
	if err := c.getJSON(ctx, "/api/orderbook/"+url.PathEscape(pair), query, &resp); err != nil {
		return model.OrderbookSnapshot{}, fmt.Errorf("get orderbook %s: %w", pair, err)
	}

	return resp.ToSnapshot(pair), nil
}

// GetHealth checks server liveness.
func (c *Client) GetHealth(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	if err := c.getJSON(ctx, "/health", nil, &resp); err != nil {
		return HealthResponse{}, fmt.Errorf("get health: %w", err)
	}
	return resp, nil
}
