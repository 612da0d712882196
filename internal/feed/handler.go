package feed

import (
	"encoding/json"
	"log/slog"

	"github.com/rickgao/hyperscope-stream/internal/stream"
)

// Handler adapts fn to a stream.Handler for channel: every frame is decoded
// before fn sees it. Frames that fail to decode are logged and skipped.
func Handler(channel string, fn func(Event), logger *slog.Logger) stream.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return stream.HandlerFunc(func(data json.RawMessage) {
		ev, err := Decode(channel, data)
		if err != nil {
			logger.Warn("dropping undecodable frame", "channel", channel, "error", err)
			return
		}
		fn(ev)
	})
}

// BookHandler returns a stream.Handler that merges l2book frames into book.
func BookHandler(book *Book, logger *slog.Logger) stream.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	channel := stream.L2BookChannel(book.Pair())
	return Handler(channel, func(ev Event) {
		if !book.Apply(ev.L2Book) {
			logger.Debug("ignoring stale book update", "pair", book.Pair())
		}
	}, logger)
}
