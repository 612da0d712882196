package recorder

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/hyperscope-stream/internal/model"
)

// copier is the subset of *pgxpool.Pool used by PGSink.
type copier interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

var frameColumns = []string{"channel", "payload", "received_at"}

// PGSink writes frames to a PostgreSQL table with COPY.
type PGSink struct {
	db    copier
	table pgx.Identifier
}

// NewPGSink creates a sink for table, which may be schema-qualified.
func NewPGSink(db copier, table string) *PGSink {
	return &PGSink{db: db, table: pgx.Identifier(strings.SplitN(table, ".", 2))}
}

// Write copies frames into the table.
func (s *PGSink) Write(ctx context.Context, frames []model.Frame) (int, error) {
	n, err := s.db.CopyFrom(ctx, s.table, frameColumns, pgx.CopyFromSlice(len(frames), func(i int) ([]any, error) {
		f := frames[i]
		payload := f.Payload
		if len(payload) == 0 {
			payload = []byte("null")
		}
		return []any{f.Channel, string(payload), f.ReceivedAt}, nil
	}))
	if err != nil {
		return int(n), fmt.Errorf("copy into %s: %w", s.table.Sanitize(), err)
	}
	return int(n), nil
}
