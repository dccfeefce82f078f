package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/JonMunkholm/ETL/internal/config"
	"github.com/JonMunkholm/ETL/internal/core"
	"github.com/JonMunkholm/ETL/internal/logging"
	"github.com/JonMunkholm/ETL/internal/parquetio"
)

// Sink writes canonical tables as Parquet objects under a prefix.
type Sink struct {
	store  ObjectStore
	prefix string
	perRun bool
}

// NewSink returns a Sink writing <prefix><table>.parquet. With perRun set,
// objects go under <prefix><run id>/ instead, taking the run id from the
// context.
func NewSink(store ObjectStore, prefix string, perRun bool) *Sink {
	return &Sink{store: store, prefix: config.JoinPrefix(prefix), perRun: perRun}
}

// Key returns the object key a table is written to in ctx's run.
func (s *Sink) Key(ctx context.Context, table string) string {
	prefix := s.prefix
	if runID := logging.RunID(ctx); s.perRun && runID != "" {
		prefix = config.JoinPrefix(prefix, runID)
	}
	return prefix + table + parquetio.Extension
}

// WriteTable encodes t and stores it, replacing any previous object.
func (s *Sink) WriteTable(ctx context.Context, t core.Table) error {
	var buf bytes.Buffer
	if err := parquetio.Encode(&buf, t); err != nil {
		return fmt.Errorf("encode %s: %w", t.Name, err)
	}

	key := s.Key(ctx, t.Name)
	if err := s.store.Put(ctx, key, buf.Bytes(), ContentTypeParquet); err != nil {
		return fmt.Errorf("write %s: %w", t.Name, err)
	}

	logging.WithFields(ctx, "entity", t.Name, "key", key).Info("table written",
		"rows", t.Len(),
		"bytes", buf.Len(),
	)
	return nil
}
