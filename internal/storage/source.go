package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/JonMunkholm/ETL/internal/config"
	"github.com/JonMunkholm/ETL/internal/core"
	"github.com/JonMunkholm/ETL/internal/logging"
)

// Source reads raw entity files from a prefix of an ObjectStore.
//
// Structural failures (missing object, unreadable bytes, malformed file)
// are logged at Warn and yield an empty result, so a run always proceeds
// with whatever inputs are available.
type Source struct {
	store  ObjectStore
	prefix string
}

// NewSource returns a Source reading keys under prefix.
func NewSource(store ObjectStore, prefix string) *Source {
	return &Source{store: store, prefix: config.JoinPrefix(prefix)}
}

// Key returns the object key for a source file name.
func (s *Source) Key(name string) string {
	return s.prefix + name
}

// ReadTable reads and parses a delimited file. The result is empty when the
// object is unavailable or malformed.
func (s *Source) ReadTable(ctx context.Context, name string) core.RawTable {
	key := s.Key(name)
	data, err := s.store.Get(ctx, key)
	if err != nil {
		s.warn(ctx, name, key, "read failed", err)
		return core.RawTable{}
	}

	t, err := ParseCSV(data)
	if err != nil {
		s.warn(ctx, name, key, "parse failed", err)
		return core.RawTable{}
	}

	logging.WithFields(ctx, "entity", name, "key", key).Debug("table read",
		"columns", len(t.Columns),
		"rows", t.Len(),
	)
	return t
}

// ReadEvents reads the nested order feed. The result is empty when the
// object is unavailable or not valid JSON.
func (s *Source) ReadEvents(ctx context.Context, name string) []core.OrderRecord {
	key := s.Key(name)
	data, err := s.store.Get(ctx, key)
	if err != nil {
		s.warn(ctx, name, key, "read failed", err)
		return nil
	}

	data, err = io.ReadAll(NewTextReader(bytes.NewReader(data)))
	if err != nil {
		s.warn(ctx, name, key, "decode failed", err)
		return nil
	}
	if !json.Valid(data) {
		s.warn(ctx, name, key, "parse failed", errors.New("invalid JSON"))
		return nil
	}

	records := core.DecodeOrders(data)
	logging.WithFields(ctx, "entity", name, "key", key).Debug("events read", "records", len(records))
	return records
}

func (s *Source) warn(ctx context.Context, name, key, msg string, err error) {
	logging.WithFields(ctx, "entity", name, "key", key).Warn(msg, "error", err)
}
