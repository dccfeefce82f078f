// Package storage adapts object stores to the pipeline's Source and Sink.
//
// The raw side reads delimited entity files and the nested order feed from
// a raw prefix; the output side writes one Parquet object per entity under
// a transformed prefix. Both sides sit on ObjectStore, implemented by the
// local filesystem here and by S3 in the s3store subpackage.
package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by ObjectStore.Get for a missing key.
var ErrObjectNotFound = errors.New("object not found")

// Content types used for stored objects.
const (
	ContentTypeCSV     = "text/csv"
	ContentTypeJSON    = "application/json"
	ContentTypeParquet = "application/vnd.apache.parquet"
	ContentTypeBinary  = "application/octet-stream"
)

// ObjectStore is a flat key/value blob store with slash-separated keys.
type ObjectStore interface {
	// Get returns the object's bytes, or an error wrapping ErrObjectNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
}
