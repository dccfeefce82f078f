package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"

	"github.com/JonMunkholm/ETL/internal/config"
	"github.com/JonMunkholm/ETL/internal/logging"
)

// UploadReport summarizes an UploadDir call.
type UploadReport struct {
	Uploaded []string          `json:"uploaded"`
	Failed   map[string]string `json:"failed,omitempty"` // file name -> error
}

// Uploader copies local files into an ObjectStore.
type Uploader struct {
	store ObjectStore
}

// NewUploader returns an Uploader writing to store.
func NewUploader(store ObjectStore) *Uploader {
	return &Uploader{store: store}
}

// UploadDir uploads every regular file directly inside dir to
// <prefix><file name>. A file that fails is logged and recorded in the
// report; the remaining files are still attempted. Only a dir that cannot
// be listed, or a canceled context, returns an error.
func (u *Uploader) UploadDir(ctx context.Context, dir, prefix string) (UploadReport, error) {
	report := UploadReport{Failed: map[string]string{}}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return report, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	prefix = config.JoinPrefix(prefix)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !entry.Type().IsRegular() {
			continue
		}

		name := entry.Name()
		key := prefix + name
		logger := logging.WithFields(ctx, "file", name, "key", key)

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			err = u.store.Put(ctx, key, data, contentTypeOf(name))
		}
		if err != nil {
			logger.Warn("upload failed", "error", err)
			report.Failed[name] = err.Error()
			continue
		}

		logger.Info("file uploaded", "bytes", len(data))
		report.Uploaded = append(report.Uploaded, name)
	}

	return report, nil
}

func contentTypeOf(name string) string {
	switch ext := filepath.Ext(name); ext {
	case ".csv":
		return ContentTypeCSV
	case ".json":
		return ContentTypeJSON
	case ".parquet":
		return ContentTypeParquet
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return ContentTypeBinary
	}
}
