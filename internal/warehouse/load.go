package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/ETL/internal/logging"
	"github.com/JonMunkholm/ETL/internal/parquetio"
)

// LoadSource locates the transformed objects and the role used to read them.
type LoadSource struct {
	Bucket  string
	Prefix  string // transformed prefix, with trailing slash
	IAMRole string
}

// URI returns the S3 URI of table's Parquet object.
func (s LoadSource) URI(table string) string {
	return "s3://" + s.Bucket + "/" + s.Prefix + table + parquetio.Extension
}

// LoadResult is the outcome of loading one table.
type LoadResult struct {
	Table    string        `json:"table"`
	Source   string        `json:"source"`
	Loaded   bool          `json:"loaded"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// CopyStatement builds the bulk-load command for one table.
func CopyStatement(table string, src LoadSource) string {
	return fmt.Sprintf("COPY %s FROM %s IAM_ROLE %s FORMAT AS PARQUET",
		quoteIdentifier(table),
		quoteLiteral(src.URI(table)),
		quoteLiteral(src.IAMRole),
	)
}

// LoadAll copies each table from src, each in its own transaction. A failed
// table is rolled back and logged; the remaining tables still load.
func (w *Warehouse) LoadAll(ctx context.Context, src LoadSource, tables []string) []LoadResult {
	results := make([]LoadResult, 0, len(tables))
	for _, table := range tables {
		res := LoadResult{Table: table, Source: src.URI(table)}
		logger := logging.WithFields(ctx, "table", table, "source", res.Source)
		start := time.Now()

		err := w.inTx(ctx, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, CopyStatement(table, src))
			return err
		})
		res.Duration = time.Since(start)

		if err != nil {
			res.Error = err.Error()
			logger.Error("table load failed", "error", err)
		} else {
			res.Loaded = true
			logger.Info("table loaded", "duration_ms", res.Duration.Milliseconds())
		}
		results = append(results, res)
	}
	return results
}
