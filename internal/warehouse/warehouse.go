// Package warehouse prepares and bulk-loads the analytical store.
//
// Three steps run against the warehouse, in order:
//
//  1. ExecFile creates the staging tables from a DDL script
//  2. LoadAll issues one COPY per entity from the transformed Parquet objects
//  3. ExecScript builds the final tables and views
//
// The connection is a pgx pool; Redshift speaks the Postgres wire protocol.
package warehouse

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/ETL/internal/config"
	"github.com/JonMunkholm/ETL/internal/logging"
)

// DB begins transactions. *pgxpool.Pool satisfies it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Open connects a pool using cfg and verifies it with a ping.
func Open(ctx context.Context, cfg config.WarehouseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse warehouse URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.StatementTimeout > 0 {
		poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect warehouse: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}
	return pool, nil
}

// Warehouse runs scripts and loads against a DB.
type Warehouse struct {
	db DB
}

// New returns a Warehouse over db.
func New(db DB) *Warehouse {
	return &Warehouse{db: db}
}

// ExecFile runs every statement of the SQL file at path in one transaction.
// The first failing statement rolls the whole file back.
func (w *Warehouse) ExecFile(ctx context.Context, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	stmts := SplitStatements(string(sql))

	logger := logging.WithFields(ctx, "file", path)
	start := time.Now()

	err = w.inTx(ctx, func(tx pgx.Tx) error {
		for i, stmt := range stmts {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("%s statement %d: %w", path, i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("sql file failed, rolled back", "error", err)
		return err
	}

	logger.Info("sql file executed",
		"statements", len(stmts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// ExecScript sends the SQL file at path as a single request and commits.
func (w *Warehouse) ExecScript(ctx context.Context, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if strings.TrimSpace(string(sql)) == "" {
		return fmt.Errorf("%s: no statements", path)
	}

	err = w.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, string(sql))
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	logging.WithFields(ctx, "file", path).Info("sql script executed")
	return nil
}

// inTx runs fn in a transaction, committing on success and rolling back
// on failure.
func (w *Warehouse) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SplitStatements splits a SQL script on semicolons, dropping empty
// statements. Semicolons inside quotes or comments do not split.
func SplitStatements(sql string) []string {
	var (
		stmts []string
		cur   strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" && !onlyComments(s) {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'' || c == '"':
			end := closingQuote(sql, i)
			cur.WriteString(sql[i:end])
			i = end - 1
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				end = len(sql) - i
			}
			cur.WriteString(sql[i : i+end])
			i += end - 1
		case c == ';':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return stmts
}

// closingQuote returns the index just past the quoted run starting at i.
// A doubled quote character is an escaped quote.
func closingQuote(sql string, i int) int {
	q := sql[i]
	for j := i + 1; j < len(sql); j++ {
		if sql[j] != q {
			continue
		}
		if j+1 < len(sql) && sql[j+1] == q {
			j++
			continue
		}
		return j + 1
	}
	return len(sql)
}

func onlyComments(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}

// quoteIdentifier safely quotes a SQL identifier to prevent injection.
// Doubles any embedded double quotes and wraps in double quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral quotes a SQL string literal, doubling embedded single quotes.
func quoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}
