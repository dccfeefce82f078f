// Package pipeline sequences one batch run: extract raw inputs, transform
// them into the canonical tables and write each table to the sink.
//
// The driver is the only component that touches a Source or a Sink.
// Structural input failures surface as empty tables, and a sink failure is
// confined to the entity it hit, so a run reports per-entity outcomes
// instead of failing as a whole.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/ETL/internal/core"
	_ "github.com/JonMunkholm/ETL/internal/core/tables" // registers the retail entities
	"github.com/JonMunkholm/ETL/internal/logging"
)

// Run statuses.
const (
	StatusSuccess  = "success"
	StatusCanceled = "canceled"
)

// Source provides the raw inputs of a run. Implementations return an empty
// result for an absent or malformed input.
type Source interface {
	ReadTable(ctx context.Context, name string) core.RawTable
	ReadEvents(ctx context.Context, name string) []core.OrderRecord
}

// Sink persists canonical tables.
type Sink interface {
	WriteTable(ctx context.Context, t core.Table) error
}

// Recorder observes run outcomes, typically to export metrics.
type Recorder interface {
	RunFinished(status string, d time.Duration)
	TableWritten(entity string, rows int)
	EntityFailed(entity string)
}

// Trigger is what started a run. Params are opaque to the pipeline and
// only logged.
type Trigger struct {
	Source string         `json:"source"`
	RunID  string         `json:"run_id,omitempty"` // generated when empty
	Params map[string]any `json:"params,omitempty"`
}

// EntityStatus is the outcome of one entity within a run.
type EntityStatus struct {
	Rows    int    `json:"rows"`
	Written bool   `json:"written"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Result is the manifest of a run.
type Result struct {
	Status   string                  `json:"status"`
	RunID    string                  `json:"run_id"`
	Tables   []string                `json:"tables"` // written entities, in output order
	Entities map[string]EntityStatus `json:"entities"`
	Started  time.Time               `json:"started"`
	Duration time.Duration           `json:"duration_ns"`
}

// Driver runs batches from one Source into one Sink.
type Driver struct {
	src      Source
	sink     Sink
	recorder Recorder
}

// Option configures a Driver.
type Option func(*Driver)

// WithRecorder reports run outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(d *Driver) { d.recorder = r }
}

// NewDriver returns a Driver reading from src and writing to sink.
func NewDriver(src Source, sink Sink, opts ...Option) *Driver {
	d := &Driver{src: src, sink: sink, recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes one full batch.
//
// Every registered entity gets an entry in Result.Entities. Empty tables
// are not written. The returned error is non-nil only when ctx ended before
// the run completed; panics from the transform are not recovered.
func (d *Driver) Run(ctx context.Context, trig Trigger) (Result, error) {
	runID := trig.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	res := Result{
		Status:   StatusSuccess,
		RunID:    runID,
		Tables:   []string{},
		Entities: make(map[string]EntityStatus),
		Started:  time.Now(),
	}
	logger.Info("run started", "trigger", trig.Source, "params", trig.Params)

	for _, t := range Transform(Extract(ctx, d.src)) {
		if err := ctx.Err(); err != nil {
			return d.finish(ctx, res, StatusCanceled), fmt.Errorf("run %s: %w", runID, err)
		}

		status := EntityStatus{Rows: t.Len()}
		if !t.Empty() {
			if err := d.sink.WriteTable(ctx, t); err != nil {
				msg := core.MapError(err)
				status.Error = err.Error()
				status.Code = msg.Code
				logging.WithFields(ctx, "entity", t.Name).Error("table write failed",
					"error", err,
					"code", msg.Code,
				)
				d.recorder.EntityFailed(t.Name)
			} else {
				status.Written = true
				res.Tables = append(res.Tables, t.Name)
				d.recorder.TableWritten(t.Name, t.Len())
			}
		} else {
			logging.WithFields(ctx, "entity", t.Name).Info("table empty, not written")
		}
		res.Entities[t.Name] = status
	}

	return d.finish(ctx, res, StatusSuccess), nil
}

func (d *Driver) finish(ctx context.Context, res Result, status string) Result {
	res.Status = status
	res.Duration = time.Since(res.Started)
	d.recorder.RunFinished(status, res.Duration)

	logging.FromContext(ctx).Info("run finished",
		"status", status,
		"tables", res.Tables,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res
}

type nopRecorder struct{}

func (nopRecorder) RunFinished(string, time.Duration) {}
func (nopRecorder) TableWritten(string, int) {}
func (nopRecorder) EntityFailed(string) {}
