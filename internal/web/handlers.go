package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/JonMunkholm/ETL/internal/core"
	"github.com/JonMunkholm/ETL/internal/pipeline"
)

// maxTriggerBody bounds the POST /api/runs body.
const maxTriggerBody = 1 << 20

// APITrigger is the optional body of POST /api/runs.
type APITrigger struct {
	Params map[string]any `json:"params"`
}

// EntityResponse describes one registered entity.
type EntityResponse struct {
	Key       string           `json:"key"`
	Label     string           `json:"label"`
	Source    string           `json:"source"`
	Projected bool             `json:"projected"`
	Columns   []ColumnResponse `json:"columns"`
}

// ColumnResponse describes one declared column.
type ColumnResponse struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	NonNegative bool   `json:"non_negative,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string                 `json:"status"`
	Runs   pipeline.LimiterStatus `json:"runs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Runs: s.limiter.Status()})
}

func (s *Server) handleActiveRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.limiter.Status())
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	out := make([]EntityResponse, 0, len(defs))
	for _, def := range defs {
		cols := make([]ColumnResponse, len(def.Columns))
		for i, c := range def.Columns {
			cols[i] = ColumnResponse{Name: c.Name, Type: c.Type.String(), NonNegative: c.NonNegative}
		}
		out = append(out, EntityResponse{
			Key:       def.Info.Key,
			Label:     def.Info.Label,
			Source:    def.Info.Source,
			Projected: def.Project,
			Columns:   cols,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleTriggerRun runs one batch under the run limiter and returns the
// run manifest. The request waits for a slot up to RUN_MAX_WAIT_TIME.
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	var body APITrigger
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTriggerBody))
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, fmt.Errorf("%w: %v", errBadTrigger, err), http.StatusBadRequest)
		return
	}

	trig := pipeline.Trigger{Source: "api", RunID: uuid.NewString(), Params: body.Params}

	ctx := r.Context()
	if s.cfg.Run.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Run.Timeout)
		defer cancel()
	}

	var (
		res    pipeline.Result
		runErr error
	)
	err := s.limiter.Do(ctx, trig.RunID, func(ctx context.Context) {
		res, runErr = s.runner.Run(ctx, trig)
	})
	if err == nil {
		err = runErr
	}
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, res)
}
