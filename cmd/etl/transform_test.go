package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/ETL/internal/pipeline"
)

func TestWriteManifest(t *testing.T) {
	res := pipeline.Result{
		Status:  pipeline.StatusSuccess,
		RunID:   "run-1",
		Tables:  []string{"employees", "orders"},
		Started: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Entities: map[string]pipeline.EntityStatus{
			"employees": {Rows: 3, Written: true},
			"stores":    {Rows: 2, Error: "write stores: boom", Code: "STO003"},
		},
		Duration: 1500 * time.Millisecond,
	}

	path := filepath.Join(t.TempDir(), "manifest.yaml")
	if err := writeManifest(path, res); err != nil {
		t.Fatalf("writeManifest: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got manifest
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", got.RunID)
	}
	if got.Started != "2024-03-01T12:00:00Z" {
		t.Errorf("Started = %q, want 2024-03-01T12:00:00Z", got.Started)
	}
	if got.Duration != "1.5s" {
		t.Errorf("Duration = %q, want 1.5s", got.Duration)
	}
	if len(got.Tables) != 2 || got.Tables[1] != "orders" {
		t.Errorf("Tables = %v, want [employees orders]", got.Tables)
	}
	if st := got.Entities["stores"]; st.Written || st.Code != "STO003" || st.Rows != 2 {
		t.Errorf("stores = %+v, want rows=2 unwritten with code STO003", st)
	}
	if st := got.Entities["employees"]; !st.Written || st.Error != "" {
		t.Errorf("employees = %+v, want written without error", st)
	}
}

func TestWriteManifest_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "manifest.yaml")
	if err := writeManifest(path, pipeline.Result{}); err == nil {
		t.Error("writeManifest into a missing directory succeeded, want error")
	}
}
