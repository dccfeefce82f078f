package config

import (
	"strings"
	"testing"
	"time"
)

// env returns a lookup over a fixed set of variables.
func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Storage.Backend != BackendS3 {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, BackendS3)
	}
	if cfg.Storage.Bucket != "prosper-etl-bucket" {
		t.Errorf("Storage.Bucket = %q, want %q", cfg.Storage.Bucket, "prosper-etl-bucket")
	}
	if cfg.Storage.RawPrefix != "raw/" || cfg.Storage.TransformedPrefix != "transformed/" {
		t.Errorf("prefixes = %q, %q, want raw/, transformed/", cfg.Storage.RawPrefix, cfg.Storage.TransformedPrefix)
	}
	if cfg.Run.MaxConcurrent != 1 {
		t.Errorf("Run.MaxConcurrent = %d, want %d", cfg.Run.MaxConcurrent, 1)
	}
	if cfg.Run.Timeout != 15*time.Minute {
		t.Errorf("Run.Timeout = %v, want %v", cfg.Run.Timeout, 15*time.Minute)
	}
	if cfg.Run.ScheduleInterval != 0 {
		t.Errorf("Run.ScheduleInterval = %v, want 0", cfg.Run.ScheduleInterval)
	}
	if cfg.Warehouse.MaxConns != 4 {
		t.Errorf("Warehouse.MaxConns = %d, want %d", cfg.Warehouse.MaxConns, 4)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SERVER_PORT":        "9090",
		"S3_BUCKET_NAME":     "acme-etl",
		"SINK_PER_RUN":       "true",
		"RUN_MAX_CONCURRENT": "3",
		"LOG_LEVEL":          "debug",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Storage.Bucket != "acme-etl" {
		t.Errorf("Storage.Bucket = %q, want %q", cfg.Storage.Bucket, "acme-etl")
	}
	if !cfg.Storage.PerRun {
		t.Errorf("Storage.PerRun = false, want true")
	}
	if cfg.Run.MaxConcurrent != 3 {
		t.Errorf("Run.MaxConcurrent = %d, want %d", cfg.Run.MaxConcurrent, 3)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"DATABASE_URL": "postgres://wh/alt"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Warehouse.URL != "postgres://wh/alt" {
		t.Errorf("Warehouse.URL = %q, want %q", cfg.Warehouse.URL, "postgres://wh/alt")
	}

	cfg, err = LoadFrom(env(map[string]string{
		"REDSHIFT_URL": "postgres://wh/primary",
		"DATABASE_URL": "postgres://wh/alt",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Warehouse.URL != "postgres://wh/primary" {
		t.Errorf("Warehouse.URL = %q, want primary to win", cfg.Warehouse.URL)
	}
}

func TestLoad_Duration(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"RUN_SCHEDULE_INTERVAL":       "1h30m",
		"WAREHOUSE_STATEMENT_TIMEOUT": "45s",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Run.ScheduleInterval != 90*time.Minute {
		t.Errorf("Run.ScheduleInterval = %v, want %v", cfg.Run.ScheduleInterval, 90*time.Minute)
	}
	if cfg.Warehouse.StatementTimeout != 45*time.Second {
		t.Errorf("Warehouse.StatementTimeout = %v, want %v", cfg.Warehouse.StatementTimeout, 45*time.Second)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"REQUIRE_API_KEY": "true",
		"API_KEYS":        " key-one, ,key-two ",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	want := []string{"key-one", "key-two"}
	if len(cfg.Security.APIKeys) != len(want) {
		t.Fatalf("APIKeys = %v, want %v", cfg.Security.APIKeys, want)
	}
	for i := range want {
		if cfg.Security.APIKeys[i] != want[i] {
			t.Errorf("APIKeys[%d] = %q, want %q", i, cfg.Security.APIKeys[i], want[i])
		}
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr string
	}{
		{"bad integer", map[string]string{"SERVER_PORT": "eighty"}, "SERVER_PORT"},
		{"bad duration", map[string]string{"RUN_TIMEOUT": "soon"}, "RUN_TIMEOUT"},
		{"bad boolean", map[string]string{"SINK_PER_RUN": "maybe"}, "SINK_PER_RUN"},
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}, "SERVER_PORT"},
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "ftp"}, "STORAGE_BACKEND"},
		{"same prefixes", map[string]string{"S3_RAW_PREFIX": "data/", "S3_TRANSFORMED_PREFIX": "/data"}, "must differ"},
		{"half credentials", map[string]string{"AWS_ACCESS_KEY_ID": "AKIA"}, "AWS_SECRET_ACCESS_KEY"},
		{"zero runs", map[string]string{"RUN_MAX_CONCURRENT": "0"}, "RUN_MAX_CONCURRENT"},
		{"negative schedule", map[string]string{"RUN_SCHEDULE_INTERVAL": "-1m"}, "RUN_SCHEDULE_INTERVAL"},
		{"api key required without keys", map[string]string{"REQUIRE_API_KEY": "true"}, "API_KEYS"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(env(tt.vars))
			if err == nil {
				t.Fatalf("LoadFrom() error = nil, want error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadFrom() error = %v, want it to mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	_, err := LoadFrom(env(map[string]string{
		"RUN_MAX_CONCURRENT": "0",
		"LOG_FORMAT":         "xml",
	}))
	if err == nil {
		t.Fatal("LoadFrom() error = nil, want validation error")
	}
	for _, want := range []string{"RUN_MAX_CONCURRENT", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %s", err, want)
		}
	}
}

func TestValidateWarehouse(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	err = cfg.ValidateWarehouse()
	if err == nil || !strings.Contains(err.Error(), "REDSHIFT_URL") || !strings.Contains(err.Error(), "IAM_ROLE_ARN") {
		t.Errorf("ValidateWarehouse() = %v, want REDSHIFT_URL and IAM_ROLE_ARN errors", err)
	}

	cfg.Warehouse.URL = "postgres://wh/db"
	cfg.Warehouse.IAMRole = "arn:aws:iam::123456789012:role/etl"
	if err := cfg.ValidateWarehouse(); err != nil {
		t.Errorf("ValidateWarehouse() = %v, want nil", err)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"localhost", 3000, "localhost:3000"},
		{"", 9090, ":9090"},
	}

	for _, tt := range tests {
		cfg := ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestSinkPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		perRun bool
		runID  string
		want   string
	}{
		{"shared", "transformed/", false, "abc", "transformed/"},
		{"per run", "transformed/", true, "abc", "transformed/abc/"},
		{"per run without id", "transformed/", true, "", "transformed/"},
		{"unslashed prefix", "out", true, "r1", "out/r1/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := StorageConfig{TransformedPrefix: tt.prefix, PerRun: tt.perRun}
			if got := c.SinkPrefix(tt.runID); got != tt.want {
				t.Errorf("SinkPrefix(%q) = %q, want %q", tt.runID, got, tt.want)
			}
		})
	}
}

func TestJoinPrefix(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"raw/"}, "raw/"},
		{[]string{"/raw/", "/2024/"}, "raw/2024/"},
		{[]string{"", "raw"}, "raw/"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := JoinPrefix(tt.parts...); got != tt.want {
			t.Errorf("JoinPrefix(%q) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}

func TestConfigString_MasksSecrets(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"REDSHIFT_URL":          "postgres://user:secret@wh/db",
		"AWS_ACCESS_KEY_ID":     "AKIASECRET",
		"AWS_SECRET_ACCESS_KEY": "shh",
		"REQUIRE_API_KEY":       "true",
		"API_KEYS":              "topsecretkey",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	s := cfg.String()
	for _, secret := range []string{"secret@wh", "AKIASECRET", "shh", "topsecretkey"} {
		if strings.Contains(s, secret) {
			t.Errorf("String() leaks %q: %s", secret, s)
		}
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() = %s, want [MASKED]", s)
	}
}
