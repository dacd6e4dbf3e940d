package main

import (
	"strings"
	"testing"

	"ddosim/internal/config"
)

func TestResolveRunID_GeneratesWhenUnset(t *testing.T) {
	t.Setenv("RUN_ID", "")

	cfg := config.Default()
	if cfg.RunID != "" {
		t.Fatalf("default config should not pin a run id, got %q", cfg.RunID)
	}

	id := resolveRunID(cfg.RunID)
	if !strings.HasPrefix(id, "run-") || len(id) == len("run-") {
		t.Fatalf("expected a generated id, got %q", id)
	}
	if other := resolveRunID(""); other == id {
		t.Fatalf("generated ids should differ per call, got %q twice", id)
	}
}

func TestResolveRunID_Precedence(t *testing.T) {
	t.Setenv("RUN_ID", "run-env")
	if got := resolveRunID("run-cfg"); got != "run-env" {
		t.Fatalf("env should win, got %q", got)
	}

	t.Setenv("RUN_ID", "")
	if got := resolveRunID("run-cfg"); got != "run-cfg" {
		t.Fatalf("configured id should win over generation, got %q", got)
	}
}
