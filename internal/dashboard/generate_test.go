package dashboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	out := t.TempDir()
	if err := Render(out); err != nil {
		t.Fatalf("render: %v", err)
	}

	path := filepath.Join(out, "grafana-dashboard.json")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read rendered dashboard: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("rendered dashboard is not valid JSON: %v", err)
	}
	if doc["title"] != "DDoS Load Simulation" {
		t.Fatalf("unexpected title: %v", doc["title"])
	}
	if !strings.Contains(string(b), "load_metrics") {
		t.Fatalf("rendered dashboard does not query the snapshot table")
	}
}

func TestRender_DatasourceOverride(t *testing.T) {
	t.Setenv("GRAFANA_DATASOURCE_UID", "custom-uid")
	out := t.TempDir()
	if err := Render(out); err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(out, "grafana-dashboard.json"))
	if err != nil {
		t.Fatalf("read rendered dashboard: %v", err)
	}
	if !strings.Contains(string(b), "custom-uid") {
		t.Fatalf("datasource override not applied")
	}
}
