package sim

import (
	"testing"
	"time"

	"ddosim/internal/model"
)

func TestBuildSnapshotTable(t *testing.T) {
	snaps := []model.MetricsSnapshot{
		{RunID: "run-1", Label: "10:00:00", RPS: 1200, CPU: 25, Memory: 40, ResponseMS: 120, ErrorRate: 0.5, Bandwidth: 30, IPDiversity: 85, Efficiency: 100, Timestamp: time.Unix(0, 0).UTC()},
		{RunID: "run-1", Label: "10:00:01", RPS: 3800, CPU: 62, Memory: 44.5, ResponseMS: 210, ErrorRate: 1.2, Bandwidth: 34.5, IPDiversity: 20, Efficiency: 94, Timestamp: time.Unix(1, 0).UTC()},
	}

	tbl, err := buildSnapshotTable(model.MetricsTableName, snaps)
	if err != nil {
		t.Fatalf("build snapshot table: %v", err)
	}
	name, err := tbl.GetName()
	if err != nil {
		t.Fatalf("table name: %v", err)
	}
	if name != model.MetricsTableName {
		t.Fatalf("unexpected table name %q", name)
	}
	if got := len(tbl.GetRows().Rows); got != len(snaps) {
		t.Fatalf("expected %d rows, got %d", len(snaps), got)
	}
	// One value per declared column, tag and time index included.
	if got := len(tbl.GetRows().Rows[0].Values); got != 11 {
		t.Fatalf("expected 11 values per row, got %d", got)
	}
}

func TestGreptimeWriter_EmptyBatch(t *testing.T) {
	w := &GreptimeWriter{table: model.MetricsTableName}
	if err := w.WriteBatch(nil); err != nil {
		t.Fatalf("empty batch should be a no-op, got %v", err)
	}
}
