package sim

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"ddosim/internal/model"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// GreptimeWriter exports snapshots to GreptimeDB via the ingester client.
// The snapshot table is created by the server on first ingest.
type GreptimeWriter struct {
	client *greptime.Client
	table  string
}

// NewGreptimeWriter dials GreptimeDB. endpoint is a host or host:port;
// without a port the client's default gRPC port (4001) is used.
func NewGreptimeWriter(endpoint, database string) (*GreptimeWriter, error) {
	var cfg *greptime.Config
	if host, portStr, err := net.SplitHostPort(endpoint); err == nil {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("greptime endpoint %q: %w", endpoint, err)
		}
		cfg = greptime.NewConfig(host).WithPort(port)
	} else {
		cfg = greptime.NewConfig(endpoint)
	}
	cfg = cfg.WithDatabase(database)

	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}

	return &GreptimeWriter{
		client: client,
		table:  model.MetricsTableName,
	}, nil
}

// Write inserts a single snapshot.
func (w *GreptimeWriter) Write(snap model.MetricsSnapshot) error {
	return w.WriteBatch([]model.MetricsSnapshot{snap})
}

// WriteBatch inserts multiple snapshots.
func (w *GreptimeWriter) WriteBatch(snaps []model.MetricsSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	tbl, err := buildSnapshotTable(w.table, snaps)
	if err != nil {
		return err
	}
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		return fmt.Errorf("greptime write: %w", err)
	}
	return nil
}

// buildSnapshotTable maps snapshots onto the ingester table schema.
// AddRow values must follow the column declaration order.
func buildSnapshotTable(name string, snaps []model.MetricsSnapshot) (*table.Table, error) {
	tbl, err := table.New(name)
	if err != nil {
		return nil, err
	}
	if err := tbl.AddTagColumn("run_id", types.STRING); err != nil {
		return nil, err
	}
	if err := tbl.AddFieldColumn("label", types.STRING); err != nil {
		return nil, err
	}
	for _, field := range []string{"rps", "cpu", "memory", "response_ms", "error_rate", "bandwidth", "ip_diversity", "efficiency"} {
		if err := tbl.AddFieldColumn(field, types.FLOAT64); err != nil {
			return nil, err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}

	for _, s := range snaps {
		err := tbl.AddRow(
			s.RunID, s.Label,
			s.RPS, s.CPU, s.Memory, s.ResponseMS, s.ErrorRate,
			s.Bandwidth, s.IPDiversity, s.Efficiency,
			s.Timestamp,
		)
		if err != nil {
			return nil, err
		}
	}
	return tbl, nil
}
