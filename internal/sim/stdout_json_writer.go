// Writer implementation printing snapshots to STDOUT as JSON lines.
package sim

import (
	"encoding/json"
	"fmt"

	"ddosim/internal/model"
)

// StdoutJSONWriter prints snapshots and log events to STDOUT.
type StdoutJSONWriter struct{}

// Write outputs a single snapshot.
func (w *StdoutJSONWriter) Write(snap model.MetricsSnapshot) error {
	data, _ := json.Marshal(snap)
	fmt.Println(string(data))
	return nil
}

// WriteBatch outputs multiple snapshots.
func (w *StdoutJSONWriter) WriteBatch(snaps []model.MetricsSnapshot) error {
	for _, s := range snaps {
		_ = w.Write(s)
	}
	return nil
}

// WriteEvent outputs a simulation log entry.
func (w *StdoutJSONWriter) WriteEvent(e model.LogEntry) error {
	data, _ := json.Marshal(e)
	fmt.Println(string(data))
	return nil
}
