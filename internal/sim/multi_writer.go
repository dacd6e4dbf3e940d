package sim

import "ddosim/internal/model"

// MultiWriter fans snapshots, events, and state out to multiple writers.
type MultiWriter struct {
	writers []SnapshotWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(writers ...SnapshotWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write sends a snapshot to all writers.
func (mw *MultiWriter) Write(snap model.MetricsSnapshot) error {
	for _, w := range mw.writers {
		if err := w.Write(snap); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple snapshots to all writers, using batch mode
// where supported.
func (mw *MultiWriter) WriteBatch(snaps []model.MetricsSnapshot) error {
	for _, w := range mw.writers {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(snaps); err != nil {
				return err
			}
			continue
		}
		for _, s := range snaps {
			if err := w.Write(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteEvent forwards a log entry to every writer that accepts events.
func (mw *MultiWriter) WriteEvent(e model.LogEntry) error {
	for _, w := range mw.writers {
		if ew, ok := w.(EventWriter); ok {
			if err := ew.WriteEvent(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteState forwards operator state to every writer that accepts it.
func (mw *MultiWriter) WriteState(s State) error {
	for _, w := range mw.writers {
		if sw, ok := w.(StateWriter); ok {
			if err := sw.WriteState(s); err != nil {
				return err
			}
		}
	}
	return nil
}
