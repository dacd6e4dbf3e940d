package sim

import (
	"encoding/json"
	"os"

	"ddosim/internal/model"
)

// FileWriter writes snapshots and simulation events to JSONL files.
type FileWriter struct {
	snapFile  *os.File
	eventFile *os.File
	snapEnc   *json.Encoder
	eventEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. eventPath may be empty to skip the
// event log.
func NewFileWriter(snapshotPath, eventPath string) (*FileWriter, error) {
	sf, err := os.Create(snapshotPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{snapFile: sf, snapEnc: json.NewEncoder(sf)}
	if eventPath != "" {
		ef, err := os.Create(eventPath)
		if err != nil {
			sf.Close()
			return nil, err
		}
		fw.eventFile = ef
		fw.eventEnc = json.NewEncoder(ef)
	}
	return fw, nil
}

// Write logs a single snapshot.
func (f *FileWriter) Write(snap model.MetricsSnapshot) error {
	return f.snapEnc.Encode(snap)
}

// WriteBatch logs multiple snapshots.
func (f *FileWriter) WriteBatch(snaps []model.MetricsSnapshot) error {
	for _, s := range snaps {
		if err := f.Write(s); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent logs a simulation event, if enabled.
func (f *FileWriter) WriteEvent(e model.LogEntry) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(e)
}

// Close closes the underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.snapFile != nil {
		if e := f.snapFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.eventFile != nil {
		if e := f.eventFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
