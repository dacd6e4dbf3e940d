package sim

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"ddosim/internal/model"
)

// ReplayLog replays recorded snapshots from r to writer. A speed >0
// accelerates playback relative to the recorded timestamps. If speed <= 0,
// no artificial delay is inserted.
func ReplayLog(r io.Reader, writer SnapshotWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var snap model.MetricsSnapshot
		if err := dec.Decode(&snap); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !prev.IsZero() && speed > 0 {
			diff := snap.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := writer.Write(snap); err != nil {
			return err
		}
		prev = snap.Timestamp
	}
}

// ReplayLogFile opens a JSONL snapshot log and replays it.
func ReplayLogFile(path string, writer SnapshotWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
