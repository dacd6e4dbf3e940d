package main

import (
	"os"

	"ddosim/internal/admin"
	"ddosim/internal/sim"
)

// newWriters assembles the snapshot fan-out based on flags and env vars.
// The admin server is always part of the fan-out so websocket clients see
// every tick; its Ctrl field is wired by the caller once the controller
// exists. The returned cleanup closes any file or TUI resources.
func newWriters(printOnly bool, logFile string) (sim.SnapshotWriter, *sim.TUIWriter, *admin.Server, func(), error) {
	srv := admin.NewServer(nil)
	writers := []sim.SnapshotWriter{srv}
	cleanups := []func(){}

	var tui *sim.TUIWriter
	if printOnly {
		writers = append(writers, &sim.StdoutJSONWriter{})
	} else {
		tui = sim.NewTUIWriter()
		writers = append(writers, tui)
		cleanups = append(cleanups, func() { _ = tui.Close() })
	}

	if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" {
		gw, err := sim.NewGreptimeWriter(endpoint, "public")
		if err != nil {
			runCleanups(cleanups)
			return nil, nil, nil, nil, err
		}
		writers = append(writers, gw)
	}

	if logFile != "" {
		fw, err := sim.NewFileWriter(logFile, logFile+".events")
		if err != nil {
			runCleanups(cleanups)
			return nil, nil, nil, nil, err
		}
		writers = append(writers, fw)
		cleanups = append(cleanups, func() { _ = fw.Close() })
	}

	return sim.NewMultiWriter(writers...), tui, srv, func() { runCleanups(cleanups) }, nil
}

func runCleanups(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
