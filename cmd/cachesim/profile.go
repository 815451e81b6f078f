package main

import (
	"fmt"
	"os"
	"runtime/pprof"
)

// startProfiles starts CPU profiling when cpuProfile is set. The returned
// function stops it and writes the heap profile when memProfile is set.
func startProfiles(cpuProfile, memProfile string) (func() error, error) {
	var cpuFile *os.File

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile) //nolint:gosec // profile path is user input
		if err != nil {
			return nil, fmt.Errorf("creating CPU profile: %w", err)
		}

		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("starting CPU profile: %w", err)
		}

		cpuFile = f
	}

	stop := func() error {
		if cpuFile != nil {
			pprof.StopCPUProfile()

			if err := cpuFile.Close(); err != nil {
				return fmt.Errorf("closing CPU profile: %w", err)
			}
		}

		if memProfile == "" {
			return nil
		}

		f, err := os.Create(memProfile) //nolint:gosec // profile path is user input
		if err != nil {
			return fmt.Errorf("creating memory profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("writing memory profile: %w", err)
		}

		return nil
	}

	return stop, nil
}
