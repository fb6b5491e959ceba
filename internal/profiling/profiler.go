// Package profiling captures pprof profiles around a single CLI command.
package profiling

import (
	"os"
	"runtime"
	"runtime/pprof"

	snaperrors "github.com/Aman-CERP/snapfind/internal/errors"
)

// Options names the profile files to write. Empty paths are skipped.
type Options struct {
	CPUPath  string
	HeapPath string
}

// Enabled reports whether any profile was requested.
func (o Options) Enabled() bool {
	return o.CPUPath != "" || o.HeapPath != ""
}

// Session is an in-progress profiling run.
type Session struct {
	opts    Options
	cpuFile *os.File
}

// Start begins CPU profiling if requested. Stop must be called to
// flush it and to write the heap profile.
func Start(opts Options) (*Session, error) {
	s := &Session{opts: opts}
	if opts.CPUPath == "" {
		return s, nil
	}

	f, err := os.Create(opts.CPUPath)
	if err != nil {
		return nil, snaperrors.IOError("failed to create CPU profile", err).WithDetail("path", opts.CPUPath)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, snaperrors.InternalError("failed to start CPU profile", err)
	}
	s.cpuFile = f
	return s, nil
}

// Stop ends CPU profiling and writes the heap profile. It is safe to
// call more than once.
func (s *Session) Stop() error {
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		err := s.cpuFile.Close()
		s.cpuFile = nil
		if err != nil {
			return snaperrors.IOError("failed to close CPU profile", err)
		}
	}

	if s.opts.HeapPath == "" {
		return nil
	}
	path := s.opts.HeapPath
	s.opts.HeapPath = ""

	f, err := os.Create(path)
	if err != nil {
		return snaperrors.IOError("failed to create heap profile", err).WithDetail("path", path)
	}
	defer func() { _ = f.Close() }()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return snaperrors.IOError("failed to write heap profile", err).WithDetail("path", path)
	}
	return nil
}
