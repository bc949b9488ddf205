package runner

import (
	"time"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/annotation"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/discovery"
)

// ScanRun represents the analysis of a single file
type ScanRun struct {
	File      *discovery.DiscoveredFile
	StartTime time.Time
	EndTime   time.Time
	Status    ScanStatus
	Error     error                       // Non-nil if the scan failed
	Result    *annotation.FileAnnotations // Nil unless Status is ScanDone
}

// ScanStatus represents the current state of a file scan
type ScanStatus int

const (
	ScanPending ScanStatus = iota
	ScanRunning
	ScanDone
	ScanFailed
)

// String returns a string representation of ScanStatus
func (s ScanStatus) String() string {
	switch s {
	case ScanPending:
		return "pending"
	case ScanRunning:
		return "running"
	case ScanDone:
		return "done"
	case ScanFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Duration returns the scan duration
func (r *ScanRun) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// Summary summarizes a batch of scans
type Summary struct {
	TotalFiles     int
	ScannedFiles   int
	FailedFiles    int
	Functions      int
	HostVariables  int
	SQLStatements  int
	SQLReferences  int
	BareReferences int
	TotalDuration  time.Duration
}

// AllScanned returns true if no file failed
func (s *Summary) AllScanned() bool {
	return s.FailedFiles == 0
}

// ExitCode returns the appropriate exit code based on scan results
func (s *Summary) ExitCode() int {
	if s.AllScanned() {
		return 0
	}
	return 1
}
