package models

import (
	"sort"
	"time"
)

// FileStatus is the outcome of comparing one path
type FileStatus string

const (
	FileIdentical    FileStatus = "identical"
	FileDifferent    FileStatus = "different"
	FileMissingLeft  FileStatus = "missing-left"
	FileMissingRight FileStatus = "missing-right"
	FileFailed       FileStatus = "failed"
)

// FileResult records the comparison of one path
type FileResult struct {
	Path   string     `json:"path"`
	Status FileStatus `json:"status"`

	// Output is the rendered file, relative to the report's output directory
	Output string `json:"output,omitempty"`

	LeftSHA256  string `json:"left_sha256,omitempty"`
	RightSHA256 string `json:"right_sha256,omitempty"`

	Stats    Stats         `json:"stats"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Totals aggregates a batch
type Totals struct {
	Files        int `json:"files"`
	Identical    int `json:"identical"`
	Different    int `json:"different"`
	MissingLeft  int `json:"missing_left"`
	MissingRight int `json:"missing_right"`
	Failed       int `json:"failed"`

	Changed   int `json:"changed_rows"`
	LeftOnly  int `json:"left_only_rows"`
	RightOnly int `json:"right_only_rows"`
	Dropped   int `json:"dropped_lines"`

	BytesCompared int64 `json:"bytes_compared"`
}

// Status represents the overall result of a batch
type Status string

const (
	// StatusIdentical indicates every path compared equal
	StatusIdentical Status = "identical"
	// StatusDifferent indicates at least one difference and no failure
	StatusDifferent Status = "different"
	// StatusFailed indicates at least one path could not be compared
	StatusFailed Status = "failed"
	// StatusCancelled indicates the batch was interrupted
	StatusCancelled Status = "cancelled"
)

// ExitCode returns the process exit code for the status
func (s Status) ExitCode() int {
	switch s {
	case StatusIdentical:
		return 0
	case StatusDifferent:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}

// Report is the result of a batch comparison
type Report struct {
	OperationID string `json:"operation_id"`
	Left        string `json:"left"`
	Right       string `json:"right"`
	OutputDir   string `json:"output_dir"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration_ns"`

	Files  []FileResult `json:"files"`
	Totals Totals       `json:"totals"`
	Status Status       `json:"status"`
}

// Finalize sorts the files by path, computes totals and derives the status
func (r *Report) Finalize(cancelled bool) {
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })

	t := Totals{Files: len(r.Files)}
	for _, f := range r.Files {
		switch f.Status {
		case FileIdentical:
			t.Identical++
		case FileDifferent:
			t.Different++
		case FileMissingLeft:
			t.MissingLeft++
		case FileMissingRight:
			t.MissingRight++
		case FileFailed:
			t.Failed++
		}
		t.Changed += f.Stats.Changed
		t.LeftOnly += f.Stats.LeftOnly
		t.RightOnly += f.Stats.RightOnly
		t.Dropped += f.Stats.LeftDropped + f.Stats.RightDropped
		t.BytesCompared += int64(f.Stats.LeftBytes + f.Stats.RightBytes)
	}
	r.Totals = t

	if !r.StartTime.IsZero() && !r.EndTime.IsZero() {
		r.Duration = r.EndTime.Sub(r.StartTime)
	}

	switch {
	case cancelled:
		r.Status = StatusCancelled
	case t.Failed > 0:
		r.Status = StatusFailed
	case t.Different+t.MissingLeft+t.MissingRight > 0:
		r.Status = StatusDifferent
	default:
		r.Status = StatusIdentical
	}
}
