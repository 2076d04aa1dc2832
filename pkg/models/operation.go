package models

import (
	"time"
)

// Request describes a batch comparison of two directory trees
type Request struct {
	ID string

	// Left is the local root directory
	Left string
	// Right is a second local root, exclusive with Remote
	Right string
	// Remote is the base URL of a counterpart host serving the right side
	Remote string

	OutputDir       string
	Format          string
	ExcludePatterns []string
	MaxWorkers      int
	BandwidthLimit  int64 // bytes per second, 0 = unlimited

	CreatedAt time.Time
}

// RightSource returns the right root or remote URL, whichever is set
func (r *Request) RightSource() string {
	if r.Remote != "" {
		return r.Remote
	}
	return r.Right
}

// Validate checks if the request is complete
func (r *Request) Validate() error {
	if r.Left == "" {
		return &ValidationError{Field: "Left", Message: "left root is required"}
	}
	if r.Right == "" && r.Remote == "" {
		return &ValidationError{Field: "Right", Message: "a right root or a remote URL is required"}
	}
	if r.Right != "" && r.Remote != "" {
		return &ValidationError{Field: "Remote", Message: "right root and remote URL are mutually exclusive"}
	}
	if r.OutputDir == "" {
		return &ValidationError{Field: "OutputDir", Message: "output directory is required"}
	}
	if r.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if r.BandwidthLimit < 0 {
		return &ValidationError{Field: "BandwidthLimit", Message: "bandwidth limit cannot be negative"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
