package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrUnauthorized indicates the counterpart rejected the request signature
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates the requested text does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidPath indicates a path that is empty, absolute or escapes the root
	ErrInvalidPath = errors.New("invalid path")
	// ErrTooLarge indicates a text exceeding the configured size cap
	ErrTooLarge = errors.New("text too large")
)

// FileInfo describes a file below a comparison root
type FileInfo struct {
	// Path is relative to the root and slash-separated
	Path    string
	Size    int64
	ModTime time.Time
}

// Fetcher retrieves the raw text of one side of a comparison
type Fetcher interface {
	// Fetch returns the content at path, relative to the fetcher's root
	Fetch(ctx context.Context, path string) ([]byte, error)

	// Name identifies the fetcher in logs and titles
	Name() string

	// Close releases any resources held by the fetcher
	Close() error
}

// Lister enumerates the files a fetcher can serve
type Lister interface {
	List(ctx context.Context, dir string) ([]FileInfo, error)
}

// FetchError is returned when the counterpart host answers with a non-200 status
type FetchError struct {
	Host       string
	Path       string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %d %s", e.Path, e.Host, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap maps well-known statuses to the package sentinels
func (e *FetchError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrInvalidPath
	default:
		return nil
	}
}
