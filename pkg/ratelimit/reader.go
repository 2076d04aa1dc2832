package ratelimit

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// minBucketSize keeps small limits from degenerating into byte-sized reads
const minBucketSize = 64 * 1024

// Limiter is a token bucket shared by every reader it wraps, so concurrent
// fetches split the configured bandwidth between them
type Limiter struct {
	bytesPerSecond int64
	bucketSize     int64

	mu         sync.Mutex
	tokens     int64
	lastUpdate time.Time
}

// NewLimiter creates a limiter for bytesPerSecond.
// A non-positive rate returns nil, which means unlimited.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	bucketSize := max(bytesPerSecond, minBucketSize)
	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		bucketSize:     bucketSize,
		tokens:         bucketSize,
		lastUpdate:     time.Now(),
	}
}

// ParseRate parses a bandwidth such as "512K", "10M" or "1GiB" into bytes per second.
// An empty string or "0" means unlimited.
func ParseRate(s string) (int64, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid bandwidth %q: %w", s, err)
	}
	return int64(n), nil
}

// Wait blocks until n tokens are available or ctx is done
func (l *Limiter) Wait(ctx context.Context, n int64) error {
	n = min(n, l.bucketSize)
	for {
		l.mu.Lock()
		l.refill(time.Now())
		if l.tokens >= n {
			l.tokens -= n
			l.mu.Unlock()
			return nil
		}
		deficit := n - l.tokens
		l.mu.Unlock()

		wait := max(time.Duration(float64(deficit)/float64(l.bytesPerSecond)*float64(time.Second)), time.Millisecond)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refill adds tokens for the time elapsed since the last update; l.mu must be held
func (l *Limiter) refill(now time.Time) {
	elapsed := now.Sub(l.lastUpdate)
	add := int64(elapsed.Seconds() * float64(l.bytesPerSecond))
	if add <= 0 {
		return
	}
	l.tokens = min(l.tokens+add, l.bucketSize)
	l.lastUpdate = now
}

// giveBack returns tokens reserved for a read that came back short
func (l *Limiter) giveBack(n int64) {
	if n <= 0 {
		return
	}
	l.mu.Lock()
	l.tokens = min(l.tokens+n, l.bucketSize)
	l.mu.Unlock()
}

// Reader wraps an io.Reader with bandwidth limiting
type Reader struct {
	ctx     context.Context
	reader  io.Reader
	limiter *Limiter
}

// NewReader wraps r with limiter. A nil limiter returns r unchanged.
func NewReader(ctx context.Context, r io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return r
	}
	return &Reader{ctx: ctx, reader: r, limiter: limiter}
}

// Read reserves tokens for len(p) bytes (capped at the bucket size), reads,
// and returns the unused reservation
func (r *Reader) Read(p []byte) (int, error) {
	want := int64(len(p))
	if want > r.limiter.bucketSize {
		want = r.limiter.bucketSize
		p = p[:want]
	}
	if err := r.limiter.Wait(r.ctx, want); err != nil {
		return 0, err
	}

	n, err := r.reader.Read(p)
	r.limiter.giveBack(want - int64(n))
	return n, err
}

// ReadCloser is a rate limited io.ReadCloser
type ReadCloser struct {
	Reader
	closer io.Closer
}

// NewReadCloser wraps rc with limiter. A nil limiter returns rc unchanged.
func NewReadCloser(ctx context.Context, rc io.ReadCloser, limiter *Limiter) io.ReadCloser {
	if limiter == nil {
		return rc
	}
	return &ReadCloser{
		Reader: Reader{ctx: ctx, reader: rc, limiter: limiter},
		closer: rc,
	}
}

// Close closes the underlying reader
func (rc *ReadCloser) Close() error {
	return rc.closer.Close()
}
