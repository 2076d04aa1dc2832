package storage

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sdejongh/sidediff/internal/platform"
	"github.com/sdejongh/sidediff/pkg/logging"
)

// RawPrefix is the URL prefix under which a Handler serves texts
const RawPrefix = "/raw/"

// Handler serves texts below a local root to signed Remote requests
type Handler struct {
	local   *Local
	secret  []byte
	maxSkew time.Duration
	logger  logging.Logger
	now     func() time.Time
}

// NewHandler creates a handler serving files from local
func NewHandler(local *Local, secret []byte, maxSkew time.Duration, logger logging.Logger) *Handler {
	if maxSkew <= 0 {
		maxSkew = DefaultMaxSkew
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Handler{
		local:   local,
		secret:  secret,
		maxSkew: maxSkew,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.logger.WithFields(logging.Fields{
		"remote_addr": r.RemoteAddr,
		"method":      r.Method,
		"url":         r.URL.Path,
	})

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		h.fail(ctx, w, log, http.StatusMethodNotAllowed, nil)
		return
	}
	if !strings.HasPrefix(r.URL.Path, RawPrefix) {
		h.fail(ctx, w, log, http.StatusNotFound, nil)
		return
	}

	rel, err := platform.CleanRelative(strings.TrimPrefix(r.URL.Path, RawPrefix))
	if err != nil {
		h.fail(ctx, w, log, http.StatusBadRequest, err)
		return
	}

	if err := VerifyRequest(r, h.secret, rel, h.now(), h.maxSkew); err != nil {
		h.fail(ctx, w, log, http.StatusUnauthorized, err)
		return
	}

	data, err := h.local.Fetch(ctx, rel)
	switch {
	case errors.Is(err, ErrNotFound):
		h.fail(ctx, w, log, http.StatusNotFound, err)
		return
	case errors.Is(err, ErrInvalidPath):
		h.fail(ctx, w, log, http.StatusBadRequest, err)
		return
	case err != nil:
		h.fail(ctx, w, log, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		w.Write(data)
	}
	log.Debug(ctx, "served text", logging.Fields{"path": rel, "bytes": len(data)})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, log logging.Logger, status int, err error) {
	http.Error(w, http.StatusText(status), status)
	fields := logging.Fields{"status": status}
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", err, fields)
		return
	}
	if err != nil {
		fields["reason"] = err.Error()
	}
	log.Warn(ctx, "request rejected", fields)
}
