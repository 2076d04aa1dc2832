package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	// HeaderTimestamp carries the unix time the request was signed at
	HeaderTimestamp = "X-Sidediff-Timestamp"
	// HeaderSignature carries the hex HMAC-SHA256 of the canonical request
	HeaderSignature = "X-Sidediff-Signature"

	// DefaultMaxSkew is how far a request timestamp may drift from the server clock
	DefaultMaxSkew = 5 * time.Minute
)

// Signature computes hex(HMAC-SHA256(secret, "METHOD\n/raw/PATH\nTIMESTAMP")).
// path must already be cleaned.
func Signature(secret []byte, method, path string, ts int64) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s\n/raw/%s\n%d", method, path, ts)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignRequest stamps req with the timestamp and signature headers
func SignRequest(req *http.Request, secret []byte, path string, now time.Time) {
	ts := now.Unix()
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderSignature, Signature(secret, req.Method, path, ts))
}

// VerifyRequest checks the signature headers of req for path.
// It returns ErrUnauthorized on any mismatch.
func VerifyRequest(req *http.Request, secret []byte, path string, now time.Time, maxSkew time.Duration) error {
	rawTS := req.Header.Get(HeaderTimestamp)
	sig := req.Header.Get(HeaderSignature)
	if rawTS == "" || sig == "" {
		return fmt.Errorf("%w: missing signature headers", ErrUnauthorized)
	}

	ts, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed timestamp", ErrUnauthorized)
	}

	if maxSkew <= 0 {
		maxSkew = DefaultMaxSkew
	}
	skew := now.Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > maxSkew {
		return fmt.Errorf("%w: timestamp outside allowed skew", ErrUnauthorized)
	}

	got, err := hex.DecodeString(sig)
	if err != nil {
		return fmt.Errorf("%w: malformed signature", ErrUnauthorized)
	}
	want, _ := hex.DecodeString(Signature(secret, req.Method, path, ts))
	if !hmac.Equal(got, want) {
		return fmt.Errorf("%w: signature mismatch", ErrUnauthorized)
	}
	return nil
}
