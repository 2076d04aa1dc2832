package storage

import (
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"
)

func TestSignature(t *testing.T) {
	secret := []byte("s3cret")

	a := Signature(secret, http.MethodGet, "a.txt", 1700000000)
	if len(a) != 64 {
		t.Fatalf("Signature() length = %d, want 64 hex chars", len(a))
	}
	if a != Signature(secret, http.MethodGet, "a.txt", 1700000000) {
		t.Error("Signature() is not deterministic")
	}

	variants := map[string]string{
		"secret": Signature([]byte("other"), http.MethodGet, "a.txt", 1700000000),
		"method": Signature(secret, http.MethodHead, "a.txt", 1700000000),
		"path":   Signature(secret, http.MethodGet, "b.txt", 1700000000),
		"time":   Signature(secret, http.MethodGet, "a.txt", 1700000001),
	}
	for name, sig := range variants {
		if sig == a {
			t.Errorf("changing %s did not change the signature", name)
		}
	}
}

func TestVerifyRequest(t *testing.T) {
	secret := []byte("s3cret")
	now := time.Unix(1700000000, 0)

	newReq := func() *http.Request {
		req, _ := http.NewRequest(http.MethodGet, "http://peer/raw/a.txt", nil)
		return req
	}

	t.Run("Valid", func(t *testing.T) {
		req := newReq()
		SignRequest(req, secret, "a.txt", now)
		if err := VerifyRequest(req, secret, "a.txt", now.Add(time.Minute), 0); err != nil {
			t.Errorf("VerifyRequest() error = %v", err)
		}
	})

	tests := []struct {
		name  string
		setup func(req *http.Request)
		path  string
		at    time.Time
	}{
		{
			name:  "MissingHeaders",
			setup: func(req *http.Request) {},
			path:  "a.txt",
			at:    now,
		},
		{
			name:  "WrongSecret",
			setup: func(req *http.Request) { SignRequest(req, []byte("nope"), "a.txt", now) },
			path:  "a.txt",
			at:    now,
		},
		{
			name:  "OtherPath",
			setup: func(req *http.Request) { SignRequest(req, secret, "b.txt", now) },
			path:  "a.txt",
			at:    now,
		},
		{
			name:  "Stale",
			setup: func(req *http.Request) { SignRequest(req, secret, "a.txt", now) },
			path:  "a.txt",
			at:    now.Add(DefaultMaxSkew + time.Second),
		},
		{
			name:  "Future",
			setup: func(req *http.Request) { SignRequest(req, secret, "a.txt", now.Add(DefaultMaxSkew+time.Second)) },
			path:  "a.txt",
			at:    now,
		},
		{
			name: "MalformedTimestamp",
			setup: func(req *http.Request) {
				SignRequest(req, secret, "a.txt", now)
				req.Header.Set(HeaderTimestamp, "yesterday")
			},
			path: "a.txt",
			at:   now,
		},
		{
			name: "MalformedSignature",
			setup: func(req *http.Request) {
				req.Header.Set(HeaderTimestamp, strconv.FormatInt(now.Unix(), 10))
				req.Header.Set(HeaderSignature, "zz")
			},
			path: "a.txt",
			at:   now,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newReq()
			tt.setup(req)
			err := VerifyRequest(req, secret, tt.path, tt.at, DefaultMaxSkew)
			if !errors.Is(err, ErrUnauthorized) {
				t.Errorf("VerifyRequest() error = %v, want ErrUnauthorized", err)
			}
		})
	}
}
