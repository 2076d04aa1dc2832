package storage

import "context"

// Side is one loaded side of a comparison. A failed fetch yields an empty
// Text with Missing set so the engine always receives a string.
type Side struct {
	Source  string
	Path    string
	Text    string
	Missing bool
	Err     error
}

// Load fetches path through f
func Load(ctx context.Context, f Fetcher, path string) Side {
	side := Side{Source: f.Name(), Path: path}

	data, err := f.Fetch(ctx, path)
	if err != nil {
		side.Missing = true
		side.Err = err
		return side
	}

	side.Text = string(data)
	return side
}
