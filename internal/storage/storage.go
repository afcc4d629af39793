// Package storage handles off-box persistence of rendered conversation
// exports.
package storage

import (
	"context"
	"io"
)

type Uploader interface {
	// Upload stores the object and returns a URL the caller can hand to
	// the user. Objects stay private; the URL is time-limited.
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (url string, err error)
}
