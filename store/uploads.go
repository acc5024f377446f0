package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rustyeddy/tfcandle/pkg/id"
)

// Uploads writes raw uploaded files under a single storage root.
type Uploads struct {
	root string
}

func NewUploads(root string) *Uploads {
	return &Uploads{root: root}
}

func (u *Uploads) Root() string {
	return u.root
}

// Path returns the location of the upload with the given ID and extension.
func (u *Uploads) Path(aid, ext string) string {
	return filepath.Join(u.root, aid+ext)
}

// Save copies r into a new file named by a fresh ID and returns the ID and
// path. A partially written file is removed on failure.
func (u *Uploads) Save(ctx context.Context, ext string, r io.Reader) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(u.root, 0755); err != nil {
		return "", "", fmt.Errorf("create storage root: %w", err)
	}

	aid := id.New()
	path := u.Path(aid, ext)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", "", err
	}

	_, err = io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("write upload: %w", err)
	}
	return aid, path, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
