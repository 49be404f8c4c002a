package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cavaliergopher/grab/v3"
)

// DefaultUserAgent is sent with dataset downloads.
const DefaultUserAgent = "asnranger"

// Fetcher downloads datasets through a scratch directory.
type Fetcher struct {
	client *grab.Client
	dir    string
}

// NewFetcher returns a Fetcher using dir for in-flight downloads. An empty
// dir means the system temporary directory.
func NewFetcher(dir, userAgent string) *Fetcher {
	if dir == "" {
		dir = os.TempDir()
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client := grab.NewClient()
	client.UserAgent = userAgent
	return &Fetcher{client: client, dir: dir}
}

// Fetch downloads url and returns the served file name and content. Every
// download goes to a fresh directory which is removed before returning.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, []byte, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create work dir: %w", err)
	}
	dir, err := os.MkdirTemp(f.dir, "fetch-")
	if err != nil {
		return "", nil, fmt.Errorf("create download dir: %w", err)
	}
	defer os.RemoveAll(dir)

	req, err := grab.NewRequest(dir, url)
	if err != nil {
		return "", nil, fmt.Errorf("create request for %s: %w", url, err)
	}
	req = req.WithContext(ctx)

	resp := f.client.Do(req)
	if err := resp.Err(); err != nil {
		return "", nil, fmt.Errorf("download %s: %w", url, err)
	}
	data, err := os.ReadFile(resp.Filename)
	if err != nil {
		return "", nil, err
	}
	return filepath.Base(resp.Filename), data, nil
}
