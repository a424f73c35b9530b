// Package modelcache locates model weights on disk and downloads them
// into a local cache directory when asked to.
package modelcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/datacounter"
)

var ErrNotCached = errors.New("model weights are not available locally")

type Cache struct {
	Dir        string
	HTTPClient *http.Client
}

// DefaultDir returns "<user cache dir>/speechenhance/models".
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("unable to determine the user cache directory: %w", err)
	}
	return filepath.Join(dir, "speechenhance", "models"), nil
}

// New returns a cache rooted at dir, or at DefaultDir if dir is empty.
func New(dir string) (*Cache, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	return &Cache{
		Dir:        dir,
		HTTPClient: http.DefaultClient,
	}, nil
}

func (c *Cache) Path(fileName string) string {
	return filepath.Join(c.Dir, fileName)
}

// Resolve returns the path of the weights file. An explicit path wins;
// otherwise the cached copy is used, downloading it from url first if it
// is missing and url is set.
func (c *Cache) Resolve(
	ctx context.Context,
	fileName string,
	explicitPath string,
	url string,
) (_ret string, _err error) {
	logger.Tracef(ctx, "Resolve('%s', '%s', '%s')", fileName, explicitPath, url)
	defer func() { logger.Tracef(ctx, "/Resolve('%s'): '%s' %v", fileName, _ret, _err) }()

	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("unable to access the weights file: %w", err)
		}
		return explicitPath, nil
	}

	path := c.Path(fileName)
	_, err := os.Stat(path)
	switch {
	case err == nil:
		logger.Debugf(ctx, "using cached weights '%s'", path)
		return path, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("unable to access '%s': %w", path, err)
	}

	if url == "" {
		return "", fmt.Errorf("%w: '%s' does not exist and no download URL is set", ErrNotCached, path)
	}
	if err := c.download(ctx, url, path); err != nil {
		return "", fmt.Errorf("unable to download '%s': %w", url, err)
	}
	return path, nil
}

func (c *Cache) download(
	ctx context.Context,
	url string,
	path string,
) error {
	logger.Infof(ctx, "downloading model weights from %s", url)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create the cache directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("unable to build the request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create a temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	wc := datacounter.NewWriterCounter(tmp)
	if _, err := io.Copy(wc, resp.Body); err != nil {
		return fmt.Errorf("unable to save the weights: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to close '%s': %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("unable to move the weights into the cache: %w", err)
	}
	logger.Infof(ctx, "downloaded %d bytes into '%s'", wc.Count(), path)
	return nil
}
