package modelcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("ExplicitPath", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "weights.onnx")
		require.NoError(t, os.WriteFile(path, []byte("weights"), 0644))

		c, err := New(filepath.Join(dir, "cache"))
		require.NoError(t, err)
		resolved, err := c.Resolve(ctx, "dns64.onnx", path, "")
		require.NoError(t, err)
		assert.Equal(t, path, resolved)

		_, err = c.Resolve(ctx, "dns64.onnx", filepath.Join(dir, "missing.onnx"), "")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("NotCached", func(t *testing.T) {
		c, err := New(t.TempDir())
		require.NoError(t, err)
		_, err = c.Resolve(ctx, "dns64.onnx", "", "")
		assert.ErrorIs(t, err, ErrNotCached)
	})

	t.Run("Cached", func(t *testing.T) {
		dir := t.TempDir()
		c, err := New(dir)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(c.Path("dns64.onnx"), []byte("weights"), 0644))
		resolved, err := c.Resolve(ctx, "dns64.onnx", "", "http://127.0.0.1:1/unused")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "dns64.onnx"), resolved)
	})

	t.Run("Download", func(t *testing.T) {
		var requests int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Write([]byte("the weights"))
		}))
		defer srv.Close()

		c, err := New(filepath.Join(t.TempDir(), "nested", "cache"))
		require.NoError(t, err)
		resolved, err := c.Resolve(ctx, "dns64.onnx", "", srv.URL+"/dns64.onnx")
		require.NoError(t, err)
		content, err := os.ReadFile(resolved)
		require.NoError(t, err)
		assert.Equal(t, "the weights", string(content))

		_, err = c.Resolve(ctx, "dns64.onnx", "", srv.URL+"/dns64.onnx")
		require.NoError(t, err)
		assert.Equal(t, 1, requests)
	})

	t.Run("DownloadFailure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusNotFound)
		}))
		defer srv.Close()

		c, err := New(t.TempDir())
		require.NoError(t, err)
		_, err = c.Resolve(ctx, "dns64.onnx", "", srv.URL)
		require.Error(t, err)
		assert.NoFileExists(t, c.Path("dns64.onnx"))
	})
}
