package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akbgmi35-maker/Vhist/internal/config"
	"github.com/akbgmi35-maker/Vhist/internal/transport/handler"
)

func TestStaticArtifactServing(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "abc123de"), 0o755))
	manifest := "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=4500000\nv0.m3u8\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "abc123de", "master.m3u8"), []byte(manifest), 0o644))

	r := NewRouter(handler.New(nil, config.NewConfig()), root)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos/abc123de/master.m3u8", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, manifest, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos/zzzzzzzz/master.m3u8", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticServingHidesDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "secretjb"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secretjb", "raw-1-sample.mp4"), []byte("raw"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secretjb", "v0_seg0.ts"), []byte("seg"), 0o644))

	r := NewRouter(handler.New(nil, config.NewConfig()), root)

	// Neither the artifact root nor a job directory may list its
	// contents; slugs and retained raw inputs are not public.
	for _, url := range []string{"/videos/", "/videos/secretjb/", "/videos/secretjb"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, "GET %s must not enumerate artifacts", url)
		assert.NotContains(t, rec.Body.String(), "secretjb/", "GET %s leaked a slug", url)
	}

	// Files inside a job directory stay reachable.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos/secretjb/v0_seg0.ts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
