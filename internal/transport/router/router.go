package router

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/akbgmi35-maker/Vhist/internal/transport/handler"
)

func NewRouter(h *handler.Handler, artifactRoot string) chi.Router {
	r := chi.NewRouter()

	r.Post("/upload", h.UploadVideo)
	r.Get("/playback/{slug}", h.Playback)

	// Manifests and segments are served straight off the artifact
	// root; players fetch them directly.
	r.Handle("/videos/*", http.StripPrefix("/videos/", serveArtifacts(artifactRoot)))

	return r
}

// serveArtifacts serves individual files only. Directory requests are
// refused: a listing would enumerate every job slug and the raw inputs
// retained for failed jobs, none of which are public.
func serveArtifacts(root string) http.Handler {
	fs := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") || r.URL.Path == "" {
			http.NotFound(w, r)
			return
		}
		local := filepath.Join(root, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(local); err == nil && info.IsDir() {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
