package transport

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"storefront/internal/middleware"
)

// SPAHandler serves files from dir and falls back to index.html for paths
// that do not name a file, so client-side routes load the app
func SPAHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			middleware.RespondWithError(w, http.StatusNotFound, "route not found")
			return
		}

		clean := path.Clean("/" + r.URL.Path)
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean)))
		if err != nil || info.IsDir() {
			http.ServeFile(w, r, index)
			return
		}

		files.ServeHTTP(w, r)
	})
}
