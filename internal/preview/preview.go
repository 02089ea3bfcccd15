// Package preview serves a generated site directory over HTTP for local inspection.
package preview

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/patric-chuzhbe/usersite/internal/gzippedhttp"
	"github.com/patric-chuzhbe/usersite/internal/logger"
)

// FirstPage is where "/" redirects to.
const FirstPage = "/1.html"

// New returns the handler serving dir. Cross-origin reads are allowed for
// allowedOrigins so that users.json can be consumed by other local tools.
func New(dir string, allowedOrigins []string) http.Handler {
	files := http.FileServer(http.Dir(dir))

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.GzipResponse,
	)
	router.Get(`/`, func(res http.ResponseWriter, req *http.Request) {
		http.Redirect(res, req, FirstPage, http.StatusTemporaryRedirect)
	})
	router.Get(`/*`, files.ServeHTTP)
	router.Head(`/*`, files.ServeHTTP)

	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	}).Handler(router)
}
