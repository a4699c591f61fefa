// Package kinopoisktest serves golden copies of the site's pages so checks can
// run offline.
package kinopoisktest

import (
	"embed"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

//go:embed testdata/*.html
var golden embed.FS

// Queries maps search queries to the golden result page they are answered
// with. Anything else gets the not-found page.
var Queries = map[string]string{
	"Матрица":           "search_matrix.html",
	"Matrix":            "search_matrix.html",
	"Отбросы":           "search_series.html",
	"Остров проклятых":  "search_shutter.html",
	"Леонардо ДиКаприо": "search_dicaprio.html",
}

const NotFoundMessage = "К сожалению, по вашему запросу ничего не найдено..."

// NewServer starts the fake site and closes it when the test ends.
func NewServer(t testing.TB) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			serve(w, "home.html")
			return
		}
		// /film/397667/ -> film_397667.html
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 2 {
			http.NotFound(w, r)
			return
		}
		serve(w, fmt.Sprintf("%s_%s.html", parts[0], parts[1]))
	})
	mux.HandleFunc("/index.php", func(w http.ResponseWriter, r *http.Request) {
		name, ok := Queries[r.URL.Query().Get("kp_query")]
		if !ok {
			name = "search_notfound.html"
		}
		serve(w, name)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func serve(w http.ResponseWriter, name string) {
	b, err := golden.ReadFile("testdata/" + name)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(b)
}
