// Package site serves the embedded quiz page.
package site

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register serves the embedded page and its assets for every path the API
// does not claim.
func Register(r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	files := http.FileServer(FS())
	r.Get("/*", files.ServeHTTP)
	r.Head("/*", files.ServeHTTP)
}
