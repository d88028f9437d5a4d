package server

import (
	"net/http"

	"github.com/getzep/nlp-annotator-api/config"
	"github.com/getzep/nlp-annotator-api/pkg/cache"
)

const versionHeader = "X-Annotator-Version"

// ResponseHeaders stamps every response with the server version and echoes the caller's
// transaction id, so a retried request can be matched with the answer it received.
func ResponseHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set(versionHeader, config.VersionString)
		if txn := r.Header.Get(cache.TransactionIDHeader); txn != "" {
			h.Set(cache.TransactionIDHeader, txn)
		}
		next.ServeHTTP(w, r)
	})
}
