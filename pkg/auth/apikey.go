package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	"github.com/getzep/nlp-annotator-api/config"
)

const APIKeyHeader = "X-API-Key"

// APIKeyAuthenticator rejects requests that do not present apiKey, either as a bearer
// token or in the X-API-Key header. An empty apiKey lets every request through.
func APIKeyAuthenticator(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(APIKeyHeader)
			if token == "" {
				token = bearerToken(r)
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// Middlewares returns the authentication middlewares for the configured mode: JWT when
// auth is required, else an API key check when a key is set, else nothing.
func Middlewares(cfg *config.Config) chi.Middlewares {
	switch {
	case cfg.Auth.Required:
		verifier, err := JWTVerifier(cfg)
		if err != nil {
			log.Fatal(err)
		}
		log.Info("JWT authentication required")
		return chi.Middlewares{verifier, jwtauth.Authenticator}
	case cfg.Auth.APIKey != "":
		log.Info("API key authentication required")
		return chi.Middlewares{APIKeyAuthenticator(cfg.Auth.APIKey)}
	default:
		log.Info("authentication disabled, accepting anonymous requests")
		return chi.Middlewares{}
	}
}
