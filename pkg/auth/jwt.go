package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"

	"github.com/getzep/nlp-annotator-api/config"
	"github.com/getzep/nlp-annotator-api/internal"
)

const (
	JwtAlg      = "HS256"
	TokenIssuer = "nlp-annotator-api"
)

var log = internal.GetLogger()

var ErrSecretNotSet = errors.New(
	"auth secret not set, ensure NLP_API_AUTH_SECRET is set in your environment",
)

// GenerateJWT issues a token for an API client, signed with the configured secret.
// A zero ttl issues a token that does not expire.
func GenerateJWT(cfg *config.Config, ttl time.Duration) (string, error) {
	tokenAuth, err := newTokenAuth(cfg)
	if err != nil {
		return "", err
	}

	claims := map[string]interface{}{"iss": TokenIssuer}
	jwtauth.SetIssuedNow(claims)
	if ttl > 0 {
		jwtauth.SetExpiryIn(claims, ttl)
	}

	_, tokenString, err := tokenAuth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("error generating auth token: %w", err)
	}
	return tokenString, nil
}

// JWTVerifier extracts and verifies bearer tokens. Pair it with jwtauth.Authenticator to
// reject requests without a valid token.
func JWTVerifier(cfg *config.Config) (func(http.Handler) http.Handler, error) {
	tokenAuth, err := newTokenAuth(cfg)
	if err != nil {
		return nil, err
	}
	return jwtauth.Verifier(tokenAuth), nil
}

func newTokenAuth(cfg *config.Config) (*jwtauth.JWTAuth, error) {
	secret := []byte(cfg.Auth.Secret)
	if len(secret) == 0 {
		return nil, ErrSecretNotSet
	}
	return jwtauth.New(JwtAlg, secret, nil), nil
}
