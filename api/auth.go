/*
auth.go - Bearer-token authentication middleware

PURPOSE:
  Guards the /api routes with static bearer tokens from configuration. The
  verifier is an interface so a deployment can swap in an identity-provider
  backed implementation without touching the router.
*/
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenVerifier decides whether a bearer token grants access.
type TokenVerifier interface {
	Verify(token string) bool
}

// StaticVerifier accepts a fixed set of tokens. An empty set accepts
// everything, which is only sane for local development.
type StaticVerifier struct {
	tokens []string
}

// NewStaticVerifier builds a verifier from configured tokens.
func NewStaticVerifier(tokens []string) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

// Permissive reports whether the verifier accepts every request because no
// tokens are configured.
func (v *StaticVerifier) Permissive() bool {
	return len(v.tokens) == 0
}

// Verify reports whether token matches any configured token. Comparison is
// constant-time per candidate.
func (v *StaticVerifier) Verify(token string) bool {
	if len(v.tokens) == 0 {
		return true
	}
	for _, t := range v.tokens {
		if subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
			return true
		}
	}
	return false
}

// RequireAuth rejects requests without a valid "Authorization: Bearer"
// header with 401.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || !verifier.Verify(token) {
				writeError(w, r, http.StatusUnauthorized, "Missing or invalid bearer token", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
