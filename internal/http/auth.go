package http

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"budgetplanner/internal/cache"
	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
)

// TokenVerifier resolves a bearer token into the acting user and the
// token's expiry.
type TokenVerifier interface {
	Verify(raw string) (core.Identity, time.Time, error)
}

// authenticator verifies bearer tokens, remembering verified tokens until
// they expire so repeated requests skip signature checks.
type authenticator struct {
	tokens TokenVerifier
	cache  cache.Cache[core.Identity]
}

func newAuthenticator(tokens TokenVerifier, c cache.Cache[core.Identity]) *authenticator {
	return &authenticator{tokens: tokens, cache: c}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (a *authenticator) identify(r *http.Request) (core.Identity, error) {
	raw, ok := bearerToken(r)
	if !ok {
		return core.Identity{}, core.ErrUnauthenticated
	}

	sum := sha256.Sum256([]byte(raw))
	key := hex.EncodeToString(sum[:])
	if who, ok := a.cache.Get(key); ok {
		return who, nil
	}

	who, expiresAt, err := a.tokens.Verify(raw)
	if err != nil {
		return core.Identity{}, core.ErrUnauthenticated
	}
	a.cache.SetUntil(key, who, expiresAt)
	return who, nil
}

// authedHandler is a handler that runs only for authenticated requests.
type authedHandler func(w http.ResponseWriter, r *http.Request, actor core.Identity)

// requireAuth rejects requests without a valid bearer token with 401 and
// tags the request logger with the user id.
func (s *Server) requireAuth(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, err := s.auth.identify(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="budgetplanner"`)
			writeError(w, r, err)
			return
		}
		ctx := log.NewContext(r.Context(), log.FromContext(r.Context()).With(log.FieldUserID, who.UserID))
		h(w, r.WithContext(ctx), who)
	}
}
