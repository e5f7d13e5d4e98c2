package middleware

import (
	"net/http"
	"strings"

	"github.com/Station-Manager/apibooster/identity"
	"github.com/golang-jwt/jwt/v4"
)

const bearerPrefix = "Bearer "

// AuthOptions customise Authenticate.
type AuthOptions struct {
	// NameClaimType is the claim holding the user name. Defaults to "name".
	NameClaimType string
	// Parser validates tokens. Defaults to jwt.NewParser().
	Parser *jwt.Parser
}

// Authenticate parses a Bearer token and stores the resulting identity in
// the request context. Missing or invalid tokens leave the request anonymous;
// rejecting them is left to the handlers.
func Authenticate(keyFunc jwt.Keyfunc, configure ...func(*AuthOptions)) func(http.Handler) http.Handler {
	opts := &AuthOptions{NameClaimType: identity.NameClaimType}
	for _, fn := range configure {
		if fn != nil {
			fn(opts)
		}
	}
	if opts.Parser == nil {
		opts.Parser = jwt.NewParser()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			token, err := opts.Parser.ParseWithClaims(raw, jwt.MapClaims{}, keyFunc)
			if err != nil || !token.Valid {
				next.ServeHTTP(w, r)
				return
			}

			ctx := identity.NewContext(r.Context(), identity.FromJWT(token, opts.NameClaimType))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) <= len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(bearerPrefix):]), true
}
