package orgs

import (
	"context"
	"net/http"
	"strings"

	"orgsvc/internal/token"
	"orgsvc/pkg/problems"
)

type ctxKey string

const ctxKeyClaims ctxKey = "claims"

// genericAuthDetail is the one detail string every bearer failure gets:
// missing header, bad signature, expired token and malformed claims are
// indistinguishable from outside.
const genericAuthDetail = "could not validate credentials"

// bearerAuth validates the bearer token and stashes its claims in context.
func (a *App) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			problems.Write(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", genericAuthDetail)
			return
		}
		raw := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := a.tokens.Validate(raw)
		if err != nil {
			a.log.Debugw("token rejected", "err", err)
			problems.Write(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", genericAuthDetail)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyClaims, claims)))
	})
}

// claimsFrom returns the validated claims placed by bearerAuth.
func claimsFrom(ctx context.Context) (token.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(token.Claims)
	return c, ok
}
