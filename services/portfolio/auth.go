package portfolio

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// actorHeader carries the authenticated email of the caller. Membership in
// the allow-list is an access gate, not a security control; there is no
// credential verification behind it.
const actorHeader = "X-Actor-Email"

type actorContextKey struct{}

// withActor stores the authenticated actor identity on the context so every
// CRUD and audit call receives it explicitly instead of reading ambient
// session state.
func withActor(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, email)
}

// actorFromContext returns the authenticated actor, or "" when the request
// did not pass through the allow-list middleware.
func actorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey{}).(string)
	return actor
}

// requireActor enforces the email allow-list and injects the actor identity
// into the request context.
func (a *API) requireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := strings.ToLower(strings.TrimSpace(r.Header.Get(actorHeader)))
		if email == "" {
			respondError(w, http.StatusUnauthorized, errors.New("missing "+actorHeader+" header"))
			return
		}
		if _, ok := a.allowed[email]; !ok {
			respondError(w, http.StatusUnauthorized, errors.New("email is not on the allow-list"))
			return
		}

		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), email)))
	})
}
