package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// RequireAnyScope lets the request through when the caller holds at least
// one of the provided scopes.
func RequireAnyScope(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, s := range required {
		want[s] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, s := range scopesFromCtx(r.Context()) {
				if _, ok := want[s]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeBearerScopeError(w, http.StatusForbidden, required...)
		})
	}
}

// RFC 6750-compliant error response for bearer insufficient_scope. The body
// carries the same JSON shape as every other error response.
func writeBearerScopeError(w http.ResponseWriter, code int, required ...string) {
	scope := strings.Join(required, " ")
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+scope+`"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             "insufficient_scope",
		"error_description": "requires scope: " + scope,
	})
}
