package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/wirebazaar/wirebazaar-backend/api/responses"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
)

// ClientKeyHeader carries the browser-generated key that scopes a cart.
const ClientKeyHeader = "X-Client-Key"

// clientKeyQuery is accepted for EventSource connections, which cannot set headers.
const clientKeyQuery = "client_key"

var clientKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// ClientKey requires a well-formed client key and stores it in the context.
func ClientKey(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(ClientKeyHeader))
			if key == "" {
				key = strings.TrimSpace(r.URL.Query().Get(clientKeyQuery))
			}
			if key == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "client key required").
					WithDetails(map[string]string{"header": ClientKeyHeader}))
				return
			}
			if !clientKeyPattern.MatchString(key) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "malformed client key"))
				return
			}
			ctx := WithClientKey(r.Context(), key)
			if logg != nil {
				ctx = logg.WithClientKey(ctx, key)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
