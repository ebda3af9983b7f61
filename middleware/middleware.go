package middleware

import (
	"context"
	"net/http"

	"collabstudy/identity"
	"collabstudy/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type contextKey string

// ClaimsKey holds the *identity.Claims of the verified caller.
const ClaimsKey contextKey = "claims"

// Auth gates protected routes behind the identity verifier.
type Auth struct {
	verifier identity.Verifier
	logger   *zap.Logger
}

func NewAuth(verifier identity.Verifier, logger *zap.Logger) *Auth {
	return &Auth{verifier: verifier, logger: logger}
}

// Authenticate rejects with 401 when no usable bearer credential is
// present and 403 when the trust service cannot verify it. On success the
// decoded claims ride along in the request context.
func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		header := r.Header.Get("Authorization")
		if header == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "unauthorized access")
			return
		}

		if len(header) < 8 || header[:7] != "Bearer " || header[7:] == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "unauthorized access")
			return
		}

		claims, err := a.verifier.Verify(r.Context(), header[7:])
		if err != nil {
			a.logger.Debug("token verification failed", zap.Error(err))
			utils.RespondWithError(w, http.StatusForbidden, "forbidden access")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next(w, r.WithContext(ctx), ps)
	}
}

// ClaimsFromContext returns the verified claims attached by Authenticate.
func ClaimsFromContext(ctx context.Context) (*identity.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*identity.Claims)
	return claims, ok
}
