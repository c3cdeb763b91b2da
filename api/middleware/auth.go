package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/shopfront-backend/api/responses"
	"github.com/angelmondragon/shopfront-backend/api/validators"
	pkgAuth "github.com/angelmondragon/shopfront-backend/pkg/auth"
	"github.com/angelmondragon/shopfront-backend/pkg/auth/session"
	"github.com/angelmondragon/shopfront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
)

// Auth requires a valid access token whose session is still live. The
// token comes from the bearer header or the token cookie.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r.Context(), cfg, verifier, validators.ExtractAccessToken(r))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if logg != nil {
				ctx = logg.WithUserID(ctx, UserIDFromContext(ctx))
				ctx = logg.WithActorRole(ctx, RoleFromContext(ctx))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, cfg config.JWTConfig, verifier session.AccessSessionChecker, token string) (context.Context, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid or expired token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	if verifier != nil {
		live, err := verifier.HasSession(ctx, claims.ID)
		switch {
		case err != nil:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		case !live:
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
		}
	}

	ctx = WithUserID(ctx, claims.UserID.String())
	ctx = WithRole(ctx, string(claims.Role))
	return WithAccessID(ctx, claims.ID), nil
}
