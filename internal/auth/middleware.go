package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/logger"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
	"github.com/unclebandit/campaign-broadcaster/internal/response"
)

type ctxKey string

const callerKey ctxKey = "caller"

type Middleware struct {
	Verifier *Verifier
	Logger   *zap.Logger
}

// Require rejects requests without a valid token bound to a workspace.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			response.AppError(w, appErrors.ErrUnauthorized)
			return
		}

		claims, err := m.Verifier.ParseAndValidate(token)
		if err != nil {
			logger.OrNop(m.Logger).Debug("rejected token",
				zap.String("path", r.URL.Path), zap.Error(err))
			response.AppError(w, appErrors.ErrUnauthorized)
			return
		}
		if claims.WorkspaceID == "" {
			response.AppError(w, appErrors.ErrUnauthorized)
			return
		}

		ctx := WithCaller(r.Context(), claims.Caller())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

func WithCaller(ctx context.Context, c model.Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFrom returns the authenticated caller stored by Require.
func CallerFrom(ctx context.Context) (model.Caller, bool) {
	c, ok := ctx.Value(callerKey).(model.Caller)
	return c, ok
}
