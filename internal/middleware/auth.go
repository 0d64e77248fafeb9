package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	PrincipalKey   = "principal"
	PermissionsKey = "permissions"
)

// AuthMiddleware verifies Clerk session tokens and exposes the caller as a
// model.Principal.
type AuthMiddleware struct {
	server *server.Server
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{server: s}
}

// RequireAuth rejects requests without a valid bearer token.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return auth.verify(func(c echo.Context) error {
		claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
		if !ok {
			GetLogger(c).Warn().
				Str("function", "RequireAuth").
				Msg("could not get session claims from context")
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		auth.setPrincipal(c, claims)
		return next(c)
	})
}

// OptionalAuth identifies the caller when a token is present and lets
// anonymous requests through. Guest carts rely on it. An invalid token is
// still rejected.
func (auth *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return auth.verify(func(c echo.Context) error {
		if claims, ok := clerk.SessionClaimsFromContext(c.Request().Context()); ok {
			auth.setPrincipal(c, claims)
		}
		return next(c)
	})
}

// RequireAdmin must be chained after RequireAuth.
func (auth *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := GetPrincipal(c)
		if !ok {
			return errs.NewUnauthorizedError("Unauthorized", false)
		}
		if !p.IsAdmin {
			GetLogger(c).Warn().
				Str("user_id", p.ExternalID).
				Str("user_role", p.Role).
				Msg("admin route denied")
			return errs.NewForbiddenError("You do not have access to this resource", true)
		}
		return next(c)
	}
}

func (auth *AuthMiddleware) verify(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(auth.unauthorized)),
		),
	)(next)
}

// unauthorized runs outside Echo, so it writes the error body itself.
func (auth *AuthMiddleware) unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body := errs.NewUnauthorizedError("Unauthorized", false)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		auth.server.Logger.Error().Err(err).Str("function", "RequireAuth").Msg("failed to write JSON response")
		return
	}

	auth.server.Logger.Warn().
		Str("function", "RequireAuth").
		Str("path", r.URL.Path).
		Str("request_id", w.Header().Get(RequestIDHeader)).
		Msg("session token rejected")
}

func (auth *AuthMiddleware) setPrincipal(c echo.Context, claims *clerk.SessionClaims) {
	p := model.Principal{
		ExternalID: claims.Subject,
		Role:       claims.ActiveOrganizationRole,
		IsAdmin:    claims.ActiveOrganizationRole != "" && claims.ActiveOrganizationRole == auth.server.Config.Auth.AdminRole,
	}

	c.Set(UserIDKey, p.ExternalID)
	c.Set(UserRoleKey, p.Role)
	c.Set(PermissionsKey, claims.Claims.ActiveOrganizationPermissions)
	c.Set(PrincipalKey, p)

	l := GetLogger(c).With().Str("user_id", p.ExternalID).Logger()
	setLogger(c, &l)
}

// GetPrincipal returns the authenticated caller, if any.
func GetPrincipal(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(model.Principal)
	return p, ok && p.ExternalID != ""
}
