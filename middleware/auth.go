package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-marketplace/models"
	"go-marketplace/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// ClaimsFromContext extracts the authenticated user's claims from a request
// context.
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// tokenFromRequest looks for the session token in the Authorization header
// first and falls back to the "token" cookie.
func tokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

// AuthMiddleware verifies session tokens and attaches user information to the
// request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := tokenFromRequest(r)
		if tokenStr == "" {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication token missing")
			return
		}

		claims, err := utils.ParseJWT(tokenStr)
		if err != nil {
			utils.RespondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware ensures that the user has admin privileges.
func AdminMiddleware(next http.Handler) http.Handler {
	return requireRoles(next, models.RoleAdmin)
}

// SellerMiddleware ensures that the user is a seller or an admin.
func SellerMiddleware(next http.Handler) http.Handler {
	return requireRoles(next, models.RoleSeller, models.RoleAdmin)
}

func requireRoles(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				next.ServeHTTP(w, r)
				return
			}
		}
		utils.RespondError(w, http.StatusForbidden, "Forbidden: insufficient role")
	})
}
