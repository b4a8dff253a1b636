package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/codestreak/models"
	"github.com/cppla/codestreak/services"
	"github.com/cppla/codestreak/utils"
)

// contextSessionKey stores the authenticated *Session in the gin context.
const contextSessionKey = "session"

// Session is the authenticated caller of a request.
type Session struct {
	UserID string
	Email  string
	Token  string
}

// CurrentSession returns the request's session, if the request is authenticated.
func CurrentSession(ctx *gin.Context) (*Session, bool) {
	v, ok := ctx.Get(contextSessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok && s != nil
}

// WithSession attaches s to the request context.
func WithSession(ctx *gin.Context, s *Session) {
	ctx.Set(contextSessionKey, s)
}

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s, status, code, msg := authenticate(ctx)
		if s == nil {
			utils.Error(ctx, status, code, msg)
			ctx.Abort()
			return
		}
		WithSession(ctx, s)
		ctx.Next()
	}
}

// OptionalAuth attaches a session when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.GetHeader("Authorization") != "" {
			if s, _, _, _ := authenticate(ctx); s != nil {
				WithSession(ctx, s)
			}
		}
		ctx.Next()
	}
}

// AdminRequired rejects sessions that do not hold the admin role. Must run after AuthRequired.
func AdminRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s, ok := CurrentSession(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
			ctx.Abort()
			return
		}
		admin, err := services.HasRole(ctx.Request.Context(), db, s.UserID, models.RoleAdmin)
		if err != nil {
			utils.Sugar.Errorw("role lookup failed", "user_id", s.UserID, "error", err)
			utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load roles")
			ctx.Abort()
			return
		}
		if !admin {
			utils.Error(ctx, http.StatusForbidden, 40301, "You need admin privileges to access this page.")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func authenticate(ctx *gin.Context) (*Session, int, int, string) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return nil, http.StatusUnauthorized, 40101, "authorization header missing"
	}

	tokenString, ok := BearerToken(authHeader)
	if !ok {
		return nil, http.StatusUnauthorized, 40102, "invalid authorization header format"
	}

	if utils.IsTokenBlacklisted(tokenString) {
		return nil, http.StatusUnauthorized, 40104, "token revoked"
	}

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		return nil, http.StatusUnauthorized, 40105, "invalid token"
	}

	return &Session{UserID: claims.UserID, Email: claims.Email, Token: tokenString}, 0, 0, ""
}
