package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/auth"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/backend"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/logger"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	ActorKey      = "actor"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// errMissingToken is reported when a required token is absent
var errMissingToken = errors.New("missing bearer token")

// JWTMiddlewareConfig holds configuration for the staff auth middleware
type JWTMiddlewareConfig struct {
	// JWTService validates tokens. Without a secret, tokens are forwarded
	// to the storefront unchecked.
	JWTService *auth.JWTService
	// Required rejects requests that carry no bearer token
	Required bool
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// Optional callback if token is invalid (default: JSON 401/403)
	OnError func(c *gin.Context, err error)
	// Logger for middleware logging
	Logger *zap.Logger
}

// StaffAuthMiddleware authenticates back-office staff. A valid bearer token
// is placed on the request context so upstream calls act as that staff
// member, and the staff identity becomes the transition actor.
func StaffAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			if cfg.Required {
				handleAuthError(c, cfg, errMissingToken)
				return
			}
			// upstream calls fall back to the service token
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken)
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken)
			return
		}

		ctx := backend.WithAccessToken(c.Request.Context(), tokenString)

		if cfg.JWTService != nil && cfg.JWTService.Enabled() {
			claims, err := cfg.JWTService.ValidateStaffToken(tokenString)
			if err != nil {
				handleAuthError(c, cfg, err)
				return
			}

			actor := claims.Actor()
			c.Set(JWTClaimsKey, claims)
			c.Set(JWTUserIDKey, claims.UserID)
			c.Set(ActorKey, actor)
			ctx = logger.WithActor(ctx, actor)

			cfg.Logger.Debug("Staff authenticated",
				zap.String("user_id", claims.UserID),
				zap.String("role", claims.Role),
			)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// handleAuthError answers 401, or 403 for a valid non-staff token
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	cfg.Logger.Warn("Staff authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)

	status := http.StatusUnauthorized
	code := dto.ErrCodeUnauthorized
	message := "Authentication required"

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		message = "Your session has expired, please sign in again"
	case errors.Is(err, auth.ErrInsufficientRole):
		status = http.StatusForbidden
		code = dto.ErrCodeForbidden
		message = "Staff access is required"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidIssuer),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingUserID):
		code = dto.ErrCodeTokenInvalid
		message = "Invalid token"
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves staff claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.StaffClaims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if staff, ok := claims.(*auth.StaffClaims); ok {
			return staff
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from JWT claims in context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetActor returns the acting staff member, or "" for unauthenticated calls
func GetActor(c *gin.Context) string {
	return c.GetString(ActorKey)
}
