package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/infrastructure/config"
)

// Staff roles accepted on the back-office API
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// StaffRoles lists the roles allowed to drive order transitions
var StaffRoles = []string{RoleAdmin, RoleStaff}

// Common errors
var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token has expired")
	ErrTokenNotYetValid  = errors.New("token is not yet valid")
	ErrInvalidClaims     = errors.New("invalid token claims")
	ErrInvalidIssuer     = errors.New("token issued by an unknown party")
	ErrMissingUserID     = errors.New("missing user id in claims")
	ErrInsufficientRole  = errors.New("token does not carry a staff role")
	ErrSigningKeyMissing = errors.New("jwt secret is not configured")
)

// StaffClaims are the claims of a storefront access token
type StaffClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
}

// Actor names the staff member for logs and the transition journal
func (c *StaffClaims) Actor() string {
	if c.Email != "" {
		return c.Email
	}
	return c.UserID
}

// IsStaff reports whether the claims carry a back-office role
func (c *StaffClaims) IsStaff() bool {
	return slices.Contains(StaffRoles, c.Role)
}

// GetExpiresAtTime returns the token's expiration time as time.Time
func (c *StaffClaims) GetExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// JWTService validates storefront-issued staff tokens with the shared secret
type JWTService struct {
	secret []byte
	issuer string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Enabled reports whether a signing secret is configured
func (s *JWTService) Enabled() bool {
	return len(s.secret) > 0
}

// IssueInput contains input for token generation
type IssueInput struct {
	UserID string
	Email  string
	Name   string
	Role   string
	TTL    time.Duration
}

// Issue signs a staff token. The storefront is the real issuer; this is
// used by tooling and tests.
func (s *JWTService) Issue(in IssueInput) (string, error) {
	if !s.Enabled() {
		return "", ErrSigningKeyMissing
	}
	if in.TTL <= 0 {
		in.TTL = time.Hour
	}
	now := time.Now()
	claims := &StaffClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   in.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(in.TTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: in.UserID,
		Email:  in.Email,
		Name:   in.Name,
		Role:   in.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateStaffToken validates a token and requires a staff role
func (s *JWTService) ValidateStaffToken(tokenString string) (*StaffClaims, error) {
	if !s.Enabled() {
		return nil, ErrSigningKeyMissing
	}

	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*StaffClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	// storefront tokens may omit iss; a present one must match
	if claims.Issuer != "" && s.issuer != "" && claims.Issuer != s.issuer {
		return nil, ErrInvalidIssuer
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	if !claims.IsStaff() {
		return nil, ErrInsufficientRole
	}

	return claims, nil
}
