package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Kind is the account kind resolved once at the boundary.
type Kind string

const (
	KindDonor   Kind = "donor"
	KindPatient Kind = "patient"
	KindAdmin   Kind = "admin"
)

func (k Kind) Valid() bool { return k == KindDonor || k == KindPatient || k == KindAdmin }

// Principal is the authenticated caller. ID is the donor or patient public
// id for those kinds and the staff identifier for admins.
type Principal struct {
	Kind Kind
	ID   string
}

func (p Principal) IsAdmin() bool { return p.Kind == KindAdmin }

// Claims carry the principal; the subject is Principal.ID.
type Claims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

const principalKey = "principal"

func IssueToken(secret []byte, p Principal, ttl time.Duration) (string, error) {
	if !p.Kind.Valid() || p.ID == "" {
		return "", errors.New("principal needs a kind and an id")
	}
	now := time.Now()
	claims := &Claims{
		Kind: p.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Authenticate verifies the bearer token and stores the Principal on the context.
func Authenticate(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authorization header is required"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == header {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token format"})
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			}
			if !claims.Kind.Valid() || claims.Subject == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token has no principal"})
			}

			c.Set(principalKey, Principal{Kind: claims.Kind, ID: claims.Subject})
			return next(c)
		}
	}
}

// Authorize admits only the listed kinds; Authenticate must run first.
func Authorize(kinds ...Kind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			}
			for _, k := range kinds {
				if p.Kind == k {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "you do not have permission to access this resource"})
		}
	}
}

func RequireAdmin() echo.MiddlewareFunc { return Authorize(KindAdmin) }

func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}
