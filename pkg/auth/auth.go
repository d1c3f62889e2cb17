// Package auth issues and verifies the bearer tokens that identify callers
// of the metadata server.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ajitpratap0/metactx/pkg/api"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const contextKeyClaims contextKey = "claims"

// DefaultIssuer is used when a Manager is created without one.
const DefaultIssuer = "metactx"

// Claims are the token claims. The subject is the user identifier.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// Manager creates and verifies HS256 tokens with one signing key.
type Manager struct {
	key    []byte
	method jwt.SigningMethod
	issuer string
}

// NewManager creates a manager for the shared secret.
func NewManager(secret, issuer string) *Manager {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &Manager{
		key:    []byte(secret),
		method: jwt.SigningMethodHS256,
		issuer: issuer,
	}
}

// Issue signs a token for subject valid for ttl.
func (m *Manager) Issue(subject string, ttl time.Duration, roles ...string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: roles,
	}
	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.key)
	if err != nil {
		return "", omerrors.Wrap(err, omerrors.ErrorTypeInternal, "failed to sign token")
	}
	return signed, nil
}

// getKey refuses tokens signed with any other algorithm, including none.
func (m *Manager) getKey(unverified *jwt.Token) (interface{}, error) {
	if meth := unverified.Method; meth == nil || meth.Alg() != m.method.Alg() {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return m.key, nil
}

// Verify parses and validates a signed token.
func (m *Manager) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, m.getKey,
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{m.method.Alg()}))
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeUserNotAuthorized, "token validation failed")
	}
	if claims.Subject == "" {
		return nil, omerrors.UserNotAuthorized("", "token has no subject")
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// claims of accepted ones in the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w, omerrors.UserNotAuthorized("", "missing bearer token"))
			return
		}
		claims, err := m.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			unauthorized(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), claims)))
	})
}

func unauthorized(w http.ResponseWriter, err error) {
	resp := api.NewErrorResponse(err)
	resp.RelatedHTTPCode = http.StatusUnauthorized
	api.WriteJSON(w, http.StatusUnauthorized, resp)
}

// NewContext returns ctx carrying claims.
func NewContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKeyClaims, claims)
}

// FromContext returns the verified claims, if any.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKeyClaims).(*Claims)
	return claims, ok
}

// Authorize checks that the verified subject, when there is one, is the
// user the request acts for.
func Authorize(ctx context.Context, userID string) error {
	claims, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	if claims.Subject != userID {
		return omerrors.UserNotAuthorized(userID, "token subject "+claims.Subject+" may not act for user "+userID)
	}
	return nil
}
