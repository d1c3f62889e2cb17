package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("s3cret", "")

	token, err := m.Issue("erinoverview", time.Minute, "steward")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "erinoverview", claims.Subject)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
	assert.Equal(t, []string{"steward"}, claims.Roles)
}

func TestVerifyRejects(t *testing.T) {
	m := NewManager("s3cret", "metactx")

	expired, err := m.Issue("erinoverview", -time.Minute)
	require.NoError(t, err)

	other, err := NewManager("other", "metactx").Issue("erinoverview", time.Minute)
	require.NoError(t, err)

	foreign, err := NewManager("s3cret", "elsewhere").Issue("erinoverview", time.Minute)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "erinoverview"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"wrong key":    other,
		"wrong issuer": foreign,
		"unsigned":     none,
		"not a token":  "abc.def",
		"empty":        "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(token)
			assert.True(t, omerrors.IsUserNotAuthorized(err), "got %v", err)
		})
	}
}

func TestMiddleware(t *testing.T) {
	m := NewManager("s3cret", "")
	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := FromContext(r.Context())
		require.True(t, ok)
		seen = claims.Subject
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_not_authorized"`)

	token, err := m.Issue("garygeeke", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "garygeeke", seen)
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, Authorize(ctx, "anyone"), "no claims means authentication is off")

	ctx = NewContext(ctx, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "garygeeke"}})
	assert.NoError(t, Authorize(ctx, "garygeeke"))
	assert.True(t, omerrors.IsUserNotAuthorized(Authorize(ctx, "erinoverview")))
}
