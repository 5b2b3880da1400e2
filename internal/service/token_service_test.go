package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campusconnect-api/internal/models"
)

func signTestToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateToken(t *testing.T) {
	verifier := NewTokenVerifier(TokenConfig{Secret: "secret", Issuer: "campusconnect"})
	claims := models.JWTClaims{
		UserID:     "u-parent",
		Role:       models.RoleParent,
		SchoolID:   testSchool,
		FullName:   "Mr. Sharma",
		StudentIDs: []string{"STU1"},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "campusconnect",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	got, err := verifier.ValidateToken(signTestToken(t, "secret", claims))
	require.NoError(t, err)
	assert.Equal(t, parent, got.Scope())
}

func TestValidateTokenRejects(t *testing.T) {
	verifier := NewTokenVerifier(TokenConfig{Secret: "secret", Issuer: "campusconnect"})
	valid := models.JWTClaims{
		UserID:   "u-1",
		Role:     models.RolePrincipal,
		SchoolID: testSchool,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "campusconnect",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"
	badRole := valid
	badRole.Role = "JANITOR"
	noSchool := valid
	noSchool.SchoolID = ""

	cases := map[string]string{
		"wrong secret": signTestToken(t, "other", valid),
		"expired":      signTestToken(t, "secret", expired),
		"issuer":       signTestToken(t, "secret", wrongIssuer),
		"role":         signTestToken(t, "secret", badRole),
		"school":       signTestToken(t, "secret", noSchool),
		"garbage":      "not.a.token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.ValidateToken(token)
			requireAppError(t, err, "UNAUTHORIZED")
		})
	}
}
