package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func signIdentity(t *testing.T, secret, tenantID, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"tenant_id": tenantID,
		"user_id":   userID,
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func TestNewService_EmptySecret(t *testing.T) {
	_, err := NewService("")
	assert.Error(t, err)
}

func TestValidateIdentity(t *testing.T) {
	svc, err := NewService("test-secret")
	assert.NoError(t, err)

	claims, err := svc.ValidateIdentity(signIdentity(t, "test-secret", "tenant-1", "manager-1"))
	assert.NoError(t, err)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, "manager-1", claims.ActorUID)
}

func TestValidateIdentity_WrongSecret(t *testing.T) {
	svc, err := NewService("test-secret")
	assert.NoError(t, err)

	_, err = svc.ValidateIdentity(signIdentity(t, "other-secret", "tenant-1", "manager-1"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateIdentity_MissingTenant(t *testing.T) {
	svc, err := NewService("test-secret")
	assert.NoError(t, err)

	claims := jwt.MapClaims{"user_id": "manager-1", "exp": time.Now().Add(time.Hour).Unix()}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	_, err = svc.ValidateIdentity(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDownloadToken_RoundTrip(t *testing.T) {
	svc, err := NewService("test-secret")
	assert.NoError(t, err)

	signed, err := svc.GenerateDownloadToken("tenant-1", "report-1", time.Hour)
	assert.NoError(t, err)

	claims, err := svc.ValidateDownloadToken(signed)
	assert.NoError(t, err)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, "report-1", claims.ReportID)
}

func TestDownloadToken_Expired(t *testing.T) {
	svc, err := NewService("test-secret")
	assert.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	signed, err := svc.GenerateDownloadToken("tenant-1", "report-1", time.Hour)
	assert.NoError(t, err)

	_, err = svc.ValidateDownloadToken(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDownloadToken_RejectsIdentityToken(t *testing.T) {
	svc, err := NewService("test-secret")
	assert.NoError(t, err)

	// An identity token is not a download grant even though the signature
	// checks out.
	_, err = svc.ValidateDownloadToken(signIdentity(t, "test-secret", "tenant-1", "manager-1"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}
