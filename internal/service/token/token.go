// Package token signs and validates the HS256 tokens this core relies on:
// identity tokens asserted by the platform's auth collaborator, and the
// time-bounded download tokens stamped onto report URLs.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// IdentityClaims carry the tenant and actor this core attributes audit
// entries to. Issuance is the auth collaborator's job; we only validate.
type IdentityClaims struct {
	TenantID string
	ActorUID string
}

// DownloadClaims scope a report download token.
type DownloadClaims struct {
	TenantID string
	ReportID string
}

// Service validates identity tokens and signs download tokens with a shared
// HS256 secret.
type Service struct {
	secret []byte
	now    func() time.Time
}

// NewService creates a token service.
func NewService(secret string) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret must not be empty")
	}
	return &Service{secret: []byte(secret), now: time.Now}, nil
}

// ValidateIdentity parses a bearer token into identity claims.
func (s *Service) ValidateIdentity(tokenString string) (*IdentityClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	tenantID, ok := claims["tenant_id"].(string)
	if !ok || tenantID == "" {
		return nil, ErrInvalidToken
	}
	actorUID, ok := claims["user_id"].(string)
	if !ok || actorUID == "" {
		return nil, ErrInvalidToken
	}
	return &IdentityClaims{TenantID: tenantID, ActorUID: actorUID}, nil
}

// GenerateDownloadToken signs a token granting access to one report for ttl.
func (s *Service) GenerateDownloadToken(tenantID, reportID string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"tenant_id": tenantID,
		"report_id": reportID,
		"type":      "report_download",
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign download token: %w", err)
	}
	return signed, nil
}

// ValidateDownloadToken parses and checks a report download token.
func (s *Service) ValidateDownloadToken(tokenString string) (*DownloadClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if t, ok := claims["type"].(string); !ok || t != "report_download" {
		return nil, ErrInvalidToken
	}
	tenantID, ok := claims["tenant_id"].(string)
	if !ok || tenantID == "" {
		return nil, ErrInvalidToken
	}
	reportID, ok := claims["report_id"].(string)
	if !ok || reportID == "" {
		return nil, ErrInvalidToken
	}
	return &DownloadClaims{TenantID: tenantID, ReportID: reportID}, nil
}

func (s *Service) parse(tokenString string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
