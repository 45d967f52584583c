package identity

import (
	"context"
	"fmt"

	"katagaki/config"
	apperrors "katagaki/pkg/app_errors"
)

const (
	ModePassthrough = "passthrough"
	ModeJWT         = "jwt"
	ModeFirebase    = "firebase"
)

// Identity 由 identity provider 驗證後取得的呼叫者
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

// Verifier 驗證 bearer token，失敗時回傳 ErrUnauthorized
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

func NewVerifier(ctx context.Context, cfg config.AuthConfig) (Verifier, error) {
	switch cfg.Mode {
	case ModePassthrough, "":
		return NewPassthroughVerifier(), nil
	case ModeJWT:
		return NewJWTVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer), nil
	case ModeFirebase:
		return NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	}
	return nil, fmt.Errorf("%w: unknown auth mode %q", apperrors.ErrConfiguration, cfg.Mode)
}

// PassthroughVerifier 開發用：token 本身就是 uid
type PassthroughVerifier struct{}

func NewPassthroughVerifier() *PassthroughVerifier {
	return &PassthroughVerifier{}
}

func (v *PassthroughVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if !isWellFormedUID(token) {
		return nil, apperrors.ErrUnauthorized
	}
	return &Identity{UserID: token}, nil
}

func isWellFormedUID(uid string) bool {
	if uid == "" || len(uid) > 128 {
		return false
	}
	for _, r := range uid {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == ':':
		default:
			return false
		}
	}
	return true
}
