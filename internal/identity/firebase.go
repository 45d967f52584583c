package identity

import (
	"context"
	"fmt"

	apperrors "katagaki/pkg/app_errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseVerifier 以 Firebase Authentication 驗證 ID token
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: initializing firebase app: %v", apperrors.ErrConfiguration, err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: getting firebase auth client: %v", apperrors.ErrConfiguration, err)
	}

	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	verified, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}

	identity := &Identity{UserID: verified.UID}
	if email, ok := verified.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := verified.Claims["name"].(string); ok {
		identity.DisplayName = name
	}
	return identity, nil
}
