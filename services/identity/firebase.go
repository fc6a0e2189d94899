package identity

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// FirebaseProvider signs users in with Firebase Authentication: passwords are
// checked through the Identity Toolkit API and accounts are managed with the
// Admin SDK.
type FirebaseProvider struct {
	toolkit *identitytoolkit.Service
	auth    *auth.Client
}

func NewFirebaseProvider(ctx context.Context, apiKey string, authClient *auth.Client) (*FirebaseProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("firebase web API key is required")
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identitytoolkit: %w", err)
	}
	return &FirebaseProvider{toolkit: svc, auth: authClient}, nil
}

func (p *FirebaseProvider) SignInWithPassword(ctx context.Context, email, password string) (*Credentials, error) {
	resp, err := p.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, asAuthError("signIn", err, MsgLoginFailed)
	}
	return &Credentials{
		UID:          resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

func (p *FirebaseProvider) SignUpWithPassword(ctx context.Context, email, password string) (*Credentials, error) {
	if p.auth == nil {
		return nil, &AuthError{Op: "signUp", Message: MsgSignupFailed, Err: fmt.Errorf("firebase admin client not configured")}
	}
	params := (&auth.UserToCreate{}).Email(email).Password(password)
	if _, err := p.auth.CreateUser(ctx, params); err != nil {
		return nil, asAuthError("signUp", err, MsgSignupFailed)
	}
	return p.SignInWithPassword(ctx, email, password)
}

func (p *FirebaseProvider) RevokeSessions(ctx context.Context, uid string) error {
	if p.auth == nil {
		return nil
	}
	return p.auth.RevokeRefreshTokens(ctx, uid)
}
