package oidc

import (
	"context"
	"errors"
	"fmt"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/social"
	"github.com/coreos/go-oidc/v3/oidc"
)

const GoogleIssuer = "https://accounts.google.com"

type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// New discovers the provider at issuer and verifies tokens issued for clientID.
func New(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	if clientID == "" {
		return nil, errors.New("oidc client id is empty")
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("init oidc provider %s: %w", issuer, err)
	}
	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func NewWithVerifier(v *oidc.IDTokenVerifier) *Verifier {
	return &Verifier{verifier: v}
}

func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (social.Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return social.Identity{}, fmt.Errorf("id_token verification failed: %w", err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return social.Identity{}, fmt.Errorf("id_token claims parse failed: %w", err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return social.Identity{}, errors.New("id_token missing required claims")
	}

	return social.Identity{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}
