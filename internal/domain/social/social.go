package social

import "context"

type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// IdentityVerifier checks an id_token issued by an external identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (Identity, error)
}
