package google

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

// Verifier validates Google-issued ID tokens for federated login.
type Verifier struct {
	ClientID string
}

// Profile is the subset of token claims the account service needs. Accounts
// are never auto-provisioned from it; the email must match an existing user.
type Profile struct {
	Email string
}

// Verify validates the token's signature, expiry, and audience against the
// configured OAuth client id, then extracts the holder's email.
func (v Verifier) Verify(ctx context.Context, token string) (Profile, error) {
	if v.ClientID == "" {
		return Profile{}, errors.New("google client id not configured")
	}

	payload, err := idtoken.Validate(ctx, token, v.ClientID)
	if err != nil {
		return Profile{}, err
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return Profile{}, errors.New("email not present in id token")
	}

	return Profile{Email: email}, nil
}
