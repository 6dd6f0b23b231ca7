package auth

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrInvalidCredentials is returned for any credential mismatch. The reason
// (unknown user vs. wrong password) is deliberately not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims describe an authenticated caller.
type Claims struct {
	Subject string
}

// Authenticator validates credentials and returns claims for the caller.
// It isolates the credential check so the static placeholder below can be
// swapped for a real identity provider without touching the document API.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*Claims, error)
}

// staticAuthenticator checks against a single credential pair fixed at
// startup. Placeholder for a real identity provider.
type staticAuthenticator struct {
	username string
	password string
}

// NewStatic returns an Authenticator accepting exactly one username and
// password.
func NewStatic(username, password string) Authenticator {
	return &staticAuthenticator{username: username, password: password}
}

func (a *staticAuthenticator) Authenticate(_ context.Context, username, password string) (*Claims, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}
	return &Claims{Subject: username}, nil
}
