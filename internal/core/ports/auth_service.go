package ports

import (
	"context"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
)

// RegisterInput is the payload of the registration endpoint.
type RegisterInput struct {
	Username string
	Password string
	Email    string
}

// TokenPair is what a successful login returns.
type TokenPair struct {
	Access  string
	Refresh string
}

// RefreshResult carries the new access token and, when rotation is on, a new
// refresh token.
type RefreshResult struct {
	Access  string
	Refresh string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	ObtainToken(ctx context.Context, username, password string) (*TokenPair, error)
	RefreshToken(ctx context.Context, refresh string) (*RefreshResult, error)
	VerifyToken(ctx context.Context, token string) error
	BlacklistToken(ctx context.Context, refresh string) error
	// Authenticate validates an access token and returns the caller.
	Authenticate(ctx context.Context, access string) (domain.Identity, error)
}
