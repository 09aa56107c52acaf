package identity

import (
	"context"

	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
)

// Session is the authenticated identity attached to a request
type Session struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// Provider is the authentication gate in front of the API. The static
// provider backs single-user demo deployments, the local provider backs
// password sign-in with JWT issuance.
type Provider interface {
	SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error)
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error)
	SignOut(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	CurrentSession(ctx context.Context, accessToken string) (*Session, error)
}
