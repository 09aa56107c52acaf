package identity

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StaticUserID is the fixed identity every static-mode sign-in resolves to
var StaticUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

const (
	staticEmail      = "demo@company.com"
	staticFullName   = "Demo User"
	staticDepartment = "Development"
)

// StaticProvider signs every request in as the fixed demo identity.
// No credentials are checked and no tokens are issued; the JWT
// middleware is bypassed in this mode.
type StaticProvider struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewStaticProvider creates a new StaticProvider
func NewStaticProvider(userRepo identity.UserRepository, logger *zap.Logger) *StaticProvider {
	return &StaticProvider{
		userRepo: userRepo,
		logger:   logger,
	}
}

// SignIn resolves to the demo identity regardless of the credentials sent
func (p *StaticProvider) SignIn(ctx context.Context, _ SignInRequest) (*AuthResponse, error) {
	user, err := p.ensureProfile(ctx)
	if err != nil {
		return nil, err
	}

	user.RecordLogin()
	if err := p.userRepo.Save(ctx, user); err != nil {
		p.logger.Error("Failed to record demo sign-in", zap.Error(err))
	}

	return &AuthResponse{User: ToUserResponse(user)}, nil
}

// SignUp succeeds without creating anything and yields the demo identity
func (p *StaticProvider) SignUp(ctx context.Context, _ SignUpRequest) (*AuthResponse, error) {
	user, err := p.ensureProfile(ctx)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: ToUserResponse(user)}, nil
}

// SignOut is a no-op in static mode
func (p *StaticProvider) SignOut(context.Context, string) error {
	return nil
}

// Refresh is not available in static mode
func (p *StaticProvider) Refresh(context.Context, string) (*auth.TokenPair, error) {
	return nil, shared.NewDomainError("UNSUPPORTED_AUTH_OPERATION", "Token refresh is not available in static mode")
}

// CurrentSession returns the demo session regardless of the token sent
func (p *StaticProvider) CurrentSession(ctx context.Context, _ string) (*Session, error) {
	user, err := p.ensureProfile(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}, nil
}

// ensureProfile loads the demo profile, creating it on first sign-in
func (p *StaticProvider) ensureProfile(ctx context.Context) (*identity.User, error) {
	user, err := p.userRepo.FindByID(ctx, StaticUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user, err = identity.NewUser(staticEmail, staticFullName, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	user.ID = StaticUserID
	department := staticDepartment
	user.SetDepartment(&department)

	if err := p.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	p.logger.Info("Created demo profile", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Ensure StaticProvider implements Provider
var _ Provider = (*StaticProvider)(nil)
