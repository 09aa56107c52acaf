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

// LocalProvider authenticates against the users table with bcrypt and
// issues JWT access/refresh pairs.
type LocalProvider struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewLocalProvider creates a new LocalProvider
func NewLocalProvider(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *LocalProvider {
	return &LocalProvider{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// SignIn verifies the password and issues a token pair
func (p *LocalProvider) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	user, err := p.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			p.logger.Warn("Sign-in for unknown email", zap.String("email", req.Email))
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}

	if !user.CanSignIn() {
		p.logger.Warn("Sign-in for deactivated account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !user.VerifyPassword(req.Password) {
		p.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	tokens, err := p.issueTokens(user)
	if err != nil {
		return nil, err
	}

	user.RecordLogin()
	if err := p.userRepo.Save(ctx, user); err != nil {
		p.logger.Error("Failed to record sign-in", zap.Error(err))
	}

	p.logger.Info("User signed in", zap.String("user_id", user.ID.String()))

	return &AuthResponse{User: ToUserResponse(user), Tokens: tokens}, nil
}

// SignUp registers a new member profile and signs it in
func (p *LocalProvider) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	exists, err := p.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A profile with this email already exists")
	}

	role := identity.RoleMember
	if req.Role != "" {
		role = identity.UserRole(req.Role)
	}

	user, err := identity.NewUserWithPassword(req.Email, req.FullName, req.Password, role)
	if err != nil {
		return nil, err
	}

	if err := p.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := p.issueTokens(user)
	if err != nil {
		return nil, err
	}

	p.logger.Info("User signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)))

	return &AuthResponse{User: ToUserResponse(user), Tokens: tokens}, nil
}

// SignOut invalidates nothing server-side; tokens simply expire.
// The endpoint exists so clients in both modes share one flow.
func (p *LocalProvider) SignOut(_ context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if _, err := p.jwtService.ValidateAccessToken(accessToken); err != nil {
		return shared.NewDomainError("UNAUTHORIZED", "Invalid access token")
	}
	return nil
}

// Refresh exchanges a valid refresh token for a fresh pair
func (p *LocalProvider) Refresh(_ context.Context, refreshToken string) (*auth.TokenPair, error) {
	tokens, err := p.jwtService.RefreshTokenPair(refreshToken)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid or expired refresh token")
	}
	return tokens, nil
}

// CurrentSession resolves a bearer token to the profile it names.
// A valid token whose profile row is missing auto-creates the profile,
// so externally issued identities survive a wiped database.
func (p *LocalProvider) CurrentSession(ctx context.Context, accessToken string) (*Session, error) {
	claims, err := p.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid or expired access token")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid access token")
	}

	user, err := p.userRepo.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		user, err = p.recreateProfile(ctx, userID, claims)
		if err != nil {
			return nil, err
		}
	}

	if !user.CanSignIn() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	return &Session{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}, nil
}

func (p *LocalProvider) issueTokens(user *identity.User) (*auth.TokenPair, error) {
	tokens, err := p.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		p.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to issue authentication tokens")
	}
	return tokens, nil
}

func (p *LocalProvider) recreateProfile(ctx context.Context, userID uuid.UUID, claims *auth.Claims) (*identity.User, error) {
	role := identity.UserRole(claims.Role)
	if !role.IsValid() {
		role = identity.RoleMember
	}

	user, err := identity.NewUser(claims.Email, claims.Email, role)
	if err != nil {
		return nil, err
	}
	user.ID = userID

	if err := p.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	p.logger.Info("Recreated missing profile from token claims",
		zap.String("user_id", userID.String()))
	return user, nil
}

// Ensure LocalProvider implements Provider
var _ Provider = (*LocalProvider)(nil)
