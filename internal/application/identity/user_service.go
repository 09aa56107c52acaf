package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
)

const usersScope = "users"

// Scopes whose list projections display user names and avatars
var userDisplayScopes = []string{"contacts", "deals", "projects", "tasks", "activities", "dashboard"}

// userListPage bundles a list page with its total for caching
type userListPage struct {
	Items []UserResponse
	Total int64
}

// UserServiceConfig holds configuration for the user service
type UserServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultUserServiceConfig returns the default configuration
func DefaultUserServiceConfig() UserServiceConfig {
	return UserServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// UserService handles user profile management and avatar storage
type UserService struct {
	userRepo    identity.UserRepository
	storage     AvatarStorage
	queries     cache.QueryCache
	invalidator cache.Invalidator
	config      UserServiceConfig
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo identity.UserRepository,
	storage AvatarStorage,
	queries cache.QueryCache,
	invalidator cache.Invalidator,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		storage:     storage,
		queries:     queries,
		invalidator: invalidator,
		config:      DefaultUserServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *UserService) SetConfig(config UserServiceConfig) {
	s.config = config
}

// Create creates a new user profile
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
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

	var user *identity.User
	if req.Password != "" {
		user, err = identity.NewUserWithPassword(req.Email, req.FullName, req.Password, role)
	} else {
		user, err = identity.NewUser(req.Email, req.FullName, role)
	}
	if err != nil {
		return nil, err
	}

	if department := strings.TrimSpace(req.Department); department != "" {
		user.SetDepartment(&department)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.invalidate(ctx, usersScope)

	response := ToUserResponse(user)
	return &response, nil
}

// GetByID retrieves a user profile by ID
func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	key := cache.Key(usersScope, "detail", userID.String())
	response, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (UserResponse, error) {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return UserResponse{}, err
		}
		return ToUserResponse(user), nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves user profiles with filtering and pagination
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.Role != "" {
		domainFilter.Filters["role"] = filter.Role
	}
	if filter.Department != "" {
		domainFilter.Filters["department"] = filter.Department
	}
	if filter.IsActive != "" {
		domainFilter.Filters["is_active"] = filter.IsActive == "true"
	}

	key := cache.Key(usersScope, "list", filterKey(domainFilter))
	page, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (userListPage, error) {
		users, err := s.userRepo.FindAll(ctx, domainFilter)
		if err != nil {
			return userListPage{}, err
		}
		total, err := s.userRepo.Count(ctx, domainFilter)
		if err != nil {
			return userListPage{}, err
		}
		return userListPage{Items: ToUserResponses(users), Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page.Items, page.Total, nil
}

// Update applies a partial update to a user profile
func (s *UserService) Update(ctx context.Context, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		if err := user.ChangeFullName(*req.FullName); err != nil {
			return nil, err
		}
	}
	if req.Role != nil {
		if err := user.ChangeRole(identity.UserRole(*req.Role)); err != nil {
			return nil, err
		}
	}
	if req.Department != nil {
		user.SetDepartment(req.Department)
	}
	if req.IsActive != nil {
		if *req.IsActive {
			user.Activate()
		} else {
			user.Deactivate()
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.invalidateWithDisplays(ctx)

	response := ToUserResponse(user)
	return &response, nil
}

// Delete removes a user profile
func (s *UserService) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.invalidateWithDisplays(ctx)
	return nil
}

// RequestAvatarUpload presigns an upload slot for a profile avatar
func (s *UserService) RequestAvatarUpload(ctx context.Context, userID uuid.UUID, req AvatarUploadRequest) (*AvatarUploadResponse, error) {
	if !strings.HasPrefix(req.ContentType, "image/") {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Avatar uploads must be images")
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, avatarKey(userID), req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &AvatarUploadResponse{UploadURL: uploadURL, ExpiresAt: expiresAt}, nil
}

// ConfirmAvatarUpload verifies the object landed and records it on the profile
func (s *UserService) ConfirmAvatarUpload(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := avatarKey(userID)
	exists, err := s.storage.ObjectExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("AVATAR_NOT_UPLOADED", "No avatar object was uploaded")
	}

	user.SetAvatarURL(&key)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.invalidateWithDisplays(ctx)

	response := ToUserResponse(user)
	return &response, nil
}

// AvatarDownloadURL presigns a download link for a profile avatar
func (s *UserService) AvatarDownloadURL(ctx context.Context, userID uuid.UUID) (*AvatarDownloadResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AvatarURL == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Profile has no avatar")
	}

	downloadURL, expiresAt, err := s.storage.GenerateDownloadURL(ctx, *user.AvatarURL, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, shared.NewDomainError("DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}

	return &AvatarDownloadResponse{DownloadURL: downloadURL, ExpiresAt: expiresAt}, nil
}

// RemoveAvatar deletes the avatar object and clears it from the profile
func (s *UserService) RemoveAvatar(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.AvatarURL == nil {
		return nil
	}

	if err := s.storage.DeleteObject(ctx, *user.AvatarURL); err != nil {
		return err
	}

	user.SetAvatarURL(nil)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}

	s.invalidateWithDisplays(ctx)
	return nil
}

func (s *UserService) invalidate(ctx context.Context, scopes ...string) {
	for _, scope := range scopes {
		s.queries.InvalidateScope(scope)
		if s.invalidator != nil {
			_ = s.invalidator.PublishScope(ctx, scope)
		}
	}
}

// invalidateWithDisplays drops the user scope plus every list projection
// that joins user names or avatars.
func (s *UserService) invalidateWithDisplays(ctx context.Context) {
	s.invalidate(ctx, usersScope)
	s.invalidate(ctx, userDisplayScopes...)
}

func avatarKey(userID uuid.UUID) string {
	return fmt.Sprintf("avatars/%s", userID)
}

func filterKey(f shared.Filter) string {
	return fmt.Sprintf("p=%d:ps=%d:ob=%s:od=%s:q=%s:f=%v",
		f.Page, f.PageSize, f.OrderBy, f.OrderDir, f.Search, f.Filters)
}
