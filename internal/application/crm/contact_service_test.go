package crm

import (
	"context"
	"errors"
	"testing"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockContactRepository is a mock implementation of ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Contact), args.Error(1)
}

func (m *MockContactRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.ContactListItem, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.ContactListItem), args.Error(1)
}

func (m *MockContactRepository) Save(ctx context.Context, contact *crm.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) SaveWithLock(ctx context.Context, contact *crm.Contact, expectedVersion int) error {
	args := m.Called(ctx, contact, expectedVersion)
	return args.Error(0)
}

func (m *MockContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContactRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContactRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func newContactService(repo *MockContactRepository, queries cache.QueryCache) *ContactService {
	return NewContactService(repo, queries, cache.NopInvalidator{}, nil)
}

// =============================================================================
// Tests
// =============================================================================

func TestContactService_Create(t *testing.T) {
	t.Run("creates contact and clears empty optional fields", func(t *testing.T) {
		repo := new(MockContactRepository)
		service := newContactService(repo, cache.PassthroughCache{})

		repo.On("ExistsByEmail", mock.Anything, "jane@acme.test").Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*crm.Contact")).Return(nil)

		response, err := service.Create(context.Background(), CreateContactRequest{
			Type:        "client",
			CompanyName: "Acme Corp",
			FirstName:   "Jane",
			LastName:    "Doe",
			Email:       "jane@acme.test",
			Phone:       "",
			Notes:       "met at the expo",
		})

		require.NoError(t, err)
		assert.Equal(t, "client", response.Type)
		assert.Equal(t, "Jane Doe", response.FullName)
		assert.Nil(t, response.Phone)
		require.NotNil(t, response.Notes)
		assert.Equal(t, "met at the expo", *response.Notes)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		repo := new(MockContactRepository)
		service := newContactService(repo, cache.PassthroughCache{})

		repo.On("ExistsByEmail", mock.Anything, "jane@acme.test").Return(true, nil)

		response, err := service.Create(context.Background(), CreateContactRequest{
			Type:        "client",
			CompanyName: "Acme Corp",
			FirstName:   "Jane",
			LastName:    "Doe",
			Email:       "jane@acme.test",
		})

		assert.Nil(t, response)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("surfaces field validation errors", func(t *testing.T) {
		repo := new(MockContactRepository)
		service := newContactService(repo, cache.PassthroughCache{})

		repo.On("ExistsByEmail", mock.Anything, "jane@acme.test").Return(false, nil)

		_, err := service.Create(context.Background(), CreateContactRequest{
			Type:        "visitor",
			CompanyName: "",
			FirstName:   "Jane",
			LastName:    "Doe",
			Email:       "jane@acme.test",
		})

		require.Error(t, err)
		var validationErr *shared.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "type")
		assert.Contains(t, validationErr.Fields, "company_name")
	})
}

func TestContactService_Update(t *testing.T) {
	t.Run("passes the loaded version to the optimistic write", func(t *testing.T) {
		repo := new(MockContactRepository)
		service := newContactService(repo, cache.PassthroughCache{})

		contact, err := crm.NewContact(crm.ContactTypeProspect, "Globex", "John", "Smith", "john@globex.test")
		require.NoError(t, err)
		loadedVersion := contact.Version

		repo.On("FindByID", mock.Anything, contact.ID).Return(contact, nil)
		repo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*crm.Contact"), loadedVersion).Return(nil)

		position := "CTO"
		response, err := service.Update(context.Background(), contact.ID, UpdateContactRequest{
			Position: &position,
		})

		require.NoError(t, err)
		require.NotNil(t, response.Position)
		assert.Equal(t, "CTO", *response.Position)
		assert.Greater(t, response.Version, loadedVersion)
		repo.AssertExpectations(t)
	})

	t.Run("propagates concurrency conflicts", func(t *testing.T) {
		repo := new(MockContactRepository)
		service := newContactService(repo, cache.PassthroughCache{})

		contact, err := crm.NewContact(crm.ContactTypeProspect, "Globex", "John", "Smith", "john@globex.test")
		require.NoError(t, err)

		repo.On("FindByID", mock.Anything, contact.ID).Return(contact, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)

		name := "Globex International"
		_, err = service.Update(context.Background(), contact.ID, UpdateContactRequest{CompanyName: &name})

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
	})

	t.Run("clears optional fields with empty strings", func(t *testing.T) {
		repo := new(MockContactRepository)
		service := newContactService(repo, cache.PassthroughCache{})

		contact, err := crm.NewContact(crm.ContactTypeClient, "Globex", "John", "Smith", "john@globex.test")
		require.NoError(t, err)
		phone := "+1 555 0100"
		contact.SetPhone(&phone)

		repo.On("FindByID", mock.Anything, contact.ID).Return(contact, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		empty := ""
		response, err := service.Update(context.Background(), contact.ID, UpdateContactRequest{Phone: &empty})

		require.NoError(t, err)
		assert.Nil(t, response.Phone)
	})
}

func TestContactService_ListCaching(t *testing.T) {
	t.Run("serves repeated lists from cache until a mutation", func(t *testing.T) {
		repo := new(MockContactRepository)
		queries := cache.NewInMemoryQueryCache()
		defer queries.Close()
		service := newContactService(repo, queries)

		repo.On("FindAll", mock.Anything, mock.Anything).Return([]crm.ContactListItem{}, nil)
		repo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

		_, _, err := service.List(context.Background(), ContactListFilter{})
		require.NoError(t, err)
		_, _, err = service.List(context.Background(), ContactListFilter{})
		require.NoError(t, err)

		repo.AssertNumberOfCalls(t, "FindAll", 1)
		repo.AssertNumberOfCalls(t, "Count", 1)

		repo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		_, err = service.Create(context.Background(), CreateContactRequest{
			Type:        "prospect",
			CompanyName: "Initech",
			FirstName:   "Ann",
			LastName:    "Lee",
			Email:       "ann@initech.test",
		})
		require.NoError(t, err)

		_, _, err = service.List(context.Background(), ContactListFilter{})
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "FindAll", 2)
	})

	t.Run("does not cache failed loads", func(t *testing.T) {
		repo := new(MockContactRepository)
		queries := cache.NewInMemoryQueryCache()
		defer queries.Close()
		service := newContactService(repo, queries)

		loadErr := errors.New("connection refused")
		repo.On("FindAll", mock.Anything, mock.Anything).Return([]crm.ContactListItem{}, loadErr).Once()
		repo.On("FindAll", mock.Anything, mock.Anything).Return([]crm.ContactListItem{}, nil)
		repo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

		_, _, err := service.List(context.Background(), ContactListFilter{})
		assert.Equal(t, loadErr, err)

		_, _, err = service.List(context.Background(), ContactListFilter{})
		assert.NoError(t, err)
		repo.AssertNumberOfCalls(t, "FindAll", 2)
	})
}

func TestContactService_Delete(t *testing.T) {
	t.Run("propagates not found", func(t *testing.T) {
		repo := new(MockContactRepository)
		service := newContactService(repo, cache.PassthroughCache{})

		contactID := uuid.New()
		repo.On("Delete", mock.Anything, contactID).Return(shared.ErrNotFound)

		err := service.Delete(context.Background(), contactID)
		assert.Equal(t, shared.ErrNotFound, err)
	})
}
