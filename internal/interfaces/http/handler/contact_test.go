package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/cache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockContactRepository implements crm.ContactRepository for testing
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

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func setupContactRouter(repo *MockContactRepository) *gin.Engine {
	service := crmapp.NewContactService(repo, cache.PassthroughCache{}, cache.NopInvalidator{}, nil)
	h := NewContactHandler(service)

	engine := gin.New()
	engine.POST("/contacts", h.Create)
	engine.GET("/contacts", h.List)
	engine.GET("/contacts/:id", h.GetByID)
	engine.DELETE("/contacts/:id", h.Delete)
	return engine
}

func perform(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestContactHandlerCreate(t *testing.T) {
	t.Run("creates contact", func(t *testing.T) {
		repo := new(MockContactRepository)
		repo.On("ExistsByEmail", mock.Anything, "jane@acme.test").Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*crm.Contact")).Return(nil)

		engine := setupContactRouter(repo)
		w, env := perform(t, engine, http.MethodPost, "/contacts", map[string]any{
			"type":         "client",
			"company_name": "Acme",
			"first_name":   "Jane",
			"last_name":    "Doe",
			"email":        "jane@acme.test",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Success)

		var data map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "Acme", data["company_name"])
		repo.AssertExpectations(t)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		repo := new(MockContactRepository)
		engine := setupContactRouter(repo)

		w, env := perform(t, engine, http.MethodPost, "/contacts", map[string]any{
			"company_name": "Acme",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("maps duplicate email to conflict", func(t *testing.T) {
		repo := new(MockContactRepository)
		repo.On("ExistsByEmail", mock.Anything, "jane@acme.test").Return(true, nil)

		engine := setupContactRouter(repo)
		w, env := perform(t, engine, http.MethodPost, "/contacts", map[string]any{
			"type":         "client",
			"company_name": "Acme",
			"first_name":   "Jane",
			"last_name":    "Doe",
			"email":        "jane@acme.test",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_ALREADY_EXISTS", env.Error.Code)
	})
}

func TestContactHandlerGetByID(t *testing.T) {
	t.Run("unknown id maps to 404", func(t *testing.T) {
		repo := new(MockContactRepository)
		id := uuid.New()
		repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		engine := setupContactRouter(repo)
		w, env := perform(t, engine, http.MethodGet, "/contacts/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_NOT_FOUND", env.Error.Code)
	})

	t.Run("malformed id maps to 400", func(t *testing.T) {
		repo := new(MockContactRepository)
		engine := setupContactRouter(repo)

		w, _ := perform(t, engine, http.MethodGet, "/contacts/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestContactHandlerList(t *testing.T) {
	repo := new(MockContactRepository)
	contact, err := crm.NewContact(crm.ContactTypeClient, "Acme", "Jane", "Doe", "jane@acme.test")
	require.NoError(t, err)
	repo.On("FindAll", mock.Anything, mock.Anything).Return([]crm.ContactListItem{{Contact: *contact}}, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(41), nil)

	engine := setupContactRouter(repo)
	w, env := perform(t, engine, http.MethodGet, "/contacts?page=2&page_size=20", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(41), env.Meta.Total)
	assert.Equal(t, 2, env.Meta.Page)
	assert.Equal(t, 20, env.Meta.PageSize)
	assert.Equal(t, 3, env.Meta.TotalPages)
}

func TestContactHandlerDelete(t *testing.T) {
	repo := new(MockContactRepository)
	id := uuid.New()
	repo.On("Delete", mock.Anything, id).Return(nil)

	engine := setupContactRouter(repo)
	w, _ := perform(t, engine, http.MethodDelete, "/contacts/"+id.String(), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	repo.AssertExpectations(t)
}
