package authapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/identity"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/domain"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/repository/mocks"
	profileService "github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockIdentityGateway struct {
	mock.Mock
}

func (m *MockIdentityGateway) SignIn(ctx context.Context, email, password string) (*identity.SignInResult, error) {
	args := m.Called(ctx, email, password)
	if r := args.Get(0); r != nil {
		return r.(*identity.SignInResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityGateway) SignUp(ctx context.Context, email, password, fullName string) (string, error) {
	args := m.Called(ctx, email, password, fullName)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityGateway) SignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *MockIdentityGateway) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockIdentityGateway) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	args := m.Called(ctx, accessToken, newPassword)
	return args.Error(0)
}

func (m *MockIdentityGateway) VerifyEmail(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockIdentityGateway) OAuthRedirectURL(provider string) string {
	args := m.Called(provider)
	return args.String(0)
}

func newAuthRouter(gateway *MockIdentityGateway, profileRepo *mocks.MockProfileRepository, sess identity.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		identity.SetSession(c, sess)
		c.Next()
	})
	api := router.Group("/api")
	NewAuthHandler(gateway, profileService.NewProfileService(profileRepo)).RegisterRoutes(api)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var anonymous = identity.Session{Kind: identity.SessionAnonymous}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("Successful registration creates a customer profile", func(t *testing.T) {
		gateway := new(MockIdentityGateway)
		profileRepo := new(mocks.MockProfileRepository)
		gateway.On("SignUp", mock.Anything, "ana@example.com", "secret123", "Ana Reyes").Return("u1", nil).Once()
		profileRepo.On("CreateProfile", mock.Anything, mock.MatchedBy(func(p *domain.Profile) bool {
			return p.ID == "u1" && p.Role == domain.RoleCustomer
		})).Return(nil).Once()

		w := postJSON(newAuthRouter(gateway, profileRepo, anonymous), "/api/auth/register",
			`{"email":"ana@example.com","password":"secret123","fullName":"Ana Reyes"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "u1")
		gateway.AssertExpectations(t)
		profileRepo.AssertExpectations(t)
	})

	t.Run("Provider rejection surfaces verbatim with its status", func(t *testing.T) {
		gateway := new(MockIdentityGateway)
		profileRepo := new(mocks.MockProfileRepository)
		gateway.On("SignUp", mock.Anything, "taken@example.com", "secret123", "Ana Reyes").
			Return("", &identity.AuthError{StatusCode: http.StatusUnprocessableEntity, Message: "User already registered"}).Once()

		w := postJSON(newAuthRouter(gateway, profileRepo, anonymous), "/api/auth/register",
			`{"email":"taken@example.com","password":"secret123","fullName":"Ana Reyes"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "User already registered")
		profileRepo.AssertNotCalled(t, "CreateProfile", mock.Anything, mock.Anything)
	})

	t.Run("Short password fails binding", func(t *testing.T) {
		gateway := new(MockIdentityGateway)
		profileRepo := new(mocks.MockProfileRepository)

		w := postJSON(newAuthRouter(gateway, profileRepo, anonymous), "/api/auth/register",
			`{"email":"ana@example.com","password":"abc","fullName":"Ana Reyes"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		gateway.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("Successful login returns the provider session", func(t *testing.T) {
		gateway := new(MockIdentityGateway)
		profileRepo := new(mocks.MockProfileRepository)
		gateway.On("SignIn", mock.Anything, "ana@example.com", "correct-horse").
			Return(&identity.SignInResult{UserID: "u1", AccessToken: "tok"}, nil).Once()

		w := postJSON(newAuthRouter(gateway, profileRepo, anonymous), "/api/auth/login",
			`{"email":"ana@example.com","password":"correct-horse"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "tok")
		gateway.AssertExpectations(t)
	})

	t.Run("Bad credentials surface the provider message", func(t *testing.T) {
		gateway := new(MockIdentityGateway)
		profileRepo := new(mocks.MockProfileRepository)
		gateway.On("SignIn", mock.Anything, "ana@example.com", "wrong").
			Return(nil, &identity.AuthError{StatusCode: http.StatusBadRequest, Message: "Invalid login credentials"}).Once()

		w := postJSON(newAuthRouter(gateway, profileRepo, anonymous), "/api/auth/login",
			`{"email":"ana@example.com","password":"wrong"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid login credentials")
	})
}

func TestAuthHandler_AdminSetup(t *testing.T) {
	body := `{"email":"admin@example.com","password":"secret123","fullName":"Priyanshu Chauhan"}`

	t.Run("First admin can be created", func(t *testing.T) {
		gateway := new(MockIdentityGateway)
		profileRepo := new(mocks.MockProfileRepository)
		profileRepo.On("HasAdmin", mock.Anything).Return(false, nil).Once()
		gateway.On("SignUp", mock.Anything, "admin@example.com", "secret123", "Priyanshu Chauhan").Return("u-admin", nil).Once()
		profileRepo.On("CreateProfile", mock.Anything, mock.MatchedBy(func(p *domain.Profile) bool {
			return p.ID == "u-admin" && p.Role == domain.RoleAdmin
		})).Return(nil).Once()

		w := postJSON(newAuthRouter(gateway, profileRepo, anonymous), "/api/admin/setup", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		gateway.AssertExpectations(t)
		profileRepo.AssertExpectations(t)
	})

	t.Run("Refuses once an admin exists", func(t *testing.T) {
		gateway := new(MockIdentityGateway)
		profileRepo := new(mocks.MockProfileRepository)
		profileRepo.On("HasAdmin", mock.Anything).Return(true, nil).Once()

		w := postJSON(newAuthRouter(gateway, profileRepo, anonymous), "/api/admin/setup", body)

		assert.Equal(t, http.StatusForbidden, w.Code)
		gateway.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	sess := identity.Session{Kind: identity.SessionCustomer, UserID: "u1", AccessToken: "recovery-token"}

	gateway := new(MockIdentityGateway)
	profileRepo := new(mocks.MockProfileRepository)
	gateway.On("UpdatePassword", mock.Anything, "recovery-token", "new-secret").Return(nil).Once()

	w := postJSON(newAuthRouter(gateway, profileRepo, sess), "/api/auth/reset-password",
		`{"password":"new-secret"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	gateway.AssertExpectations(t)
}

func TestAuthHandler_OAuthRedirect(t *testing.T) {
	gateway := new(MockIdentityGateway)
	profileRepo := new(mocks.MockProfileRepository)
	gateway.On("OAuthRedirectURL", "google").Return("https://auth.example.com/authorize?provider=google").Once()

	router := newAuthRouter(gateway, profileRepo, anonymous)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/oauth/google", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://auth.example.com/authorize?provider=google", w.Header().Get("Location"))
}
