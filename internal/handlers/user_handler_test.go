package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"invocation-adapter/internal/middleware"
	"invocation-adapter/internal/models"
	"invocation-adapter/internal/repositories"
)

// stubUserService keeps users in memory
type stubUserService struct {
	users map[string]*models.User
}

func (s *stubUserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == req.Username {
			return nil, repositories.DuplicateError("user", "username", req.Username)
		}
	}
	user, err := models.NewUserFromRequest(req)
	if err != nil {
		return nil, err
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *stubUserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, repositories.NotFoundError("user", id)
}

func (s *stubUserService) ListUsers(ctx context.Context, limit int) ([]*models.User, error) {
	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *stubUserService) DeleteUser(ctx context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return repositories.NotFoundError("user", id)
	}
	delete(s.users, id)
	return nil
}

func newTestRouter() (*gin.Engine, *middleware.AuthService) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	auth := middleware.NewAuthService(&middleware.AuthConfig{JWTSecret: "secret"})
	router := NewRouter(&RouterConfig{
		UserService: &stubUserService{users: map[string]*models.User{}},
		AuthService: auth,
		Logger:      logger,
		DevRoutes:   true,
	})
	return router, auth
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUserHandler_Lifecycle(t *testing.T) {
	router, auth := newTestRouter()

	// Form body, as produced by the event-route convention
	form := url.Values{"username": {"alice"}, "email": {"alice@example.com"}, "balance": {"2.50"}}
	req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(router, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode user: %v", err)
	}
	if created.Username != "alice" || created.Balance.String() != "2.5" {
		t.Errorf("Unexpected user %+v", created)
	}

	t.Run("Duplicate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(`{"username":"alice","email":"a2@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		if rec := serve(router, req); rec.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d", rec.Code)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(`{"username":"al"}`))
		req.Header.Set("Content-Type", "application/json")
		if rec := serve(router, req); rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("List", func(t *testing.T) {
		rec := serve(router, httptest.NewRequest(http.MethodGet, "/users/", nil))
		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to decode list: %v", err)
		}
		if body["status_code"] != float64(200) || body["count"] != float64(1) {
			t.Errorf("Unexpected list body %v", body)
		}
	})

	t.Run("ShortLinkRedirects", func(t *testing.T) {
		rec := serve(router, httptest.NewRequest(http.MethodGet, "/u/"+created.ID, nil))
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/users/"+created.ID {
			t.Errorf("Expected redirect to user, got %d %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("DeleteRequiresToken", func(t *testing.T) {
		rec := serve(router, httptest.NewRequest(http.MethodDelete, "/users/"+created.ID, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		token, err := auth.GenerateToken("admin", "admin", []string{"admin"})
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}
		req := httptest.NewRequest(http.MethodDelete, "/users/"+created.ID, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		if rec := serve(router, req); rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}

		if rec := serve(router, httptest.NewRequest(http.MethodGet, "/users/"+created.ID, nil)); rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404 after delete, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_IssueToken(t *testing.T) {
	router, auth := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"username":"ops"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode token: %v", err)
	}
	claims, err := auth.ValidateToken(body["token"])
	if err != nil {
		t.Fatalf("Issued token did not validate: %v", err)
	}
	if claims.Username != "ops" {
		t.Errorf("Expected username ops, got %s", claims.Username)
	}
}
