package lambda

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gin-gonic/gin"

	"invocation-adapter/internal/config"
)

func managerConfig(t *testing.T, convention string) *config.Config {
	return &config.Config{
		Environment: "test",
		Port:        "8080",
		Adapter: config.AdapterConfig{
			Convention:   convention,
			MaxRedirects: 10,
		},
		Database: config.DatabaseConfig{
			ConnectionString: filepath.Join(t.TempDir(), "manager.db"),
			MaxOpenConns:     1,
			MaxIdleConns:     1,
		},
		JWT: config.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
	}
}

func newManager(t *testing.T, convention string) *ConnectionManager {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cm := &ConnectionManager{}
	if err := cm.Initialize(managerConfig(t, convention)); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { cm.Cleanup() })
	return cm
}

func runtimeContext() context.Context {
	return lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-1"})
}

func TestConnectionManager_Gateway(t *testing.T) {
	cm := newManager(t, "gateway")
	ctx := runtimeContext()

	if !cm.IsHealthy() {
		t.Error("Expected initialized manager to be healthy")
	}

	result, err := cm.HandleEvent(ctx, map[string]interface{}{
		"httpMethod": "POST",
		"path":       "/users/",
		"body":       `{"username":"dave","email":"dave@example.com","balance":"1.50"}`,
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if user := result.(map[string]interface{}); user["username"] != "dave" || user["balance"] != "1.5" {
		t.Errorf("Unexpected created user %v", user)
	}

	// /users redirects to /users/ and the client follows it
	result, err = cm.HandleEvent(ctx, map[string]interface{}{
		"httpMethod": "GET",
		"path":       "/users",
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if list := result.(map[string]interface{}); list["count"] != float64(1) {
		t.Errorf("Expected one user, got %v", list)
	}
}

func TestConnectionManager_EventRoute(t *testing.T) {
	cm := newManager(t, "event-route")

	result, err := cm.HandleEvent(runtimeContext(), map[string]interface{}{
		"method":   "post",
		"route":    "users",
		"username": "erin",
		"email":    "erin@example.com",
	})
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	text, ok := result.(string)
	if !ok {
		t.Fatalf("Expected response text, got %T", result)
	}
	if text == "" {
		t.Error("Expected non-empty response text")
	}

	adapter, err := cm.GetAdapter(context.Background())
	if err != nil {
		t.Fatalf("GetAdapter failed: %v", err)
	}
	if adapter.Convention() != ConventionEventRoute {
		t.Errorf("Expected event-route convention, got %s", adapter.Convention())
	}
}

func TestConnectionManager_Cleanup(t *testing.T) {
	cm := newManager(t, "gateway")
	before, err := cm.GetAdapter(context.Background())
	if err != nil {
		t.Fatalf("GetAdapter failed: %v", err)
	}

	if err := cm.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if cm.IsHealthy() {
		t.Error("Expected cleaned up manager to be unhealthy")
	}

	after, err := cm.GetAdapter(context.Background())
	if err != nil {
		t.Fatalf("GetAdapter after Cleanup failed: %v", err)
	}
	if after == before {
		t.Error("Expected a rebuilt adapter after Cleanup")
	}
	if !cm.IsHealthy() {
		t.Error("Expected rebuilt manager to be healthy")
	}

	if _, err := cm.HandleEvent(runtimeContext(), map[string]interface{}{"httpMethod": "GET", "path": "/health"}); err != nil {
		t.Errorf("HandleEvent after rebuild failed: %v", err)
	}
}

func TestConnectionManager_InitializeAfterCleanup(t *testing.T) {
	cm := newManager(t, "gateway")
	if err := cm.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if err := cm.Initialize(managerConfig(t, "event-route")); err != nil {
		t.Fatalf("Initialize after Cleanup failed: %v", err)
	}

	adapter, err := cm.GetAdapter(context.Background())
	if err != nil {
		t.Fatalf("GetAdapter failed: %v", err)
	}
	if adapter.Convention() != ConventionEventRoute {
		t.Errorf("Expected new configuration to apply, got %s", adapter.Convention())
	}
}

func TestConnectionManager_RebuildsStaleContainer(t *testing.T) {
	cm := newManager(t, "gateway")
	ctx := runtimeContext()

	if _, err := cm.HandleEvent(ctx, map[string]interface{}{
		"httpMethod": "POST",
		"path":       "/users/",
		"body":       `{"username":"frank","email":"frank@example.com"}`,
	}); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	before, _ := cm.GetAdapter(ctx)

	cm.mu.Lock()
	cm.lastUsed = time.Now().Add(-2 * maxIdle)
	cm.mu.Unlock()

	if cm.IsHealthy() {
		t.Fatal("Expected idle manager to be unhealthy")
	}

	result, err := cm.HandleEvent(ctx, map[string]interface{}{"httpMethod": "GET", "path": "/users/"})
	if err != nil {
		t.Fatalf("HandleEvent after idle failed: %v", err)
	}
	if after, _ := cm.GetAdapter(ctx); after == before {
		t.Error("Expected stale adapter to be replaced")
	}
	if list := result.(map[string]interface{}); list["count"] != float64(1) {
		t.Errorf("Expected stored user to survive rebuild, got %v", list)
	}
}

func TestAdapterConfigFrom(t *testing.T) {
	cfg := managerConfig(t, "function-name")
	cfg.Adapter.IdempotentPatch = true

	adapterConfig, err := AdapterConfigFrom(cfg, quietLogger())
	if err != nil {
		t.Fatalf("AdapterConfigFrom failed: %v", err)
	}
	if adapterConfig.Convention != ConventionFunctionName {
		t.Errorf("Expected function-name, got %s", adapterConfig.Convention)
	}
	if !adapterConfig.Idempotent.Contains("PATCH") {
		t.Error("Expected PATCH to be idempotent")
	}

	cfg.Adapter.Convention = "soap"
	if _, err := AdapterConfigFrom(cfg, nil); err == nil {
		t.Error("Expected error for unknown convention")
	}
}
