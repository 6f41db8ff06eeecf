package lambda

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"invocation-adapter/internal/config"
	"invocation-adapter/pkg/server"
)

// ConnectionManager keeps the container and adapter alive across warm invocations
type ConnectionManager struct {
	cfg         *config.Config
	container   *server.Container
	adapter     *Adapter
	lastUsed    time.Time
	mu          sync.RWMutex
	initialized bool
}

// maxIdle is how long an unused container is trusted before it is rebuilt
const maxIdle = 5 * time.Minute

var (
	globalConnectionManager *ConnectionManager
	connectionManagerOnce   sync.Once
)

// GetConnectionManager returns the global connection manager instance
func GetConnectionManager() *ConnectionManager {
	connectionManagerOnce.Do(func() {
		globalConnectionManager = &ConnectionManager{}
	})
	return globalConnectionManager
}

// AdapterConfigFrom translates application configuration into adapter options
func AdapterConfigFrom(cfg *config.Config, logger *logrus.Logger) (*Config, error) {
	convention, err := ParseConvention(cfg.Adapter.Convention)
	if err != nil {
		return nil, err
	}

	idempotent := HTTP11IdempotentMethods
	if cfg.Adapter.IdempotentPatch {
		idempotent = IdempotentMethodsWithPatch
	}

	return &Config{
		Convention:   convention,
		Idempotent:   idempotent,
		MaxRedirects: cfg.Adapter.MaxRedirects,
		Envelope:     cfg.Adapter.Envelope,
		Logger:       logger,
	}, nil
}

// Initialize builds the container and adapter unless they already exist
func (cm *ConnectionManager) Initialize(cfg *config.Config) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.initialized {
		return nil
	}
	return cm.initLocked(cfg)
}

func (cm *ConnectionManager) initLocked(cfg *config.Config) error {
	container, err := server.NewContainer(cfg)
	if err != nil {
		return err
	}

	adapterConfig, err := AdapterConfigFrom(cfg, container.Logger)
	if err != nil {
		container.Close()
		return err
	}

	adapter, err := NewAdapter(container.Router, adapterConfig)
	if err != nil {
		container.Close()
		return err
	}

	cm.cfg = cfg
	cm.container = container
	cm.adapter = adapter
	cm.lastUsed = time.Now()
	cm.initialized = true
	return nil
}

// GetAdapter returns the adapter. A missing or stale container is rebuilt,
// from the last configuration or from the environment on first use.
func (cm *ConnectionManager) GetAdapter(ctx context.Context) (*Adapter, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.healthyLocked() {
		cm.lastUsed = time.Now()
		return cm.adapter, nil
	}

	if cm.initialized {
		logrus.WithField("idle", time.Since(cm.lastUsed).String()).Info("Rebuilding stale container")
		if err := cm.cleanupLocked(); err != nil {
			logrus.WithError(err).Warn("Failed to close stale container")
		}
	}

	cfg := cm.cfg
	if cfg == nil {
		var err error
		if cfg, err = config.GetOptimizedConfig(); err != nil {
			return nil, err
		}
	}
	if err := cm.initLocked(cfg); err != nil {
		return nil, err
	}
	return cm.adapter, nil
}

// HandleEvent resolves the adapter and dispatches one runtime event
func (cm *ConnectionManager) HandleEvent(ctx context.Context, event map[string]interface{}) (interface{}, error) {
	adapter, err := cm.GetAdapter(ctx)
	if err != nil {
		return nil, err
	}
	return adapter.HandleEvent(ctx, event)
}

// IsHealthy reports whether the container exists and was used recently
func (cm *ConnectionManager) IsHealthy() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.healthyLocked()
}

func (cm *ConnectionManager) healthyLocked() bool {
	return cm.initialized && cm.container != nil && time.Since(cm.lastUsed) < maxIdle
}

// Cleanup closes the container. The configuration is kept so the next
// GetAdapter can rebuild.
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.cleanupLocked()
}

func (cm *ConnectionManager) cleanupLocked() error {
	cm.adapter = nil
	cm.initialized = false

	if cm.container == nil {
		return nil
	}
	container := cm.container
	cm.container = nil
	return container.Close()
}
