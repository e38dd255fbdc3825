package server

import (
	"context"
	"sync"
	"time"

	"member-info-api/internal/config"
)

// ConnectionManager keeps the service container alive across warm Lambda
// invocations so the store client is built once per execution environment.
type ConnectionManager struct {
	container *Container
	lastUsed  time.Time
	mu        sync.Mutex
	loadCfg   func() (*config.Config, error)
}

// NewConnectionManager creates a connection manager that loads its
// configuration with loadCfg on first use
func NewConnectionManager(loadCfg func() (*config.Config, error)) *ConnectionManager {
	if loadCfg == nil {
		loadCfg = config.GetOptimizedConfig
	}
	return &ConnectionManager{loadCfg: loadCfg}
}

// GetContainer returns the service container, initializing it on first use.
// A failed initialization is retried on the next call.
func (cm *ConnectionManager) GetContainer(ctx context.Context) (*Container, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container == nil {
		cfg, err := cm.loadCfg()
		if err != nil {
			return nil, err
		}

		container, err := NewContainer(ctx, cfg)
		if err != nil {
			return nil, err
		}
		cm.container = container
	}

	cm.lastUsed = time.Now()
	return cm.container, nil
}

// IsHealthy reports whether a container is initialized and was used recently
func (cm *ConnectionManager) IsHealthy() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container == nil {
		return false
	}

	// Check if connection is stale (older than 5 minutes)
	return time.Since(cm.lastUsed) < 5*time.Minute
}

// Cleanup performs cleanup operations
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container != nil {
		if err := cm.container.Close(); err != nil {
			return err
		}
		cm.container = nil
	}

	return nil
}
