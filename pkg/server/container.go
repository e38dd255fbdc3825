package server

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"member-info-api/internal/config"
	"member-info-api/internal/database"
	"member-info-api/internal/handlers"
	"member-info-api/internal/repositories"
	"member-info-api/internal/repositories/dynamodb"
	"member-info-api/internal/repositories/memory"
	"member-info-api/internal/repositories/sqlite"
	"member-info-api/internal/services"
)

// Container holds all application dependencies. It is built once per
// process and shared by every request.
type Container struct {
	Config        *config.Config
	Logger        *logrus.Logger
	Store         repositories.MemberStore
	MemberService services.MemberService
	MemberHandler *handlers.MemberHandler
	Router        *handlers.Router

	// Internal dependencies
	dbManager *database.ConnectionManager
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger := config.NewLogger(cfg)

	container := &Container{
		Config: cfg,
		Logger: logger,
	}

	store, err := container.newStore(ctx)
	if err != nil {
		container.Close()
		return nil, err
	}

	container.wire(store)

	logger.WithFields(logrus.Fields{
		"store":           cfg.Store.Type,
		"table":           cfg.Store.TableName,
		"deployment_mode": config.GetDeploymentMode(),
	}).Info("Container initialized")

	return container, nil
}

// NewContainerWithStore creates a container around an existing store
func NewContainerWithStore(cfg *config.Config, store repositories.MemberStore, logger *logrus.Logger) *Container {
	if logger == nil {
		logger = config.NewLogger(cfg)
	}
	container := &Container{
		Config: cfg,
		Logger: logger,
	}
	container.wire(store)
	return container
}

func (c *Container) wire(store repositories.MemberStore) {
	c.Store = store
	c.MemberService = services.NewMemberService(store, c.Logger)
	c.MemberHandler = handlers.NewMemberHandler(c.MemberService, c.Logger)
	c.Router = handlers.NewRouter(c.MemberHandler, c.Logger)
}

func (c *Container) newStore(ctx context.Context) (repositories.MemberStore, error) {
	storeCfg := c.Config.Store

	switch storeCfg.Type {
	case config.StoreDynamoDB:
		client, err := dynamodb.NewClient(ctx, storeCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		return dynamodb.NewMemberStore(client, storeCfg.TableName, c.Logger), nil

	case config.StoreSQLite:
		c.dbManager = database.NewConnectionManager(&database.ConnectionConfig{
			DatabasePath:    storeCfg.SQLitePath,
			ConnMaxLifetime: database.DefaultConnectionConfig().ConnMaxLifetime,
			AutoMigrate:     true,
			Logger:          c.Logger,
		})
		if err := c.dbManager.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}
		return sqlite.NewMemberStore(c.dbManager.GetDB(), storeCfg.PageSize, c.Logger), nil

	case config.StoreMemory:
		return memory.NewMemberStore(storeCfg.PageSize), nil
	}

	return nil, fmt.Errorf("unknown store type %q", storeCfg.Type)
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			return fmt.Errorf("failed to close store: %w", err)
		}
	}

	if c.dbManager != nil {
		if err := c.dbManager.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
