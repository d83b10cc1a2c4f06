package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/app"
	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/middleware"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	Databases    *app.Databases
	Repositories *app.Repositories
	Services     *app.Services
	Handlers     *Handlers

	// Middleware
	AuthMiddleware      *middleware.AuthMiddleware
	CSRFMiddleware      *middleware.CSRFMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

// initDependencies initializes all dependencies
func initDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger, version string) (*Dependencies, error) {
	dbs, err := app.InitDatabases(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	repos := app.InitRepositories(dbs)

	svcs, err := app.InitServices(cfg, logger, dbs, repos)
	if err != nil {
		dbs.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Dependencies{
		Config:       cfg,
		Logger:       logger,
		Databases:    dbs,
		Repositories: repos,
		Services:     svcs,
		Handlers:     initHandlers(cfg, logger, dbs, svcs, version),

		AuthMiddleware: middleware.NewAuthMiddleware(
			svcs.Auth,
			svcs.APIKey,
			svcs.Org,
			cfg.Session.CookieName,
		),
		CSRFMiddleware: middleware.NewCSRFMiddleware(middleware.CSRFConfigFromSession(cfg.Session)),
		RateLimitMiddleware: middleware.NewRateLimitMiddleware(
			dbs.Redis.Client,
			logger,
			middleware.RateLimitConfigFrom(cfg.RateLimit),
		),
	}, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() {
	if d.Databases != nil {
		d.Databases.Close()
	}
}
