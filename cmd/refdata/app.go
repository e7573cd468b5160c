package main

import (
	"context"
	"fmt"

	"github.com/rediwo/refdata/config"
	"github.com/rediwo/refdata/database"
	"github.com/rediwo/refdata/logger"
	"github.com/rediwo/refdata/migration"
	"github.com/rediwo/refdata/models"
	"github.com/rediwo/refdata/query"
	"github.com/rediwo/refdata/schema"
	"github.com/rediwo/refdata/service"
)

// app is the composition root shared by the subcommands
type app struct {
	settings *config.Settings
	db       *database.DB
	registry *schema.Registry
	service  *service.Service
	logger   logger.Logger
}

func openApp(ctx context.Context, s *config.Settings, l logger.Logger) (*app, error) {
	reg, err := models.NewRegistry()
	if err != nil {
		return nil, err
	}

	uri, err := s.DatabaseURI()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(uri)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetLogger(l)
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	fetcher := query.NewFetcher(query.NewPlanner(reg, query.NewPlanCache()))
	svc := service.New(db, reg, fetcher)
	svc.SetLogger(l)

	return &app{
		settings: s,
		db:       db,
		registry: reg,
		service:  svc,
		logger:   l,
	}, nil
}

func (a *app) migrate(ctx context.Context) error {
	if err := migration.NewMigrator(a.db, a.registry).Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	a.logger.Info("Schema is up to date")
	return nil
}

func (a *app) Close() error {
	return a.db.Close()
}
