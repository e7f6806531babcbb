package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/typemnm/Mornoningo/internal/repository"
	"github.com/typemnm/Mornoningo/internal/service"
	"github.com/typemnm/Mornoningo/pkg/cache"
	"github.com/typemnm/Mornoningo/pkg/clock"
	"github.com/typemnm/Mornoningo/pkg/config"
	"github.com/typemnm/Mornoningo/pkg/database"
	"github.com/typemnm/Mornoningo/pkg/logger"
)

// app holds the pieces shared by every command: config, logging and the loaded study state.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *service.MetricsService
	bus     *service.EventBus
	study   *service.StudyService
	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logr, bus: service.NewEventBus(64, logr)}
	if cfg.Metrics.Enabled {
		a.metrics = service.NewMetricsService()
	}

	repo, err := a.stateRepository(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.study = service.NewStudyService(repo, clock.System(), a.bus, a.metrics, logr)
	if err := a.study.Load(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("load study state: %w", err)
	}
	return a, nil
}

func (a *app) stateRepository(ctx context.Context) (service.StateRepository, error) {
	switch a.cfg.State.Backend {
	case "", config.BackendFile:
		return repository.NewFileStateRepository(a.cfg.State.FilePath), nil
	case config.BackendRedis:
		client, err := cache.NewRedis(ctx, a.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return repository.NewRedisStateRepository(client, a.cfg.State.Key), nil
	case config.BackendPostgres, config.BackendSQLite:
		db, err := database.NewSQL(a.cfg.State.Backend, a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", a.cfg.State.Backend, err)
		}
		a.closers = append(a.closers, db.Close)
		repo := repository.NewSQLStateRepository(db, a.cfg.State.Key)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", a.cfg.State.Backend)
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close resource", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
