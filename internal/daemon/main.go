// Package daemon wires storage, cache, authorization and the web service.
package daemon

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/config"
	"github.com/catalog-admin/catalog-admin/internal/db"
	"github.com/catalog-admin/catalog-admin/internal/db/controller/acl"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
	"github.com/catalog-admin/catalog-admin/internal/rbac/cache"
	"github.com/catalog-admin/catalog-admin/internal/web"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
	"github.com/catalog-admin/catalog-admin/internal/web/session"
)

const sessionGCInterval = 10 * time.Minute

// Daemon represents the main application daemon.
type Daemon struct {
	webService *web.Service
	closers    []io.Closer
	cancel     context.CancelFunc
}

// Start runs the web service until SIGINT or SIGTERM and releases all resources.
func (d *Daemon) Start() error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- d.webService.Start()
	}()

	go d.webService.WaitShutdown()

	err := <-errCh

	d.Close()

	return err
}

// Close stops background work and closes cache and session storage.
func (d *Daemon) Close() {
	d.cancel()

	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close")
		}
	}
}

// Open connects and migrates the database configured in cfg.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	// sessions live in the database only on sqlite, the gofiber drivers create their own table
	if err := db.Migrate(gdb, cfg.DB.Engine == config.EngineSQLite); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return gdb, nil
}

// NewCache returns the subject cache selected by cfg.RBAC.CacheDriver.
func NewCache(ctx context.Context, cfg *config.Config) (rbac.Cache, io.Closer, error) {
	switch cfg.RBAC.CacheDriver {
	case "redis":
		r, err := cache.NewRedis(ctx, cfg.RBAC.RedisURL)
		if err != nil {
			return nil, nil, err //nolint:wrapcheck
		}

		return r, r, nil
	case "memory", "":
		return cache.NewMemory(cfg.RBAC.CacheSize, cfg.RBAC.CacheTTL), nil, nil
	default:
		return nil, nil, config.ErrUnknownCacheDriver
	}
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Daemon{cancel: cancel}

	deps, err := d.wire(ctx, cfg)
	if err != nil {
		d.Close()
		return nil, err
	}

	d.webService, err = web.New(deps)
	if err != nil {
		d.Close()
		return nil, err //nolint:wrapcheck
	}

	return d, nil
}

func (d *Daemon) wire(ctx context.Context, cfg *config.Config) (*handler.Deps, error) {
	gdb, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	store, err := acl.New(gdb)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err := seedIfEmpty(ctx, store, cfg.Seed); err != nil {
		return nil, err
	}

	c, closer, err := NewCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if closer != nil {
		d.closers = append(d.closers, closer)
	}

	authz := rbac.NewAuthorizer(store, c, rbac.Options{
		TTL:    cfg.RBAC.CacheTTL,
		Policy: rbac.Policy{BypassRole: cfg.RBAC.BypassRole},
	})

	aclService, err := auth.NewService(store, authz)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	storage, err := session.NewStorage(cfg, gdb)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	switch s := storage.(type) {
	case *session.GormStorage:
		go collectSessions(ctx, s)
	case io.Closer:
		d.closers = append(d.closers, s)
	}

	log.Info().
		Str("db", cfg.DB.Engine).
		Str("cache", cfg.RBAC.CacheDriver).
		Dur("cache_ttl", cfg.RBAC.CacheTTL).
		Str("bypass_role", cfg.RBAC.BypassRole).
		Msg("services wired")

	return &handler.Deps{
		Cfg:       cfg,
		DB:        gdb,
		ACL:       aclService,
		Authz:     authz,
		Sessions:  session.New(storage, cfg.Webserver.Session.ExpiryTime),
		Validator: handler.NewValidator(),
	}, nil
}

// collectSessions removes expired gorm sessions until ctx is done.
func collectSessions(ctx context.Context, s *session.GormStorage) {
	t := time.NewTicker(sessionGCInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.GC(); err != nil {
				log.Error().Err(err).Msg("session gc failed")
			}
		}
	}
}
