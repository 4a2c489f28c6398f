package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/config"
	fiberlog "github.com/catalog-admin/catalog-admin/internal/logger/adapter/fiber"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/admin/permission"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/admin/role"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/admin/user"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/authorize"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/category"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/login"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/logout"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/product"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/profile"
	authmw "github.com/catalog-admin/catalog-admin/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers 200 while the service accepts traffic.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the configured port and blocks until it stops.
func (s *Service) Start() error {
	addr := ":" + strconv.Itoa(s.cfg.Webserver.Port)

	err := s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: !s.cfg.DevMode})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err //nolint:wrapcheck
	}

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and stops the web service gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// ErrorHandler renders errors that escaped a handler in the API envelope.
func ErrorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
	}

	return c.Status(code).JSON(handler.Response{Message: msg})
}

// NewApp returns a fiber app with the session middleware and every API route.
// middleware runs first, in order, on every request.
func NewApp(deps *handler.Deps, middleware ...fiber.Handler) (*fiber.App, error) {
	if !deps.Valid() {
		return nil, handler.ErrNilDeps
	}

	app := fiber.New(fiber.Config{
		AppName:       deps.Cfg.Title,
		CaseSensitive: true,
		Immutable:     true,
		ErrorHandler:  ErrorHandler,
	})

	for _, m := range middleware {
		app.Use(m)
	}

	if !deps.Cfg.Webserver.DisableRecover {
		app.Use(recoverer.New())
	}

	app.Use(authmw.Middleware(deps.Sessions, deps.Cfg.Webserver.Session.CookieName))

	if err := Register(app, deps); err != nil {
		return nil, err
	}

	return app, nil
}

// Register adds every API route to app. The ACL administration is reserved to admins.
func Register(app *fiber.App, deps *handler.Deps) error {
	app.Use(handler.ACLPath, auth.RequireRole(deps.Authz, auth.RoleAdmin))

	services := []handler.Service{
		&login.Handler,
		&logout.Handler,
		&profile.Handler,
		&authorize.Handler,
		&role.Handler,
		&permission.Handler,
		&user.Handler,
		&product.Handler,
		&category.Handler,
	}

	for _, svc := range services {
		if err := svc.Init(app, deps); err != nil {
			return err //nolint:wrapcheck
		}
	}

	return nil
}

// New creates the web service with access log, health check and metrics.
func New(deps *handler.Deps) (*Service, error) {
	if !deps.Valid() {
		return nil, handler.ErrNilDeps
	}

	service := &Service{cfg: deps.Cfg, fastShutDown: deps.Cfg.DevMode}
	service.alive.Store(true)

	app, err := NewApp(deps, fiberlog.New(fiberlog.Config{
		Config:        deps.Cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))
	if err != nil {
		return nil, err
	}

	app.Get(CheckAlivePath, func(c fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	service.App = app

	return service, nil
}
