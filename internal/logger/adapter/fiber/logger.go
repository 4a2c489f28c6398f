// Package fiber implements a zerolog based access log middleware for fiber.
package fiber

import (
	"errors"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/catalog-admin/catalog-admin/internal/logger"
)

// Config implements the middleware settings.
type Config struct {
	// Next skips this middleware when it returns true.
	Next func(c fiber.Ctx) bool

	// Config of the logger.
	Config logger.Log

	// CacheControlError is set as Cache-Control on responses that ended in an error.
	CacheControlError string

	// CheckAliveURI is not logged when Config.DisableCheckAlive is set.
	CheckAliveURI string

	// Output replaces the configured file and console writers. Used by tests.
	Output io.Writer
}

// ConfigDefault is the default config.
var ConfigDefault = Config{ //nolint:gochecknoglobals
	CacheControlError: "max-age=0",
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		return ConfigDefault
	}

	cfg := config[0]

	if cfg.CacheControlError == "" {
		cfg.CacheControlError = ConfigDefault.CacheControlError
	}

	return cfg
}

func writers(cfg Config) []io.Writer {
	if cfg.Output != nil {
		return []io.Writer{cfg.Output}
	}

	var ws []io.Writer

	if cfg.Config.File.Enabled {
		ws = append(ws, logger.Rolling(cfg.Config.File.Path, cfg.Config.File.Access))
	}

	if cfg.Config.Console.Enabled && cfg.Config.EnableAccessLogToConsole {
		if cfg.Config.Console.UseConsoleWriter {
			ws = append(ws, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{"level"},
			})
		} else {
			ws = append(ws, os.Stdout)
		}
	}

	return ws
}

// New creates the access log middleware.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	accessLog := zerolog.New(zerolog.MultiLevelWriter(writers(cfg)...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(c fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			handleChainError(c, chainErr, cfg.CacheControlError)
		}

		elapsed := time.Since(start).Seconds()
		c.Set("X-Performance", strconv.FormatFloat(elapsed, 'f', 6, 64))

		p := c.Path()
		if cfg.Config.DisableCheckAlive && p == cfg.CheckAliveURI {
			return nil
		}

		if qs := c.Request().URI().QueryString(); len(qs) > 0 {
			p += "?" + string(qs)
		}

		entry := accessLog.Log().
			Str("IP", c.IP()).
			Int("status", c.Response().StatusCode()).
			Float64("X-Performance", elapsed).
			Str("URI", p).
			Str("method", c.Method()).
			Str("host", c.Hostname()).
			Str(fiber.HeaderXForwardedFor, c.Get(fiber.HeaderXForwardedFor)).
			Str(fiber.HeaderUserAgent, c.Get(fiber.HeaderUserAgent)).
			Str(fiber.HeaderReferer, c.Get(fiber.HeaderReferer))

		if uid, ok := c.Locals("user_id").(uint64); ok {
			entry.Uint64("user_id", uid)
		}

		if chainErr != nil {
			entry.Err(chainErr)
		}

		entry.Send()

		return nil
	}
}

// handleChainError renders err through the app error handler so the logged
// status matches what the client receives.
func handleChainError(c fiber.Ctx, err error, cacheControl string) {
	if h := c.App().Config().ErrorHandler; h != nil {
		if h(c, err) == nil {
			return
		}
	} else {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		if c.Status(code).SendString(err.Error()) == nil {
			return
		}
	}

	_ = c.SendStatus(fiber.StatusInternalServerError)
	c.Set(fiber.HeaderCacheControl, cacheControl)
}
