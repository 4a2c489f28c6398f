// Package config handles input from etc/main.toml and the environment.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes single value overrides, e.g. CATALOG_ADMIN_WEBSERVER_PORT.
	EnvPrefix = "CATALOG_ADMIN"
	// EnvJSON holds a JSON document merged over the file config.
	EnvJSON = EnvPrefix + "_CONFIG_JSON"
)

// ReadConfig from the main.toml below path.
// path may also name a .toml file directly.
func ReadConfig(path string) (Config, error) {
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	setDefaults(v)

	if strings.HasSuffix(path, ".toml") {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("main")
		v.SetConfigType("toml")
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	if raw := os.Getenv(EnvJSON); raw != "" {
		v.SetConfigType("json")

		if err := v.MergeConfig(strings.NewReader(raw)); err != nil {
			return Config{}, errors.Wrapf(err, "failed to merge %s", EnvJSON)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	return c, validate(&c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "Catalog Admin")
	v.SetDefault("db.engine", EngineSQLite)
	v.SetDefault("db.path", "catalog-admin.db")
	v.SetDefault("log.loglevel", "info")
	v.SetDefault("log.sqllevel", "warn")
	v.SetDefault("log.appname", "catalog-admin")
	v.SetDefault("log.servicename", "catalog-admin")
	v.SetDefault("webserver.shutdowntime", 5) //nolint:mnd
	v.SetDefault("webserver.session.expirytime", "12h")
	v.SetDefault("webserver.session.cookiename", "session")
	v.SetDefault("rbac.cachedriver", "memory")
	v.SetDefault("rbac.cachettl", "30m")
	v.SetDefault("rbac.cachesize", 10000) //nolint:mnd
	v.SetDefault("seed.adminpassword", "changeme")
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode config")
	}

	return string(out), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", errors.Wrap(err, "failed to encode config")
	}

	return buffer.String(), nil
}

// validate checks the settings the service can not start without
// and fills in the remaining defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5
	}

	switch c.DB.Engine {
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrap(ErrUnknownDBEngine, invalidErrMessage)
	}

	switch c.RBAC.CacheDriver {
	case "memory":
	case "redis":
		if c.RBAC.RedisURL == "" {
			return errors.Wrap(ErrEmptyRedisURL, invalidErrMessage)
		}
	default:
		return errors.Wrap(ErrUnknownCacheDriver, invalidErrMessage)
	}

	if c.RBAC.CacheTTL <= 0 {
		c.RBAC.CacheTTL = 30 * time.Minute //nolint:mnd
	}

	return nil
}
