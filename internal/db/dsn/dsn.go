// Package dsn builds data source names for the configured database engine.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/catalog-admin/catalog-admin/internal/config"
)

// Create builds the DSN the gorm driver of cfg.DB.Engine expects.
func Create(cfg *config.Config) string {
	db := cfg.DB

	switch db.Engine {
	case config.EnginePostgres:
		out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			db.Host, db.Port, db.User, db.Password, db.Name)
		if db.Extras != "" {
			out += " " + db.Extras
		}

		return out
	case config.EngineSQLite:
		if db.Extras != "" {
			return db.Path + "?" + db.Extras
		}

		return db.Path
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			db.User, db.Password, db.Host, db.Port, db.Name, db.Extras)
	}
}

// URI builds the connection uri used by the gofiber session storages.
// MySQL takes the driver DSN, postgres a postgres:// url.
func URI(cfg *config.Config) string {
	if cfg.DB.Engine != config.EnginePostgres {
		return Create(cfg)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DB.User, cfg.DB.Password),
		Host:     net.JoinHostPort(cfg.DB.Host, strconv.Itoa(cfg.DB.Port)),
		Path:     "/" + cfg.DB.Name,
		RawQuery: cfg.DB.Extras,
	}

	return u.String()
}
