package config

// Supported database engines.
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// DB holds the database configuration settings.
type DB struct {
	Engine   string // mysql, postgres or sqlite
	Extras   string // appended to the dsn, e.g. "parseTime=true" or "sslmode=disable"
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Path     string // sqlite file, ":memory:" for an in-memory database
}
