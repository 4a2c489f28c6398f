package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool
	UseConsoleWriter bool
}

// Rotation describes one rolling log file handled by lumberjack.
type Rotation struct {
	Name       string // file name below LogFile.Path
	MaxSize    int    // megabytes
	MaxBackups int
	MaxAge     int // days
}

// LogFile implements a file based logger.
// Every level group gets its own rolling file.
type LogFile struct {
	Enabled bool
	Path    string

	Access Rotation
	Error  Rotation
	Info   Rotation
	Trace  Rotation
	Warn   Rotation
}

// Log implements the logger config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error.
	LogEnv   string

	// EnableAccessLogToConsole writes the http access log to stdout as well.
	// Console.Enabled still has to be true.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool // do not log /checkalive calls

	// SQLLevel sets the verbosity of the gorm adapter: silent, error, warn or info.
	SQLLevel string

	AppName     string
	ServiceName string

	Console Console
	File    LogFile
}
