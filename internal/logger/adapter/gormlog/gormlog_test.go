package gormlog_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/catalog-admin/catalog-admin/internal/logger/adapter/gormlog"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, gormlog.ParseLevel("silent"))
	assert.Equal(t, gormlogger.Error, gormlog.ParseLevel("error"))
	assert.Equal(t, gormlogger.Info, gormlog.ParseLevel("info"))
	assert.Equal(t, gormlogger.Warn, gormlog.ParseLevel(""))
}

func TestTrace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT 1", 1 }
	errQuery := errors.New("x")

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		contain string
	}{
		{name: "silent drops errors", level: gormlogger.Silent, begin: time.Now(), err: errQuery},
		{name: "error logged", level: gormlogger.Error, begin: time.Now(), err: errQuery, contain: "query failed"},
		{name: "not found ignored", level: gormlogger.Error, begin: time.Now(), err: gorm.ErrRecordNotFound},
		{name: "slow query warned", level: gormlogger.Warn, begin: time.Now().Add(-time.Second), contain: "slow query"},
		{name: "fast query hidden on warn", level: gormlogger.Warn, begin: time.Now()},
		{name: "info logs sql", level: gormlogger.Info, begin: time.Now(), contain: "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			zl := zerolog.New(&buf).Level(zerolog.DebugLevel)
			l := gormlog.NewWithLogger(&zl, tt.level)

			l.Trace(context.Background(), tt.begin, sql, tt.err)

			if tt.contain == "" {
				assert.Empty(t, buf.String())
				return
			}

			assert.Contains(t, buf.String(), tt.contain)
		})
	}
}

func TestLogMode(t *testing.T) {
	var buf bytes.Buffer

	zl := zerolog.New(&buf)
	l := gormlog.NewWithLogger(&zl, gormlogger.Silent)

	l.Info(context.Background(), "hidden %d", 1)
	assert.Empty(t, buf.String())

	l.LogMode(gormlogger.Info).Info(context.Background(), "shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}
