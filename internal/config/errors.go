package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrUnknownDBEngine error if db.engine is not mysql, postgres or sqlite.
	ErrUnknownDBEngine = errors.New("config db.engine must be mysql, postgres or sqlite")

	// ErrUnknownCacheDriver error if rbac.cachedriver is not memory or redis.
	ErrUnknownCacheDriver = errors.New("config rbac.cachedriver must be memory or redis")

	// ErrEmptyRedisURL error if the redis cache driver has no url.
	ErrEmptyRedisURL = errors.New("config rbac.redisurl can not be empty with the redis cache driver")
)
