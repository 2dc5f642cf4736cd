package appconfig

import (
	"fmt"
	"strings"
)

const (
	PersistBackendPostgres PersistBackend = "postgres"
	PersistBackendRedis    PersistBackend = "redis"
)

type PersistBackend string

func (b *PersistBackend) Decode(value string) error {
	switch v := PersistBackend(strings.ToLower(strings.TrimSpace(value))); v {
	case PersistBackendPostgres, PersistBackendRedis:
		*b = v
		return nil
	default:
		return fmt.Errorf("invalid persist backend: expect one of postgres, redis, but got: %s", value)
	}
}
