package repository

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DialectorFactory builds a gorm.Dialector from decoded connection settings.
type DialectorFactory func(settings DBSettings) (gorm.Dialector, error)

var (
	dialectorMu       sync.RWMutex
	dialectorRegistry = map[string]DialectorFactory{
		"sqlite":   sqliteDialector,
		"postgres": postgresDialector,
		"mysql":    mysqlDialector,
	}
)

// RegisterDialector registers a factory for a database type, overriding any
// existing registration.
func RegisterDialector(dbType string, factory DialectorFactory) {
	dialectorMu.Lock()
	defer dialectorMu.Unlock()
	dialectorRegistry[dbType] = factory
}

func dialectorFor(settings DBSettings) (gorm.Dialector, error) {
	dialectorMu.RLock()
	factory, ok := dialectorRegistry[settings.Type]
	dialectorMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no dialector registered for database type '%s'", settings.Type)
	}
	return factory(settings)
}

func sqliteDialector(settings DBSettings) (gorm.Dialector, error) {
	if settings.Database == "" {
		return nil, errors.New("sqlite database path cannot be empty")
	}
	return sqlite.Open(settings.Database), nil
}

func postgresDialector(settings DBSettings) (gorm.Dialector, error) {
	sslmode := settings.Sslmode
	if sslmode == "" {
		sslmode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		settings.Host, settings.Port, settings.User, settings.Password, settings.Database, sslmode)
	return postgres.Open(dsn), nil
}

func mysqlDialector(settings DBSettings) (gorm.Dialector, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		settings.User, settings.Password, settings.Host, settings.Port, settings.Database)
	return mysql.Open(dsn), nil
}
