package db

import "github.com/smallbiznis/pike/internal/config"

// Config describes a SQL connection for the database blob store.
type Config struct {
	Type     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Path     string

	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

// FromStorage maps storage settings onto a connection config.
func FromStorage(cfg config.StorageConfig) Config {
	return Config{
		Type:            cfg.DBType,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		SSLMode:         cfg.DBSSLMode,
		Path:            cfg.DBPath,
		MaxIdleConn:     2,
		MaxOpenConn:     10,
		ConnMaxLifetime: 300,
		ConnMaxIdleTime: 60,
	}
}
