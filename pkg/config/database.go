package config

import "fmt"

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Host     string `env:"AUTHZ_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"AUTHZ_PG_PORT" env-default:"5432"`
	Database string `env:"AUTHZ_PG_DATABASE" env-default:"device_authz_db"`
	User     string `env:"AUTHZ_PG_USER" env-default:"device_authz"`
	Password string `env:"AUTHZ_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"AUTHZ_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}
