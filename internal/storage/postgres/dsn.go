package postgres

import (
	"fmt"

	"github.com/sentinel-red/sentinel-backend/config"
)

// DSN returns cfg.DSN when set, otherwise a key/value connection string
// built from the individual fields.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name,
	)
}
