// internal/config/database.go
package config

import (
	"fmt"
)

// DSN pins the session to UTC so day boundaries in date filters match the
// stored timestamps.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC application_name=shopbook",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}
