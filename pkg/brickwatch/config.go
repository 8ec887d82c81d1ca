package brickwatch

import (
	"github.com/ghalamif/BrickWatch/internal/adapters/oracle"
	"github.com/ghalamif/BrickWatch/internal/app/config"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// BuildingConfig holds the registry's construction-time identity.
	BuildingConfig = config.BuildingConfig
	// APIConfig configures the HTTP API and its token table.
	APIConfig = config.APIConfig
	// ArchiveConfig configures the Postgres archiver.
	ArchiveConfig = config.ArchiveConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// JournalConfig configures on-disk event durability.
	JournalConfig = config.JournalConfig
	// OracleConfig holds oracle gateway connection details.
	OracleConfig = oracle.Config
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
