package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ghalamif/BrickWatch/internal/adapters/oracle"
	"github.com/ghalamif/BrickWatch/internal/domain"
	"github.com/ghalamif/BrickWatch/internal/ports"
)

type Config struct {
	Policy   ports.Policy   `yaml:"policy"`
	Oracle   oracle.Config  `yaml:"oracle"`
	Building BuildingConfig `yaml:"building"`
	API      APIConfig      `yaml:"api"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Journal  JournalConfig  `yaml:"journal"`
}

// BuildingConfig is the construction-time identity of the registry: owner,
// oracle principal, per-channel job ids, and the initial fee.
type BuildingConfig struct {
	Owner           string            `yaml:"owner"`
	OraclePrincipal string            `yaml:"oracle_principal"`
	InitialFee      uint64            `yaml:"initial_fee"`
	Jobs            map[string]string `yaml:"jobs"`
	CallbackURL     string            `yaml:"callback_url"`
}

type APIConfig struct {
	Addr string `yaml:"addr"`
	// Tokens maps bearer tokens to principal names. The transport only
	// identifies callers; the registry decides what they may do.
	Tokens map[string]string `yaml:"tokens"`
}

type ArchiveConfig struct {
	ConnString    string `yaml:"conn_string"`
	EventsTable   string `yaml:"events_table"`
	ReadingsTable string `yaml:"readings_table"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type JournalConfig struct {
	Dir string `yaml:"dir"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Policy.MaxJournalSizeBytes == 0 {
		c.Policy.MaxJournalSizeBytes = 1 << 30
	}
	if c.Policy.MaxQueueLen == 0 {
		c.Policy.MaxQueueLen = 10_000
	}
	if c.Policy.MaxBatchSize == 0 {
		c.Policy.MaxBatchSize = 500
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 5 * time.Millisecond
	}
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = "block"
	}
	if c.Policy.OnJournalFull == "" {
		c.Policy.OnJournalFull = "reject"
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9120"
	}
	if c.Archive.EventsTable == "" {
		c.Archive.EventsTable = "building_events"
	}
	if c.Archive.ReadingsTable == "" {
		c.Archive.ReadingsTable = "building_readings"
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "./data/journal"
	}

	c.Oracle.ApplyDefaults()
}

func (c *Config) Validate() error {
	if err := c.Oracle.Validate(); err != nil {
		return fmt.Errorf("oracle config: %w", err)
	}
	if c.Building.Owner == "" {
		return fmt.Errorf("building.owner is required")
	}
	if c.Building.OraclePrincipal == "" {
		return fmt.Errorf("building.oracle_principal is required")
	}
	if c.Building.CallbackURL == "" {
		return fmt.Errorf("building.callback_url is required")
	}
	if c.Archive.ConnString == "" {
		return fmt.Errorf("archive.conn_string is required")
	}

	// Every channel needs its own job id; the oracle addresses computations
	// per channel, not globally.
	for _, ch := range domain.Channels() {
		if c.Building.Jobs[ch.String()] == "" {
			return fmt.Errorf("building.jobs.%s is required", ch)
		}
	}
	for name := range c.Building.Jobs {
		if _, err := domain.ParseChannel(name); err != nil {
			return fmt.Errorf("building.jobs: %w", err)
		}
	}
	return nil
}

// JobTable converts the configured channel→job mapping to domain types.
// Call only after Validate.
func (c *Config) JobTable() map[domain.Channel]domain.JobID {
	out := make(map[domain.Channel]domain.JobID, len(c.Building.Jobs))
	for name, job := range c.Building.Jobs {
		ch, err := domain.ParseChannel(name)
		if err != nil {
			continue
		}
		out[ch] = domain.JobID(job)
	}
	return out
}

// PrincipalTable converts the configured token→principal mapping.
func (c *Config) PrincipalTable() map[string]domain.Principal {
	out := make(map[string]domain.Principal, len(c.API.Tokens))
	for token, principal := range c.API.Tokens {
		out[token] = domain.Principal(principal)
	}
	return out
}
