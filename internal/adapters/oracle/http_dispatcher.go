package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ghalamif/BrickWatch/internal/ports"
)

// Config captures the details required to reach the oracle gateway.
type Config struct {
	Endpoint string        `yaml:"endpoint"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	return nil
}

// HTTPDispatcher posts one JSON job per update request to the oracle
// gateway. The oracle reports its result later through the node's
// fulfillment callback; the dispatcher only covers the outbound half.
type HTTPDispatcher struct {
	cfg    Config
	client *http.Client
}

func NewHTTPDispatcher(cfg Config) (*HTTPDispatcher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &HTTPDispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (d *HTTPDispatcher) Dispatch(ctx context.Context, req ports.OracleRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.Endpoint+"/jobs", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if d.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+d.cfg.Token)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("oracle dispatch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("oracle dispatch: unexpected status %s", resp.Status)
	}
	return nil
}

var _ ports.Dispatcher = (*HTTPDispatcher)(nil)
