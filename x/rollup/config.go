package rollup

import (
	"errors"
	"strings"
	"time"
)

// Config locates the L2 rollup node.
type Config struct {
	RPCEndpoint string        `mapstructure:"rpc_endpoint" yaml:"rpc_endpoint"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
}

func DefaultConfig() Config {
	return Config{
		RPCEndpoint: "http://localhost:8546",
		DialTimeout: 10 * time.Second,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.RPCEndpoint) == "" {
		return errors.New("l2.rpc_endpoint is required")
	}
	if c.DialTimeout <= 0 {
		return errors.New("l2.dial_timeout must be positive")
	}
	return nil
}
