package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/sbezverk/msort/remote"
)

// serverConfig is the TOML configuration of the serve mode.
type serverConfig struct {
	Listen         string `toml:"listen"`
	MaxWorkers     int    `toml:"max_workers"`
	MaxRecvMsgSize int    `toml:"max_recv_msg_size"`
}

func defaultServerConfig() *serverConfig {
	return &serverConfig{
		Listen:         ":50051",
		MaxWorkers:     remote.MaxWorkers,
		MaxRecvMsgSize: remote.MaxRcvMsgSize,
	}
}

// loadServerConfig reads fn over the defaults, an empty fn returns the defaults.
func loadServerConfig(fn string) (*serverConfig, error) {
	cfg := defaultServerConfig()
	if fn == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(fn, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file %s with error: %w", fn, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("unknown keys %v in config file %s", undecoded, fn)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", fn, err)
	}

	return cfg, nil
}

func (c *serverConfig) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is empty")
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be positive, got %d", c.MaxWorkers)
	}
	if c.MaxRecvMsgSize <= 0 {
		return fmt.Errorf("max_recv_msg_size must be positive, got %d", c.MaxRecvMsgSize)
	}
	return nil
}

func (c *serverConfig) serverOptions() []remote.ServerOption {
	return []remote.ServerOption{
		remote.WithMaxWorkers(c.MaxWorkers),
		remote.WithMaxRecvMsgSize(c.MaxRecvMsgSize),
	}
}
