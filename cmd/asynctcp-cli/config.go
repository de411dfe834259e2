package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/pior/asynctcp"
)

// asynctcp-cli config.toml key mapping to socket options.
type fileConfig struct {
	ReuseAddress      bool `toml:"reuse_address"`
	SendBufferSize    int  `toml:"send_buffer_size"`
	ReceiveBufferSize int  `toml:"receive_buffer_size"`
	KeepAlive         bool `toml:"keep_alive"`
	NoDelay           bool `toml:"no_delay"`
}

// loadConfig overlays config.toml values on the library defaults.
func loadConfig(path string) (asynctcp.Config, error) {
	cfg := asynctcp.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return asynctcp.Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("reuse_address") {
		cfg.ReuseAddress = raw.ReuseAddress
	}
	if meta.IsDefined("send_buffer_size") {
		cfg.SendBufferSize = raw.SendBufferSize
	}
	if meta.IsDefined("receive_buffer_size") {
		cfg.ReceiveBufferSize = raw.ReceiveBufferSize
	}
	if meta.IsDefined("keep_alive") {
		cfg.KeepAlive = raw.KeepAlive
	}
	if meta.IsDefined("no_delay") {
		cfg.NoDelay = raw.NoDelay
	}
	return cfg, nil
}
