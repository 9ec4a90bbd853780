// Package config turns bound cobra/viper flags into a validated Config
// the server wiring code can use without importing viper itself.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved set of flags/env vars the server runs with.
type Config struct {
	IP          string
	Port        int
	CmdFile     string
	LogDir      string
	Workers     int
	RecordLat   bool
	Choice      string // one of RR, KEY, HASH
	MetricsAddr string
}

// FromViper reads the current global viper state, validates it, and
// returns a Config. Call after the owning cobra command's flags have
// been bound (see (*cobra.Command).PreRunE in cmd/kvfabric).
func FromViper() (*Config, error) {
	choice := strings.ToUpper(viper.GetString("choice"))
	switch choice {
	case "RR", "KEY", "HASH":
	default:
		return nil, fmt.Errorf("config: invalid --choice %q (want RR, KEY, or HASH)", choice)
	}

	workers := viper.GetInt("workers")
	if workers < 1 {
		return nil, fmt.Errorf("config: --workers must be >= 1, got %d", workers)
	}

	port := viper.GetInt("port")
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("config: --port must be in [1,65535], got %d", port)
	}

	return &Config{
		IP:          viper.GetString("ip"),
		Port:        port,
		CmdFile:     viper.GetString("cmd-file"),
		LogDir:      viper.GetString("log-dir"),
		Workers:     workers,
		RecordLat:   viper.GetBool("record-lat"),
		Choice:      choice,
		MetricsAddr: viper.GetString("metrics-addr"),
	}, nil
}

// DispatchChoice maps Choice to the lowercase key internal/dispatch.New
// expects.
func (c *Config) DispatchChoice() string {
	switch c.Choice {
	case "KEY":
		return "key"
	case "HASH":
		return "hash"
	default:
		return "rr"
	}
}

// Addr is the host:port NetWorker listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.IP, c.Port)
}
