package config

import (
	"testing"

	"github.com/spf13/viper"
)

func resetViper() {
	viper.Reset()
	viper.Set("ip", "127.0.0.1")
	viper.Set("port", 12345)
	viper.Set("workers", 1)
	viper.Set("choice", "RR")
}

func TestFromViperValid(t *testing.T) {
	resetViper()
	cfg, err := FromViper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:12345" {
		t.Fatalf("got %q", cfg.Addr())
	}
	if cfg.DispatchChoice() != "rr" {
		t.Fatalf("got %q", cfg.DispatchChoice())
	}
}

func TestFromViperRejectsUnknownChoice(t *testing.T) {
	resetViper()
	viper.Set("choice", "BOGUS")
	if _, err := FromViper(); err == nil {
		t.Fatal("expected error for unknown choice")
	}
}

func TestFromViperRejectsZeroWorkers(t *testing.T) {
	resetViper()
	viper.Set("workers", 0)
	if _, err := FromViper(); err == nil {
		t.Fatal("expected error for zero workers")
	}
}

func TestDispatchChoiceMapping(t *testing.T) {
	resetViper()
	viper.Set("choice", "hash")
	cfg, err := FromViper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DispatchChoice() != "hash" {
		t.Fatalf("got %q", cfg.DispatchChoice())
	}
}
