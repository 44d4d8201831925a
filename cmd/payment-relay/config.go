package main

import (
	"log"

	"github.com/LavaJover/shvark-mypvit-relay/internal/config"
)

var configPath string

// loadConfig honours --config before falling back to PAYMENT_CONFIG_PATH.
// An incomplete config is fatal in production and tolerated in sandbox.
func loadConfig() *config.Config {
	if configPath == "" {
		return config.MustLoad()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		if cfg == nil || !cfg.Sandbox() {
			log.Fatalf("failed to load config: %v", err)
		}
		log.Printf("config incomplete, continuing in sandbox mode: %v", err)
	}
	return cfg
}
