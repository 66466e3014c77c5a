// Package config loads process configuration from the environment.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every environment-sourced option the server recognizes.
type Config struct {
	Port int `envconfig:"PORT" default:"8000"`
	// GEMINI_API_KEY authenticates direct calls to the text generator
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	// GEMINI_URL, when set, delegates passage retrieval to a secondary
	// HTTP endpoint instead of calling the generator directly
	GeminiURL string `envconfig:"GEMINI_URL"`
	// TEXT_TIMEOUT bounds a single generator call
	TextTimeout time.Duration `envconfig:"TEXT_TIMEOUT" default:"3s"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
