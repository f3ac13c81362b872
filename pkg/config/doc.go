// Package config loads typed configuration from environment variables.
//
// Configuration structs declare their variables with caarlos0/env tags:
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
// Load reads a .env file once per process (if present), parses the struct and
// caches the result per type, so every package asking for the same struct
// sees the same values. Parse skips the cache and is what tests use.
package config
