// Package config loads typed configuration structs from environment
// variables (and an optional .env file) using caarlos0/env struct tags.
//
// Each config type is loaded exactly once per process and cached, so
// independent components asking for the same struct always agree:
//
//	type ServerConfig struct {
//		Addr string `env:"SERVER_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	config.MustLoad(&cfg)
package config
