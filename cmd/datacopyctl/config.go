package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Channel  string
	Payload  string
	Repeat   int
	LogLevel string
}

func defaultConfig() Config {
	return Config{
		Channel:  "Chat",
		Payload:  "Hello",
		Repeat:   1,
		LogLevel: "info",
	}
}

type fileConfig struct {
	Channel  string `toml:"channel"`
	Payload  string `toml:"payload"`
	Repeat   int    `toml:"repeat"`
	LogLevel string `toml:"log_level"`
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("channel") {
		cfg.Channel = strings.TrimSpace(raw.Channel)
	}

	if meta.IsDefined("payload") {
		cfg.Payload = raw.Payload
	}

	if meta.IsDefined("repeat") {
		if raw.Repeat < 1 {
			return Config{}, fmt.Errorf("repeat must be positive: %d", raw.Repeat)
		}
		cfg.Repeat = raw.Repeat
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}

	return cfg, nil
}
