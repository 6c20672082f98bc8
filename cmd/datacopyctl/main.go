package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/copperline/datacopy/internal/envelope"
	"github.com/copperline/datacopy/internal/logging"
	"github.com/copperline/datacopy/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "datacopyctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg := defaultConfig()
	if *cfgPath != "" {
		loaded, err := loadConfig(*cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log_level: %w", err)
	}
	logger := logging.Init("datacopyctl", level)

	reg := transport.NewRegistry()
	err = reg.Register(cfg.Channel, func(e *envelope.Envelope) {
		logger.Info().Str("channel", e.Channel()).Str("payload", e.Payload()).Msg("received")
	})
	if err != nil {
		return err
	}

	lb := transport.NewLoopback(reg, logger)
	for i := 0; i < cfg.Repeat; i++ {
		if err := lb.Send(cfg.Channel, cfg.Payload); err != nil {
			return err
		}
	}
	return nil
}
