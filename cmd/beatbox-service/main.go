package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"beatbox-service/internal/config"
	"beatbox-service/internal/core"
	"beatbox-service/internal/logger"
)

func main() {
	// Service log level; -1 keeps the level from the config file
	var serviceLogLevel int
	flag.IntVar(&serviceLogLevel, "log", -1, "Service log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")

	var configPath string
	flag.StringVar(&configPath, "config", config.DefaultPath, "Path to the YAML configuration file")

	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.NewStdLogger(logger.LogLevelError).Fatalf("Failed to load config: %v", err)
	}

	level := logger.LogLevel(cfg.LogLevel)
	if serviceLogLevel >= 0 {
		level = logger.LogLevel(serviceLogLevel)
	}
	l := logger.NewStdLogger(level)

	l.Infof("Starting beatbox service...")

	deps, audio := core.OpenDevices(cfg, l)
	defer midi.CloseDriver()

	system, err := core.NewBeatboxSystem(cfg, deps, l)
	if err != nil {
		audio.Close()
		l.Fatalf("Failed to create system: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := system.Start(ctx); err != nil {
		audio.Close()
		l.Fatalf("Failed to start system: %v", err)
	}

	l.Infof("System started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		l.Infof("Received signal %v, shutting down...", sig)
	case <-system.Done():
		l.Infof("Stop command received, shutting down...")
	}

	system.Shutdown()
	audio.Close()
	l.Infof("Shutdown complete")
}
