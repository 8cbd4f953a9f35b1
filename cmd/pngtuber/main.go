package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/NicolasHaas/pngtuber/pkg/audio"
	"github.com/NicolasHaas/pngtuber/pkg/config"
	"github.com/NicolasHaas/pngtuber/pkg/logging"
	"github.com/NicolasHaas/pngtuber/pkg/metrics"
	"github.com/NicolasHaas/pngtuber/pkg/version"
	"github.com/NicolasHaas/pngtuber/ui"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath, "YAML config file (watched for changes)")
	image := flag.String("image", "", "Avatar artwork, overrides source.image_path")
	metricsAddr := flag.String("metrics", "", "HTTP bind address for Prometheus /metrics, overrides metrics_addr")
	listDevices := flag.Bool("list-devices", false, "List audio input devices and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")
	logLevel := flag.String("log-level", "", "Log level: "+logging.LevelNames())
	logFormat := flag.String("log-format", "", "Log format: text or json")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Full())
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if *image != "" {
		cfg.Source["image_path"] = *image
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	// Configure structured logging
	if err := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging config: %v\n", err)
		os.Exit(1)
	}

	if *listDevices {
		devices, err := audio.ListInputDevices()
		if err != nil {
			slog.Error("list devices", "err", err)
			os.Exit(1)
		}
		for _, d := range devices {
			marker := " "
			if d.IsDefault {
				marker = "*"
			}
			fmt.Printf("%s %s (%s, %d ch, %.0f Hz)\n", marker, d.Name, d.HostAPIName, d.MaxInputs, d.SampleRate)
		}
		return
	}

	slog.Info("starting pngtuber", "version", version.String(), "config", *cfgPath)
	if err := ui.NewApp(cfg, *cfgPath, metrics.New()).Run(); err != nil {
		slog.Error("avatar source failed", "err", err)
		os.Exit(1)
	}
}
