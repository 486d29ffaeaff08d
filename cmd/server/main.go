package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"brainrotify/api"
	"brainrotify/assemble"
	"brainrotify/captions"
	"brainrotify/config"
	"brainrotify/pinata"
	"brainrotify/pipeline"
	"brainrotify/publish"
	"brainrotify/retry"
	"brainrotify/script"
	"brainrotify/tts"
	"brainrotify/venice"
	"brainrotify/visuals"
)

func main() {
	// Load .env (local dev only — deployments use real env vars)
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("config file not found, using defaults", zap.String("path", configPath))
			cfg = config.Default()
		} else {
			log.Fatal("load config", zap.Error(err))
		}
	}

	veniceClient, err := venice.New(cfg, log.Named("venice"))
	if err != nil {
		log.Fatal("venice client", zap.Error(err))
	}
	store, err := pinata.New(log.Named("pinata"))
	if err != nil {
		log.Fatal("pinata client", zap.Error(err))
	}

	policy := retry.Policy{
		MaxAttempts: cfg.Limits.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Limits.BackoffBaseSeconds * float64(time.Second)),
	}

	orchestrator := pipeline.New(
		script.New(veniceClient, cfg.Script, policy, log.Named("script")),
		tts.New(veniceClient, policy, log.Named("tts")),
		visuals.New(veniceClient, policy, log.Named("visuals")),
		assemble.New(assemble.NewFFmpegRenderer(cfg.Video, cfg.Captions), log.Named("assemble")),
		publish.New(store, policy, log.Named("publish")),
		captions.Options{
			Granularity:     cfg.Captions.Granularity,
			MaxCharsPerLine: cfg.Captions.MaxCharsPerLine,
		},
		cfg.Paths.Work,
		cfg.Limits.SegmentConcurrency,
		log.Named("pipeline"),
	)

	handler := api.NewHandler(orchestrator, log.Named("api"))

	log.Info("server listening", zap.String("addr", cfg.Server.Addr))
	if err := http.ListenAndServe(cfg.Server.Addr, handler.Routes()); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}
