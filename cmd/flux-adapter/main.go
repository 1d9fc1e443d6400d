package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"flux-adapter/internal/config"
	"flux-adapter/internal/httpapi"
	"flux-adapter/internal/mqtt"
	"flux-adapter/internal/observability"
	"flux-adapter/internal/proto/flux"
	"flux-adapter/internal/store"
)

func main() {
	cfg := config.Load()
	setLogLevel(cfg.LogLevel)

	devices, err := config.LoadDevices(cfg.DevicesFile)
	if err != nil {
		slog.Error("devices file invalid", "path", cfg.DevicesFile, "error", err)
		os.Exit(1)
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Postgres.Host, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName, cfg.Postgres.Port)
	repo, err := store.NewRepository(dsn)
	if err != nil {
		slog.Error("db init failed", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	cache := store.NewStateCache(rdb, 0)

	mClient := mqtt.New(cfg.MQTTBrokerURL)

	shutdownObs, promHandler, tracer := observability.SetupObservability("flux-adapter")
	defer shutdownObs()

	// Bulb protocol drivers register through flux.RegisterDialer; a build
	// of this binary links one in with an underscore import.
	dial, ok := flux.DialerFor(flux.DefaultDriver)
	if !ok {
		slog.Error("no bulb protocol driver linked", "driver", flux.DefaultDriver)
		os.Exit(1)
	}
	scanner, _ := flux.ScannerFor(flux.DefaultDriver)

	adapter := flux.New(mClient, repo, cache, flux.Options{
		AdapterID:    cfg.AdapterID,
		Version:      cfg.AdapterVersion,
		TopicPrefix:  cfg.TopicPrefix,
		PollInterval: cfg.PollInterval,
		ScanInterval: cfg.NetworkScanInterval,
		EffectSpeed:  cfg.EffectSpeed,
		AutomaticAdd: cfg.AutomaticAdd,
		Bulbs:        bulbConfigs(devices),
		Dial:         dial,
		Scanner:      scanner,
	})
	if err := adapter.Start(context.Background()); err != nil {
		slog.Error("flux start failed", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })
	httpapi.NewServer(adapter).Register(mux)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: observability.WrapHandler(tracer, "flux-adapter", mux)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("adapter server error", "error", err)
		}
	}()
	slog.Info("flux-adapter started", "port", cfg.Port, "adapter_id", cfg.AdapterID)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	adapter.Stop()
	mClient.Disconnect()
	_ = rdb.Close()
	_ = srv.Shutdown(ctx)
	slog.Info("flux-adapter stopped")
}

func bulbConfigs(devices map[string]config.DeviceConfig) []flux.BulbConfig {
	bulbs := make([]flux.BulbConfig, 0, len(devices))
	for host, dc := range devices {
		bc := flux.BulbConfig{
			Host:        host,
			Name:        dc.Name,
			Mode:        flux.Mode(dc.Mode),
			EffectSpeed: dc.EffectSpeed,
		}
		if ce := dc.CustomEffect; ce != nil {
			bc.CustomEffect = &flux.CustomEffect{
				Colors:     ce.RGBColors(),
				SpeedPct:   ce.SpeedPct,
				Transition: flux.Transition(ce.Transition),
			}
		}
		bulbs = append(bulbs, bc)
	}
	return bulbs
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case "warn":
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "error":
		slog.SetLogLoggerLevel(slog.LevelError)
	default:
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}
}
