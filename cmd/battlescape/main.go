package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/battlescape/internal/api"
	"github.com/annel0/battlescape/internal/app"
	"github.com/annel0/battlescape/internal/audio"
	"github.com/annel0/battlescape/internal/config"
	"github.com/annel0/battlescape/internal/delta"
	"github.com/annel0/battlescape/internal/effects"
	"github.com/annel0/battlescape/internal/eventbus"
	"github.com/annel0/battlescape/internal/logging"
	"github.com/annel0/battlescape/internal/observability"
	"github.com/annel0/battlescape/internal/storage"
	"github.com/annel0/battlescape/internal/terrain"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env не обязателен
	_ = godotenv.Load()

	configPath := flag.String("config", "", "путь к YAML конфигурации (или BATTLESCAPE_CONFIG)")
	session := flag.String("session", "", "идентификатор сессии боя")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *session != "" {
		cfg.EventBus.Session = *session
	}

	if err := logging.InitDefaultLogger("battlescape", logging.Options{
		Level:  logging.ParseLevel(cfg.Logging.GetLevel()),
		Format: cfg.Logging.GetFormat(),
		Dir:    cfg.Logging.Dir,
	}); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseLogger()
	logging.GetLoggerManager().Configure(logging.Options{
		Level:  logging.ParseLevel(cfg.Logging.GetLevel()),
		Format: cfg.Logging.GetFormat(),
		Dir:    cfg.Logging.Dir,
	})
	defer logging.GetLoggerManager().CloseAll()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.InitTelemetry(ctx, observability.Options{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.Endpoint,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logging.Error("❌ Ошибка инициализации трассировки: %v", err)
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(sctx)
	}()

	if err := run(ctx, cfg); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseLogger()
		os.Exit(1)
	}
	logging.Info("👋 Клиент боя остановлен")
}

func run(ctx context.Context, cfg *config.Config) error {
	bus, err := openBus(cfg)
	if err != nil {
		return err
	}
	defer bus.Close()

	listener, err := eventbus.StartLoggingListener(ctx, bus)
	if err != nil {
		return err
	}
	defer listener.Unsubscribe()

	busMetrics, err := eventbus.NewMetricsExporter(bus, prometheus.DefaultRegisterer, 10*time.Second)
	if err != nil {
		return err
	}
	busMetrics.Start()
	defer busMetrics.Stop()

	store, err := storage.Open(cfg.Storage.GetPath())
	if err != nil {
		return err
	}
	defer store.Close()

	table := terrain.NewTable()
	if cfg.Data.Terrain != "" {
		if table, err = terrain.Load(cfg.Data.Terrain); err != nil {
			return err
		}
	}
	catalog := delta.NewCatalog()
	if cfg.Data.Catalog != "" {
		if catalog, err = delta.LoadCatalog(cfg.Data.Catalog); err != nil {
			return err
		}
	}
	var scenario *delta.Scenario
	if cfg.Data.Scenario != "" {
		if scenario, err = delta.LoadScenario(cfg.Data.Scenario); err != nil {
			return err
		}
		logging.Info("📼 Сценарий %q: %d дельт", scenario.Name, len(scenario.Deltas))
	}

	var sounds effects.Sounds
	if cfg.Audio.Enabled {
		player := audio.NewPlayer(audio.Options{Dir: cfg.Audio.SampleDir})
		if err := player.Start(); err != nil {
			logging.Warn("⚠️ Звук выключен: %v", err)
		} else {
			defer player.Close()
		}
		sounds = player
	}

	client, err := app.New(app.Options{
		Config:     cfg,
		Bus:        bus,
		Store:      store,
		Sounds:     sounds,
		Terrain:    table,
		Catalog:    catalog,
		Scenario:   scenario,
		Registerer: prometheus.DefaultRegisterer,
	})
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Subscribe(ctx); err != nil {
		return err
	}

	if addr := cfg.Debug.GetAddr(); addr != "" {
		srv, err := api.NewDebugServer(api.Config{Addr: addr, Source: client, Store: store})
		if err != nil {
			return err
		}
		go func() {
			if err := srv.Start(); err != nil {
				logging.Error("❌ Отладочный API: %v", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(sctx)
		}()
	}

	logging.Info("🎮 Клиент боя запущен, сессия %q", cfg.EventBus.Session)
	err = client.Run(ctx)
	if app.IsDesync(err) {
		logging.Error("💥 Рассинхронизация с сервером, бой прерван")
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openBus(cfg *config.Config) (eventbus.EventBus, error) {
	url := cfg.EventBus.GetURL()
	if url == "" {
		logging.Info("🚌 Шина событий в памяти")
		return eventbus.NewMemoryBus(cfg.EventBus.GetBuffer()), nil
	}
	logging.Info("🚌 Шина событий NATS JetStream: %s", url)
	bus, err := eventbus.NewJetStreamBus(eventbus.JetStreamOptions{
		URL:       url,
		Stream:    cfg.EventBus.Stream,
		Retention: cfg.EventBus.GetRetention(),
	})
	if err != nil {
		return nil, err
	}
	return bus, nil
}
