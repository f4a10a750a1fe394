package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/repositories/prefillstore"
	prefillsvc "github.com/Ramsey-B/fern/internal/services/prefill"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/datasource"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/graphsource"
	"github.com/Ramsey-B/fern/pkg/health"
	"github.com/Ramsey-B/fern/pkg/httpclient"
	"github.com/Ramsey-B/fern/pkg/kvstore"
	"github.com/Ramsey-B/fern/pkg/prefill"
	"github.com/Ramsey-B/fern/pkg/redis"
	"github.com/Ramsey-B/fern/pkg/routes"
	"github.com/Ramsey-B/fern/pkg/startup"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the prefill HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(func(cfg *config.Config, logger ectologger.Logger) error {
				return serve(cmd.Context(), cfg, logger)
			})
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger ectologger.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName: cfg.AppName,
		Exporter:    cfg.TracingExporter,
		OTLP: exporters.OTLPConfig{
			Endpoint: cfg.TracingOTLPEndpoint,
			Protocol: cfg.TracingOTLPProtocol,
			Insecure: cfg.TracingOTLPInsecure,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	checker := health.NewChecker(version)

	backend, err := newBackend(cfg, logger, boot, checker)
	if err != nil {
		return err
	}

	var storeOpts []prefill.StoreOption
	if cfg.KafkaEnabled {
		publisher, err := events.NewPublisher(events.PublisherConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaMappingsTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeoutMs) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			MaxAttempts:  3,
			WriteTimeout: time.Duration(cfg.KafkaWriteTimeoutMs) * time.Millisecond,
			Compression:  cfg.KafkaCompression,
		}, logger)
		if err != nil {
			return err
		}
		boot.AddDependency(publisher)
		storeOpts = append(storeOpts, prefill.WithChangeNotifier(publisher))
	}

	var providerOpts []datasource.CompositeOption
	if cfg.PrefillPartialResults {
		providerOpts = append(providerOpts, datasource.WithPartialResults())
	}

	service := prefillsvc.NewService(
		logger,
		newGraphSource(cfg, logger),
		datasource.NewDefaultProvider(providerOpts...),
		prefill.NewRegistry(backend, logger, storeOpts...),
	)

	if err := boot.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = boot.Stop(stopCtx)
	}()

	e := routes.NewServer(routes.ServerConfig{
		ServiceName:  cfg.AppName,
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}, logger, service, checker)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           e,
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Infof("%s listening", cfg.AppName)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	checker.SetReady(true)

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	checker.SetReady(false)
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newBackend builds the configured prefill backend and registers what it
// needs with the startup sequence and the health checker.
func newBackend(cfg *config.Config, logger ectologger.Logger, boot *startup.Startup, checker *health.Checker) (prefill.Backend, error) {
	switch cfg.PrefillBackend {
	case config.BackendRedis:
		client := redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		boot.AddDependency(client)
		checker.AddCheck("redis", health.RedisCheck(client.Redis()))
		return kvstore.NewRedis(client.Redis(), cfg.RedisNamespace, cfg.RedisTTL), nil

	case config.BackendPostgres:
		db, err := openDatabase(cfg, logger)
		if err != nil {
			return nil, err
		}
		migrations := newMigrations(cfg, logger)
		boot.AddDependency(database.NewDependency(db, cfg.DatabaseName, migrations))
		checker.AddCheck("database", health.DatabaseCheck(db))
		return prefillstore.NewRepository(db, logger), nil

	default:
		return kvstore.NewMemory(), nil
	}
}

// newGraphSource serves the sample journey unless a blueprint API is
// configured, in which case the sample becomes the fallback.
func newGraphSource(cfg *config.Config, logger ectologger.Logger) graphsource.Source {
	if cfg.GraphAPIBaseURL == "" {
		return graphsource.NewStatic(graphsource.SampleGraph())
	}

	clientConfig := httpclient.DefaultConfig()
	clientConfig.Timeout = time.Duration(cfg.GraphTimeoutSeconds) * time.Second

	return graphsource.NewHTTPSource(
		httpclient.NewClient(clientConfig, logger),
		graphsource.HTTPConfig{
			BaseURL:     cfg.GraphAPIBaseURL,
			TenantID:    cfg.GraphTenantID,
			BlueprintID: cfg.GraphBlueprintID,
		},
		graphsource.SampleGraph(),
		logger,
	)
}
