package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/alarm"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/alexa"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/catalog"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/config"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/dispatch"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/handler"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/media"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/metrics"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/telemetry"
)

// recorder is what the engine reports to and the handler flushes.
type recorder interface {
	alarm.Recorder
	handler.Flusher
}

func main() {
	startTime := time.Now()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	logger.Info("starting zoneminder alarm skill")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("cannot load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Error("cannot load aws config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	if err := cfg.ResolveSecrets(ctx, ssm.NewFromConfig(awsCfg)); err != nil {
		logger.Error("cannot resolve secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("cannot load catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var rec recorder = metrics.Nop{}
	if cfg.MetricsNamespace != "" {
		rec = metrics.NewRecorder(cloudwatch.NewFromConfig(awsCfg), cfg.MetricsNamespace, logger)
	}

	engine := alarm.NewEngine(
		dynamodb.NewFromConfig(awsCfg),
		alarm.EngineConfig{
			Table:            cfg.TableName,
			PageLimit:        cfg.PageLimit,
			RoundTripTimeout: cfg.QueryTimeout,
			Concurrency:      cfg.QueryConcurrency,
		},
		rec,
		logger,
	)

	sender, err := dispatch.NewSender(awsCfg, cfg)
	if err != nil {
		logger.Error("cannot create sender", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tp, err := telemetry.NewTracerProvider(ctx)
	if err != nil {
		logger.Error("cannot initialize tracer provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("cannot shutdown tracer provider", slog.String("error", err.Error()))
		}
	}()

	logger.Info(
		"started zoneminder alarm skill",
		slog.String("table", cfg.TableName),
		slog.String("clipTarget", string(cfg.ClipTarget)),
		slog.Int("cameras", len(cat.Cameras)),
		slog.Bool("localImages", cfg.UseLocalPath),
		slog.String("region", cfg.AWSRegion),
		slog.Float64("initDurationSec", time.Since(startTime).Seconds()),
	)

	h := handler.NewEventHandler(handler.Options{
		Alarms:       engine,
		Catalog:      cat,
		Locator:      newLocator(awsCfg, cfg),
		Sender:       sender,
		Progress:     alexa.NewProgressiveClient(alexa.DefaultProgressiveTimeout),
		Metrics:      rec,
		ClipVideoURI: cfg.ClipVideoURI,
		Location:     cfg.DisplayLocation,
	}, logger)

	lambda.Start(
		otellambda.InstrumentHandler(
			h.HandleRequest,
			otellambda.WithTracerProvider(tp),
			otellambda.WithFlusher(tp)),
	)
}

func newLocator(awsCfg aws.Config, cfg *config.Config) media.Locator {
	if cfg.UseLocalPath {
		return media.NewLocalLocator(cfg.LocalPathBase)
	}

	presigner := s3.NewPresignClient(s3.NewFromConfig(awsCfg))
	return media.NewS3Locator(presigner, cfg.S3Bucket, media.DefaultExpiry)
}
