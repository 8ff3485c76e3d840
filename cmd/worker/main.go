package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avolkov/orderflow-backend/internal/notifications"
	"github.com/avolkov/orderflow-backend/pkg/config"
	"github.com/avolkov/orderflow-backend/pkg/logger"
	"github.com/avolkov/orderflow-backend/pkg/mailer"
	"github.com/avolkov/orderflow-backend/pkg/metrics"
	"github.com/avolkov/orderflow-backend/pkg/pubsub"
	"github.com/avolkov/orderflow-backend/pkg/reporting"
)

const jobName = "notification_worker"

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	reporter := reporting.New(cfg.Reporting, logg)

	consumer, err := notifications.NewConsumer(notifications.ConsumerParams{
		Sender: mailer.New(cfg.SMTP, logg),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification consumer", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	jobMetrics := metrics.NewJobMetrics(registry)
	go serveMetrics(logg, cfg.App.Port, registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"subscription": cfg.PubSub.NotificationSubscription,
	})
	logg.Info(ctx, "starting notification worker")

	sub := pubsubClient.NotificationSubscription()
	if sub == nil {
		logg.Error(ctx, "notification subscription is not configured", nil)
		os.Exit(1)
	}

	err = sub.Receive(ctx, func(msgCtx context.Context, msg *gcppubsub.Message) {
		started := time.Now()
		eventType := msg.Attributes["event_type"]
		msgCtx = logg.WithFields(msgCtx, map[string]any{
			"event_type": eventType,
			"event_id":   msg.Attributes["event_id"],
		})

		if err := consumer.Handle(msgCtx, eventType, msg.Data); err != nil {
			jobMetrics.IncFailure(jobName)
			logg.Warn(logg.WithField(msgCtx, "error", err.Error()), "notification handling failed, message will be redelivered")
			reporter.Capture(msgCtx, reporting.Report{
				Message: fmt.Sprintf("notification %s failed: %v", eventType, err),
				Context: map[string]string{"event_id": msg.Attributes["event_id"]},
			})
			msg.Nack()
			return
		}

		jobMetrics.IncSuccess(jobName)
		jobMetrics.ObserveDuration(jobName, time.Since(started))
		msg.Ack()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "notification worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "notification worker shutting down gracefully")
}

func serveMetrics(logg *logger.Logger, port string, registry *prometheus.Registry) {
	if fromEnv := os.Getenv("PORT"); fromEnv != "" {
		port = fromEnv
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(fmt.Sprintf(":%s", port), mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Warn(logg.WithField(context.Background(), "error", err.Error()), "metrics endpoint stopped")
	}
}
