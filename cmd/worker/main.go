// cmd/worker/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/bridge"
	"github.com/unclebandit/outreach-backend/internal/config"
	"github.com/unclebandit/outreach-backend/internal/logger"
	"github.com/unclebandit/outreach-backend/internal/metrics"
	"github.com/unclebandit/outreach-backend/internal/queue"
)

// The worker drains conversion reports from RabbitMQ and forwards them to
// AI-PM. It is only needed when the server runs with QUEUE_DRIVER=amqp.
func main() {
	configFile := flag.String("config", "", "optional config file (yaml)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	q, err := queue.DialAMQP(cfg.AMQPURL, log)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter := bridge.NewAipmClient(cfg.AipmURL, cfg.UpstreamTimeout, log)
	if err := serve(ctx, q, reporter, metrics.New(), log, cfg.UpstreamTimeout); err != nil {
		log.Fatal("worker stopped", zap.Error(err))
	}
}

// serve consumes conversion reports until ctx is done, then closes q.
func serve(ctx context.Context, q queue.Queue, reporter bridge.ProjectReporter, m *metrics.Metrics, log *zap.Logger, timeout time.Duration) error {
	if err := queue.StartConversionReportSubscriber(q, reporter, m, log, timeout); err != nil {
		q.Close()
		return err
	}
	log.Info("worker running, waiting for conversion reports", zap.String("topic", queue.TopicConversionReports))

	<-ctx.Done()
	log.Info("worker shutting down")
	return q.Close()
}
