// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/unclebandit/outreach-backend/internal/bridge"
	"github.com/unclebandit/outreach-backend/internal/cache"
	"github.com/unclebandit/outreach-backend/internal/config"
	"github.com/unclebandit/outreach-backend/internal/controller"
	"github.com/unclebandit/outreach-backend/internal/db"
	"github.com/unclebandit/outreach-backend/internal/generator"
	"github.com/unclebandit/outreach-backend/internal/handler"
	"github.com/unclebandit/outreach-backend/internal/jobs"
	"github.com/unclebandit/outreach-backend/internal/logger"
	"github.com/unclebandit/outreach-backend/internal/metrics"
	"github.com/unclebandit/outreach-backend/internal/queue"
	"github.com/unclebandit/outreach-backend/internal/repository"
	"github.com/unclebandit/outreach-backend/internal/sequence"
	"github.com/unclebandit/outreach-backend/internal/service"
)

func main() {
	configFile := flag.String("config", "", "optional config file (yaml)")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if err := db.Init(cfg.DSN(), log); err != nil {
		return err
	}
	defer db.DB.Close()
	if err := db.Migrate(db.DB); err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	contactRepo := &repository.ContactRepository{DB: db.DB}
	ccRepo := &repository.CampaignContactRepository{DB: db.DB}
	touchpointRepo := &repository.TouchpointRepository{DB: db.DB}
	responseRepo := &repository.ResponseRepository{DB: db.DB}

	aipm := bridge.NewAipmClient(cfg.AipmURL, cfg.UpstreamTimeout, log)
	leads := bridge.NewChainReactionClient(cfg.ChainReactionURL, cfg.UpstreamTimeout, log)
	var opportunities bridge.OpportunitySource = bridge.NewDemexClient(cfg.DemexURL, cfg.UpstreamTimeout, log)
	if cfg.RedisURL != "" {
		rc, err := cache.NewClient(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, opportunity cache disabled", zap.Error(err))
		} else {
			defer rc.Close()
			opportunities = &bridge.CachedOpportunities{
				Source: opportunities,
				Cache:  rc,
				TTL:    cfg.OpportunityCacheTTL,
				Logger: log,
			}
		}
	}

	q, err := openQueue(cfg, aipm, m, log)
	if err != nil {
		return err
	}
	defer q.Close()

	sequenceService := &service.SequenceService{
		TouchpointRepo: touchpointRepo,
		Schedule:       sequence.Default(),
		Metrics:        m,
		Logger:         log,
	}
	analyticsService := &service.AnalyticsService{
		CampaignRepo:        campaignRepo,
		CampaignContactRepo: ccRepo,
		Logger:              log,
	}
	campaignService := &service.CampaignService{
		CampaignRepo:        campaignRepo,
		ContactRepo:         contactRepo,
		CampaignContactRepo: ccRepo,
		Analytics:           analyticsService,
		LeadFinder:          leads,
		Opportunities:       opportunities,
		Logger:              log,
	}
	funnelService := &service.FunnelService{
		CampaignRepo:        campaignRepo,
		CampaignContactRepo: ccRepo,
		TouchpointRepo:      touchpointRepo,
		ResponseRepo:        responseRepo,
		Sequence:            sequenceService,
		Generator:           newGenerator(cfg, log),
		Limiter:             newLimiter(cfg.GeneratorRPS),
		Queue:               q,
		Metrics:             m,
		Logger:              log,
	}
	contactService := &service.ContactService{
		ContactRepo:         contactRepo,
		CampaignContactRepo: ccRepo,
		ResponseRepo:        responseRepo,
		Logger:              log,
	}

	crons := jobs.NewCronManager(touchpointRepo, m, log)
	if err := crons.SetupJobs(cfg.ReminderCron); err != nil {
		return err
	}
	crons.Start()
	defer crons.Stop()

	router := &handler.Router{
		Campaigns: &controller.CampaignController{
			CampaignService:  campaignService,
			FunnelService:    funnelService,
			SequenceService:  sequenceService,
			AnalyticsService: analyticsService,
			Logger:           log,
		},
		Contacts: &controller.ContactController{ContactService: contactService, Logger: log},
		Analytics: &controller.AnalyticsController{
			AnalyticsService: analyticsService,
			SequenceService:  sequenceService,
			Logger:           log,
		},
		Opportunities: &controller.OpportunityController{CampaignService: campaignService, Logger: log},
		Webhooks: &handler.WebhookHandler{
			CampaignService: campaignService,
			Seeder:          bridge.NewTelegramSeeder(cfg.TelegramBotURL, cfg.UpstreamTimeout),
			Secret:          cfg.AipmWebhookSecret,
			Logger:          log,
		},
		Metrics: m,
		Logger:  log,
	}
	if cfg.AipmWebhookSecret == "" {
		log.Warn("AIPM_WEBHOOK_SECRET not set, AI-PM webhook will reject every call")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openQueue returns the conversion report queue. The in-memory driver
// delivers to the AI-PM bridge in-process; with amqp the worker consumes.
func openQueue(cfg *config.Config, reporter bridge.ProjectReporter, m *metrics.Metrics, log *zap.Logger) (queue.Queue, error) {
	switch cfg.QueueDriver {
	case "amqp":
		q, err := queue.DialAMQP(cfg.AMQPURL, log)
		if err != nil {
			return nil, err
		}
		log.Info("conversion reports go to amqp", zap.String("topic", queue.TopicConversionReports))
		return q, nil
	default:
		q := queue.NewInMemoryQueue(log)
		if err := queue.StartConversionReportSubscriber(q, reporter, m, log, cfg.UpstreamTimeout); err != nil {
			q.Close()
			return nil, err
		}
		return q, nil
	}
}

func newGenerator(cfg *config.Config, log *zap.Logger) generator.Generator {
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set, using template messages")
		return generator.TemplateGenerator{}
	}
	return generator.NewOpenAIGenerator(generator.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
	}, log)
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}
