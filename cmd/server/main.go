// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/unclebandit/wealthyelephant-backend/internal/app"
	"github.com/unclebandit/wealthyelephant-backend/internal/config"
	"github.com/unclebandit/wealthyelephant-backend/internal/controller"
	"github.com/unclebandit/wealthyelephant-backend/internal/db"
	"github.com/unclebandit/wealthyelephant-backend/internal/handler"
	"github.com/unclebandit/wealthyelephant-backend/internal/jobs"
	"github.com/unclebandit/wealthyelephant-backend/internal/logger"
	"github.com/unclebandit/wealthyelephant-backend/internal/middleware"
	"github.com/unclebandit/wealthyelephant-backend/internal/queue"
	"github.com/unclebandit/wealthyelephant-backend/internal/service"
	"github.com/unclebandit/wealthyelephant-backend/internal/validation"
)

const (
	shutdownTimeout = 15 * time.Second
	limiterSweep    = 10 * time.Minute
)

func main() {
	// Load .env
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)
	if envErr != nil {
		log.Info().Msg("⚠️ No .env file found, relying on OS environment variables")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("❌ Invalid configuration")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("❌ Server stopped with error")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var extra []func(http.Handler) http.Handler
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Env,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Failed to initialize Sentry")
		} else {
			log.Info().Str("environment", cfg.Env).Msg("✅ Sentry initialized")
			defer sentry.Flush(2 * time.Second)
			extra = append(extra, sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
		}
	}

	infra, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	if err := db.ApplySchema(ctx, infra.DB); err != nil {
		return err
	}

	// Queue: RabbitMQ when configured (cmd/worker consumes it), otherwise in process.
	var q queue.Queue
	guard := infra.Guard()
	sender := infra.Sender()
	if cfg.AMQPURL != "" {
		amqpQueue, err := queue.NewAMQPQueue(cfg.AMQPURL, log)
		if err != nil {
			return err
		}
		defer amqpQueue.Close()
		q = amqpQueue
	} else {
		memQueue := queue.NewInMemoryQueue(log)
		defer memQueue.Wait()
		q = memQueue

		sub := queue.NewCampaignSendSubscriber(q, guard, infra.Campaigns, sender, infra.Events, log)
		if err := sub.Start(ctx); err != nil {
			return err
		}
		go app.LogReports(ctx, sub, log)
	}

	v := validation.New()
	notifier := infra.Notifier()

	authService := &service.AuthService{
		Users:     infra.Users,
		Validator: v,
		Secret:    cfg.JWTSecret,
		Expiry:    cfg.JWTExpiry,
		Metrics:   infra.Metrics,
		Log:       log,
	}
	defer authService.Wait()

	submissionService := &service.SubmissionService{
		Repo:        infra.Submissions,
		Validator:   v,
		Notifier:    notifier,
		Events:      infra.Events,
		Metrics:     infra.Metrics,
		PhoneRegion: cfg.DefaultPhoneRegion,
		Log:         log,
	}
	newsletterService := &service.NewsletterService{
		Subscribers: infra.Subscribers,
		Campaigns:   infra.Campaigns,
		Validator:   v,
		Notifier:    notifier,
		Events:      infra.Events,
		Metrics:     infra.Metrics,
		Log:         log,
	}
	campaignService := &service.CampaignService{
		CampaignRepo: infra.Campaigns,
		Dispatcher: &queue.CampaignDispatcher{
			Queue:     q,
			Guard:     guard,
			Campaigns: infra.Campaigns,
			Log:       log,
		},
		InFlight:  guard,
		Tester:    sender,
		Validator: v,
		Log:       log,
	}
	statsService := &service.StatsService{
		Submissions: infra.Submissions,
		Subscribers: infra.Subscribers,
	}

	scheduler := jobs.NewScheduler(campaignService, log)
	if err := scheduler.Setup(cfg.SchedulerSpec); err != nil {
		return err
	}
	scheduler.Start()

	var counter middleware.WindowCounter
	if infra.Redis != nil {
		counter = infra.Redis
	}
	limits := newLimiters(infra.Metrics, counter)
	for _, l := range limits.all() {
		l.StartCleanup(limiterSweep)
		defer l.Stop()
	}

	rs := controller.Responder{Log: log, Redact: cfg.IsProduction()}
	router := newRouter(api{
		Log:      log,
		Metrics:  infra.Metrics,
		Gatherer: infra.Registry,
		Origins:  cfg.AllowedOrigins(),
		Auth:     authService,
		Limits:   limits,
		Extra:    extra,

		AuthCtl:     &controller.AuthController{Service: authService, Responder: rs},
		Submissions: &controller.SubmissionController{Service: submissionService, Responder: rs},
		Newsletter:  &controller.NewsletterController{Service: newsletterService, Responder: rs},
		Campaigns:   &controller.CampaignController{CampaignService: campaignService, Responder: rs},
		Stats:       &controller.StatsController{Service: statsService, Responder: rs},
		Tracking:    &handler.TrackingHandler{Tracker: newsletterService, FrontendURL: cfg.FrontendURL, Responder: rs},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("🚀 Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("✅ Server gracefully stopped")
	return nil
}
