// internal/app/app.go
package app

import (
	"context"
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/unclebandit/wealthyelephant-backend/internal/cache"
	"github.com/unclebandit/wealthyelephant-backend/internal/config"
	"github.com/unclebandit/wealthyelephant-backend/internal/db"
	"github.com/unclebandit/wealthyelephant-backend/internal/events"
	"github.com/unclebandit/wealthyelephant-backend/internal/metrics"
	"github.com/unclebandit/wealthyelephant-backend/internal/notify"
	"github.com/unclebandit/wealthyelephant-backend/internal/queue"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
	"github.com/unclebandit/wealthyelephant-backend/internal/service"
)

// Infra is the plumbing shared by the API and worker binaries.
type Infra struct {
	Config   config.Config
	Log      zerolog.Logger
	DB       *sql.DB
	Redis    *cache.Client
	Events   events.Publisher
	Mailer   notify.Mailer
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Campaigns   *repository.CampaignRepository
	Subscribers *repository.SubscriberRepository
	Submissions *repository.SubmissionRepository
	Users       *repository.AdminUserRepository
}

// Open connects to Postgres and, when configured, Redis. Kafka and SendGrid
// fall back to log-only implementations when their settings are empty.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Infra, error) {
	conn, err := db.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}

	in := &Infra{
		Config:   cfg,
		Log:      log,
		DB:       conn,
		Registry: prometheus.NewRegistry(),

		Campaigns:   &repository.CampaignRepository{DB: conn},
		Subscribers: &repository.SubscriberRepository{DB: conn},
		Submissions: &repository.SubmissionRepository{DB: conn},
		Users:       &repository.AdminUserRepository{DB: conn},
	}
	in.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	in.Metrics = metrics.New(in.Registry)

	if cfg.RedisURL != "" {
		in.Redis, err = cache.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			conn.Close()
			return nil, err
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		in.Events = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("✅ Kafka publisher ready")
	} else {
		in.Events = events.LogPublisher{Log: log}
	}

	if cfg.SendGridAPIKey != "" {
		in.Mailer = notify.NewSendGridMailer(cfg.SendGridAPIKey, log)
	} else {
		log.Warn().Msg("⚠️ SENDGRID_API_KEY not set, emails will be logged only")
		in.Mailer = notify.ConsoleMailer{Log: log}
	}

	return in, nil
}

// Notifier sends the transactional emails that follow form submissions.
func (in *Infra) Notifier() *notify.Dispatcher {
	return notify.NewDispatcher(in.Mailer, in.Config.MailFromAddress, in.Config.AdminEmail,
		in.Config.EmailTimeout, in.Metrics, in.Log)
}

// Sender delivers campaigns in chunks.
func (in *Infra) Sender() *service.BatchSender {
	return &service.BatchSender{
		Campaigns:   in.Campaigns,
		Subscribers: in.Subscribers,
		Mailer:      in.Mailer,
		Renderer: service.CampaignRenderer{
			FrontendURL: in.Config.FrontendURL,
			APIBaseURL:  in.Config.APIBaseURL,
		},
		FromAddress: in.Config.MailFromAddress,
		ChunkSize:   in.Config.CampaignChunkSize,
		ChunkDelay:  in.Config.CampaignChunkDelay,
		SendTimeout: in.Config.EmailTimeout,
		Throttle:    sendThrottle(in.Config.CampaignSendRate),
		Metrics:     in.Metrics,
		Log:         in.Log,
	}
}

// sendThrottle allows perSecond emails a second. Zero or less disables it.
func sendThrottle(perSecond int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), perSecond)
}

// Guard is Redis backed when Redis is configured, process local otherwise.
func (in *Infra) Guard() queue.InFlightGuard {
	if in.Redis != nil {
		return queue.NewRedisGuard(in.Redis, queue.DefaultGuardTTL)
	}
	return queue.NewMemoryGuard()
}

// LogReports drains the subscriber's reports until ctx ends.
func LogReports(ctx context.Context, sub *queue.CampaignSendSubscriber, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-sub.Results():
			log.Info().
				Str("campaign_id", r.CampaignID).
				Str("status", r.Status).
				Int("sent", r.SuccessCount).
				Int("failed", r.FailCount).
				Dur("took", r.FinishedAt.Sub(r.StartedAt)).
				Msg("📊 Campaign send finished")
		}
	}
}

func (in *Infra) Close() {
	if err := in.Events.Close(); err != nil {
		in.Log.Error().Err(err).Msg("❌ Failed to close event publisher")
	}
	if in.Redis != nil {
		if err := in.Redis.Close(); err != nil {
			in.Log.Error().Err(err).Msg("❌ Failed to close redis")
		}
	}
	if err := in.DB.Close(); err != nil {
		in.Log.Error().Err(err).Msg("❌ Failed to close database")
	}
}
