package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lms-assessment-service/internal/app"
	"lms-assessment-service/internal/config"
	"lms-assessment-service/internal/domain"
	"lms-assessment-service/internal/events"
	"lms-assessment-service/internal/infra/memory"
	"lms-assessment-service/internal/infra/postgres"
	redisinfra "lms-assessment-service/internal/infra/redis"
	"lms-assessment-service/internal/logging"
	"lms-assessment-service/internal/report"
	transport "lms-assessment-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runServer(cmd.Context(), cfg, *port, logger)
		},
	}
}

func runServer(ctx context.Context, cfg config.Config, portFlag string, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	samples, err := sampleContent()
	if err != nil {
		return err
	}
	var (
		loader  memory.AssessmentLoader = samples
		lessons app.LessonRepository    = samples
	)
	if pool != nil {
		content := postgres.NewContentLoader(pool)
		loader, lessons = content, content
	}

	assessmentTTL := config.TTLDuration(cfg.Assessment.TTL, 10*time.Minute)
	var assessments app.AssessmentRepository
	if redisClient != nil {
		assessments = redisinfra.NewAssessmentRepository(redisClient, loader, assessmentTTL)
	} else {
		assessments = memory.NewAssessmentRepository(loader, assessmentTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore(memory.WithIdleTTL(redisTTL))
	}
	if sweeper, ok := store.(sessionSweeper); ok {
		go sweepSessions(ctx, sweeper, time.Minute, logger.Named("sessions"))
	}

	sink, gradebook := submissionSink(pool, redisClient)
	publisher, err := eventPublisher(cfg, logger)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer publisher.Close()
		if sub, ok := publisher.(message.Subscriber); ok {
			// in-process mode: nothing outside this process can read the topic
			if err := events.LogSubmissions(ctx, sub, cfg.EventsTopic(), logger.Named("events")); err != nil {
				return err
			}
		}
		sink = events.NewPublishingSink(sink, publisher, cfg.EventsTopic(), logger.Named("events"))
	}

	service := app.NewAssessmentService(store, assessments,
		app.WithLessons(lessons),
		app.WithSubmissionSink(sink),
		app.WithCaptureMode(domain.CaptureMode{Sequences: cfg.Assessment.CaptureSequences}),
		app.WithLogger(logger.Named("assessment")),
	)

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(service, transport.RouterConfig{
			CORSOrigins: cfg.Server.CORSOrigins,
			Gradebook:   gradebook,
			Logger:      logger.Named("http"),
		}),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting assessment service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server...")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

type sessionSweeper interface {
	Sweep(ctx context.Context) int
}

// sweepSessions drops idle sessions every interval until ctx is done.
func sweepSessions(ctx context.Context, sweeper sessionSweeper, every time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sweeper.Sweep(ctx); removed > 0 {
				logger.Info("expired idle sessions", zap.Int("removed", removed))
			}
		}
	}
}

// submissionSink prefers Postgres, then Redis, then an in-memory log. The
// same store backs the gradebook export.
func submissionSink(pool *pgxpool.Pool, client *redis.Client) (app.SubmissionSink, report.SubmissionLister) {
	switch {
	case pool != nil:
		s := postgres.NewSubmissionStore(pool)
		return s, s
	case client != nil:
		s := redisinfra.NewSubmissionStore(client)
		return s, s
	default:
		s := memory.NewSubmissionLog()
		return s, s
	}
}

func eventPublisher(cfg config.Config, logger *zap.Logger) (message.Publisher, error) {
	wlog := logging.Watermill(logger.Named("watermill"))
	switch cfg.Events.Publisher {
	case config.PublisherKafka:
		return events.NewKafkaPublisher(cfg.Events.KafkaBrokers, wlog)
	case config.PublisherChannel:
		return events.NewChannelPubSub(wlog), nil
	default:
		return nil, nil
	}
}
