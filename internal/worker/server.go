package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/tasks"
)

// Server is the worker server
type Server struct {
	logger    *zap.Logger
	config    *config.Config
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
}

// Dependencies holds the workers served by the server
type Dependencies struct {
	Email   *EmailWorker
	Export  *ExportWorker
	Expiry  *ExpiryWorker
	Cleanup *CleanupWorker
}

// RedisOpt builds the asynq connection options from config
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewServer creates a new worker server
func NewServer(
	logger *zap.Logger,
	cfg *config.Config,
	deps *Dependencies,
) (*Server, error) {
	redisOpt := RedisOpt(cfg.Redis)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				cfg.Worker.QueueCritical: 6,
				cfg.Worker.QueueDefault:  3,
				cfg.Worker.QueueLow:      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task processing failed",
					zap.String("type", task.Type()),
					zap.Error(err),
				)
			}),
			Logger: &asynqLogger{logger: logger},
		},
	)

	mux := asynq.NewServeMux()
	deps.Email.RegisterHandlers(mux)
	deps.Export.RegisterHandlers(mux)
	deps.Expiry.RegisterHandlers(mux)
	deps.Cleanup.RegisterHandlers(mux)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger: &asynqLogger{logger: logger},
	})

	return &Server{
		logger:    logger,
		config:    cfg,
		server:    server,
		mux:       mux,
		scheduler: scheduler,
	}, nil
}

// Start starts the worker server
func (s *Server) Start() error {
	if err := s.registerScheduledTasks(); err != nil {
		return fmt.Errorf("failed to register scheduled tasks: %w", err)
	}

	go func() {
		if err := s.scheduler.Run(); err != nil {
			s.logger.Error("scheduler stopped", zap.Error(err))
		}
	}()

	s.logger.Info("starting worker server",
		zap.Int("concurrency", s.config.Worker.Concurrency),
	)

	return s.server.Run(s.mux)
}

// Stop stops the worker server
func (s *Server) Stop() {
	s.server.Shutdown()
	s.scheduler.Shutdown()
}

// registerScheduledTasks registers periodic tasks with the scheduler
func (s *Server) registerScheduledTasks() error {
	q := s.config.Worker

	// Catches registrations whose scheduled expiry was lost
	if _, err := s.scheduler.Register(
		"*/10 * * * *",
		asynq.NewTask(tasks.TypeExpireSweep, nil),
		asynq.Queue(q.QueueCritical),
		asynq.Unique(ExpireSweepUniqueTTL),
	); err != nil {
		return fmt.Errorf("failed to register expire sweep task: %w", err)
	}

	if _, err := s.scheduler.Register(
		"15 2 * * *",
		asynq.NewTask(tasks.TypeInvitationCleanup, nil),
		asynq.Queue(q.QueueLow),
	); err != nil {
		return fmt.Errorf("failed to register invitation cleanup task: %w", err)
	}

	// Daily audit retention at 3 AM UTC
	if _, err := s.scheduler.Register(
		"0 3 * * *",
		asynq.NewTask(tasks.TypeAuditCleanup, nil),
		asynq.Queue(q.QueueLow),
	); err != nil {
		return fmt.Errorf("failed to register audit cleanup task: %w", err)
	}

	return nil
}

// asynqLogger adapts zap.Logger to asynq.Logger
type asynqLogger struct {
	logger *zap.Logger
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Fatal(fmt.Sprint(args...))
}
