// Package app builds the connections, repositories and services shared by
// the API server and the worker.
package app

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/broker"
	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/pkg/database"
	"github.com/eventdesk/eventdesk/api/internal/storage"
)

// ExpiryBrokerRabbitMQ selects RabbitMQ delayed messages for payment-window expiry
const ExpiryBrokerRabbitMQ = "rabbitmq"

// Databases holds all connections
type Databases struct {
	Postgres    *database.PostgresDB
	Reporting   *database.ReportingDB
	Redis       *database.RedisDB
	Storage     *storage.ObjectStore
	AsynqClient *asynq.Client
	Broker      *broker.Client
}

// InitDatabases opens every connection. MinIO is optional; RabbitMQ is
// only dialled when it carries expiry messages.
func InitDatabases(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Databases, error) {
	dbs := &Databases{}

	pgDB, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	dbs.Postgres = pgDB

	reporting, err := database.NewReportingDB(ctx, cfg.Postgres)
	if err != nil {
		dbs.Close()
		return nil, fmt.Errorf("failed to initialize reporting connection: %w", err)
	}
	dbs.Reporting = reporting

	redisDB, err := database.NewRedis(ctx, cfg.Redis)
	if err != nil {
		dbs.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	dbs.Redis = redisDB

	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			logger.Warn("failed to initialize MinIO, exports to object storage will fail", zap.Error(err))
		} else {
			dbs.Storage = store
		}
	}

	if cfg.Worker.ExpiryBroker == ExpiryBrokerRabbitMQ {
		client, err := broker.New(cfg.RabbitMQ, logger)
		if err != nil {
			dbs.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		dbs.Broker = client
	}

	dbs.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return dbs, nil
}

// Close closes all connections
func (d *Databases) Close() {
	if d.AsynqClient != nil {
		_ = d.AsynqClient.Close()
	}
	if d.Broker != nil {
		d.Broker.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.Reporting != nil {
		_ = d.Reporting.Close()
	}
	if d.Postgres != nil {
		d.Postgres.Close()
	}
}
