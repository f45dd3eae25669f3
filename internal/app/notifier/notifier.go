// Package notifier запускает потребителя очереди приветственных писем.
package notifier

import (
	"context"
	"errors"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gym-portal/internal/config"
	"github.com/magabrotheeeer/gym-portal/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
	"github.com/magabrotheeeer/gym-portal/internal/lib/smtp"
	notifierservice "github.com/magabrotheeeer/gym-portal/internal/services/notifier"
)

// ErrNoBroker возвращается, если адрес RabbitMQ не задан.
var ErrNoBroker = errors.New("rabbitmq url is not configured")

type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	service *notifierservice.Service
	logger  *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.RabbitURL == "" {
		return nil, ErrNoBroker
	}
	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitMaxRetries, cfg.RabbitRetryDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetNotificationQueues(cfg.RabbitRoutingKey)
	ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitExchange, queues)
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:    conn,
		ch:      ch,
		service: notifierservice.New(logger, transport),
		logger:  logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.UserRegisteredQueue, a.service.HandleUserRegistered)
	if err != nil {
		a.logger.Error("failed to start consumer", slog.String("queue", rabbitmq.UserRegisteredQueue), sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}
