package main

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"budgetplanner/internal/amqp"
	"budgetplanner/internal/cli"
	"budgetplanner/internal/config"
	"budgetplanner/internal/log"
	"budgetplanner/internal/mail"
	"budgetplanner/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := log.New(log.DefaultConfig())
	cfg, err := cli.LoadConfig((*config.Config).ValidateNotifier)
	if err != nil {
		cli.Fatal(bootLogger, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting budget-notifier", log.FieldOperation, log.OpStartup, "queue", cfg.AMQPQueue)

	renderer, err := mail.NewRenderer()
	if err != nil {
		cli.Fatal(logger, "Failed to load email templates", err)
	}
	sender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
	})

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	notifications := worker.NewNotificationWorker(renderer, sender, logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.Consume(gctx, notifications.HandleNotification)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		cli.Fatal(logger, "Message consumption failed", err)
	}
	logger.Info("Notifier stopped", log.FieldOperation, log.OpShutdown)
}
