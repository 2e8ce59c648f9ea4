package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"budgetplanner/internal/amqp"
	"budgetplanner/internal/cli"
	"budgetplanner/internal/config"
	apphttp "budgetplanner/internal/http"
	"budgetplanner/internal/identity"
	"budgetplanner/internal/log"
	"budgetplanner/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()

	bootLogger := log.New(log.DefaultConfig())
	cfg, err := cli.LoadConfig((*config.Config).Validate)
	if err != nil {
		cli.Fatal(bootLogger, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentApp)
	logger.Info("Starting budget-api", log.FieldOperation, log.OpStartup, "port", cfg.Port)

	repo, err := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err)
	}
	defer repo.Close()

	var notifier services.Notifier
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
		defer client.Close()
		notifier = client
		logger.WithComponent(log.ComponentAMQP).Info("Publishing notifications", "exchange", cfg.AMQPExchange)
	} else {
		notifier = services.NewLogNotifier(logger.WithComponent(log.ComponentMail).Slog())
		logger.Warn("AMQP_URL not set, notifications will only be logged")
	}

	issuer, err := identity.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize token issuer", err)
	}
	hasher := identity.NewHasher(bcrypt.DefaultCost)
	links := services.NewLinks(cfg.FrontendURL)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Accounts:     services.NewAccountService(repo, hasher, issuer, notifier, links),
		Budgets:      services.NewBudgetService(repo),
		Invitations:  services.NewInvitationService(repo, notifier, links),
		Categories:   services.NewCategoryService(repo),
		Transactions: services.NewTransactionService(repo),
		History:      services.NewHistoryService(repo),
	}, issuer, repo, apphttp.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		TrustedProxies: cfg.TrustedProxies,
		RateLimit:      cfg.RateLimit,
		Logger:         logger,
	})

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		cli.Fatal(logger, "Server error", err)
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}
