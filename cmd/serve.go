package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/englearn/internal/activity"
	"github.com/example/englearn/internal/api"
	"github.com/example/englearn/internal/auth"
	"github.com/example/englearn/internal/bot"
	"github.com/example/englearn/internal/config"
	"github.com/example/englearn/internal/database"
	"github.com/example/englearn/internal/grammar"
	"github.com/example/englearn/internal/scheduler"
	"github.com/example/englearn/internal/scoring"
	"github.com/example/englearn/internal/writing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, score scheduler and optional Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "HTTP port")
	serveCmd.Flags().Bool("content-fallback", false, "serve sample lessons and quizzes when the database is unavailable")
	bindFlagToViper("port", serveCmd.Flags().Lookup("port"))
	bindFlagToViper("content_fallback", serveCmd.Flags().Lookup("content-fallback"))
}

// components wires the stores and services shared by the commands
type components struct {
	db         *database.DB
	users      *database.UserRepository
	content    *database.ContentRepository
	aggregator *scoring.Aggregator
	assessor   *writing.Assessor
	service    *activity.Service
}

func buildComponents(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*components, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	db, err := database.Connect(connectCtx, cfg.DBType, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.WithField("db_type", cfg.DBType).Info("database connected")

	users := database.NewUserRepository(db)
	content := database.NewContentRepository(db)

	checker := grammar.New(cfg.LanguageToolURL, &http.Client{Timeout: cfg.GrammarTimeout + 2*time.Second})
	assessor := writing.NewAssessor(checker, cfg.GrammarTimeout, logger)
	aggregator := scoring.NewAggregator(users, content, logger)
	service := activity.NewService(
		content,
		database.NewActivityRepository(db),
		database.NewWritingRepository(db),
		assessor,
		aggregator,
		logger,
	)

	return &components{
		db:         db,
		users:      users,
		content:    content,
		aggregator: aggregator,
		assessor:   assessor,
		service:    service,
	}, nil
}

func serve(parent context.Context, cfg *config.Config, logger *logrus.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	c, err := buildComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	var tokens api.TokenService
	if cfg.JWTSecret != "" {
		t, err := auth.NewTokens(cfg.JWTSecret, auth.DefaultTTL)
		if err != nil {
			return err
		}
		tokens = t
	} else {
		logger.Warn("JWT_SECRET is not set, all requests are anonymous")
	}

	srv := api.NewServer(cfg.Addr(), api.Options{
		Submissions:     c.service,
		Rankings:        c.aggregator,
		Catalog:         c.content,
		Users:           c.users,
		Tokens:          tokens,
		Health:          c.db,
		LeaderboardSize: cfg.LeaderboardSize,
		ContentFallback: cfg.ContentFallback,
	}, logger)

	sched := scheduler.New(c.aggregator, cfg.RecomputeEvery, logger)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	var tgBot *bot.Bot
	if cfg.TelegramToken != "" {
		botConfig := bot.DefaultConfig()
		botConfig.LeaderboardSize = cfg.LeaderboardSize
		tgBot, err = bot.New(cfg.TelegramToken, c.assessor, c.aggregator, botConfig, logger)
		if err != nil {
			return err
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	if tgBot != nil {
		g.Go(func() error {
			if err := tgBot.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("telegram bot: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		select {
		case sig := <-sigChan:
			logger.WithField("signal", sig.String()).Info("shutting down")
		case <-gctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if tgBot != nil {
			if err := tgBot.Stop(shutdownCtx); err != nil {
				logger.WithError(err).Warn("error during bot shutdown")
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
