package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/memohai/vidstream/internal/config"
	"github.com/memohai/vidstream/internal/content"
	"github.com/memohai/vidstream/internal/db"
	"github.com/memohai/vidstream/internal/handlers"
	"github.com/memohai/vidstream/internal/healthcheck"
	dbchecker "github.com/memohai/vidstream/internal/healthcheck/checkers/database"
	telegramchecker "github.com/memohai/vidstream/internal/healthcheck/checkers/telegram"
	"github.com/memohai/vidstream/internal/logger"
	"github.com/memohai/vidstream/internal/relay"
	"github.com/memohai/vidstream/internal/server"
	"github.com/memohai/vidstream/internal/telegram"
	"github.com/memohai/vidstream/internal/upstream"
)

func runServe() error {
	app := fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,
			provideContentStore,
			provideTelegramAPI,
			provideTelegramBot,
			provideLocator,
			provideFetcher,
			provideRelay,
			provideHealth,
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(handlers.NewHealthHandler),
			provideServerHandler(handlers.NewMetricsHandler),
			provideServerHandler(handlers.NewStreamHandler),
			provideServerHandler(handlers.NewInfoHandler),
			provideServerHandler(handlers.NewContentsHandler),
			provideServerHandler(handlers.NewTokenHandler),
			provideServerHandler(handlers.NewTelegramWebhookHandler),
			provideServer,
		),
		fx.Invoke(
			startTelegramBot,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	)
	app.Run()
	return app.Err()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func loadConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, log *slog.Logger, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.Postgres.AutoMigrate {
		if err := db.Migrate(log, cfg.Postgres.DSN(), db.Up); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideContentStore(log *slog.Logger, conn *pgxpool.Pool) *content.Store {
	return content.NewStore(log, conn)
}

// provideTelegramAPI returns nil when the bot is disabled.
func provideTelegramAPI(log *slog.Logger, cfg config.Config) (*tgbotapi.BotAPI, error) {
	if !cfg.Telegram.Enabled {
		log.Info("telegram bot disabled")
		return nil, nil
	}
	return telegram.NewAPI(log, cfg.Telegram)
}

func provideTelegramBot(log *slog.Logger, api *tgbotapi.BotAPI, store *content.Store, cfg config.Config) *telegram.Bot {
	if api == nil {
		return nil
	}
	return telegram.NewBot(log, api, store, cfg.Telegram, cfg.Server)
}

func provideLocator(log *slog.Logger, store *content.Store, api *tgbotapi.BotAPI, cfg config.Config) *content.Locator {
	if api == nil {
		return content.NewLocator(log, store, nil)
	}
	return content.NewLocator(log, store, telegram.NewFileResolver(log, api, cfg.Telegram))
}

func provideFetcher(log *slog.Logger, cfg config.Config) (upstream.Fetcher, error) {
	httpFetcher := upstream.NewHTTPFetcher(log, cfg.Upstream)
	if !cfg.S3.Enabled {
		return upstream.NewRouter(httpFetcher, nil), nil
	}
	s3Fetcher, err := upstream.NewS3Fetcher(context.Background(), log, cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("s3 fetcher: %w", err)
	}
	return upstream.NewRouter(httpFetcher, s3Fetcher), nil
}

func provideRelay(log *slog.Logger, locator *content.Locator, fetcher upstream.Fetcher, cfg config.Config) *relay.Relay {
	return relay.New(log, locator, fetcher, cfg.Relay)
}

func provideHealth(log *slog.Logger, store *content.Store, bot *telegram.Bot) *healthcheck.Aggregator {
	checkers := []healthcheck.Checker{dbchecker.NewChecker(log, store)}
	if bot != nil {
		checkers = append(checkers, telegramchecker.NewChecker(log, bot))
	}
	return healthcheck.NewAggregator(5*time.Second, checkers...)
}

type serverParams struct {
	fx.In
	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.Config.Auth.JWTSecret, params.ServerHandlers...)
}

func startTelegramBot(lc fx.Lifecycle, bot *telegram.Bot) {
	if bot == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return bot.Start(ctx) },
		OnStop:  func(ctx context.Context) error { return bot.Stop(ctx) },
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting vidstream %s\n", versionString())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
