package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"etf-advisor/internal/advisor"
	"etf-advisor/internal/bot"
	"etf-advisor/internal/cache"
	"etf-advisor/internal/catalog"
	"etf-advisor/internal/config"
	"etf-advisor/internal/handler"
	"etf-advisor/internal/job"
	"etf-advisor/internal/lifecycle"
	"etf-advisor/internal/recommender"
	"etf-advisor/pkg/logging"
	"etf-advisor/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"

	_ "etf-advisor/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	connectRedisFunc       = cache.Connect
	initTracerFunc         = tracing.InitTracer
	newOpenAIClientFunc    = recommender.NewOpenAIClient
	startRefresherFunc     = func(r *job.CatalogRefresher, ctx context.Context) { go r.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           ETF Advisor API
// @version         1.0
// @description     Reference recommendation service for the ETF advisor clients.

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	logger := logging.New(logging.Config{Level: cfg.LogLevel})
	for _, w := range cfg.Warnings {
		logger.Warn().Msg(w)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		ServiceName: "etf-advisor-server",
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	// Generators per provider; openai only with a key.
	generators := map[string]recommender.Generator{
		recommender.ProviderStatic: recommender.Static{},
	}
	if cfg.OpenAIAPIKey != "" {
		generators[recommender.ProviderOpenAI] = recommender.NewOpenAI(tracer, newOpenAIClientFunc(cfg.OpenAIAPIKey))
		logger.Info().Str("model", cfg.OpenAIModel).Msg("openai generator enabled")
	}
	svc := recommender.NewService(tracer, logger, cfg.ServerModels, generators)

	h := newHandlerFunc(tracer, logger, svc, cfg.InvestmentStep)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("etf-advisor-server"))

	h.RegisterRoutes(r, cfg.ServerAPIKey, handler.RateLimit(cfg.ServerRateLimitPerMin))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: r,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	tb := startBot(ctx, cfg, tracer, logger)

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info().Msg("shutting down server")

	cancel()
	if tb != nil {
		tb.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exiting")
}

// startBot runs the Telegram front end against the advisor API, with its own
// catalog kept fresh by the refresher job.
func startBot(ctx context.Context, cfg *config.Config, tracer trace.Tracer, logger zerolog.Logger) *tele.Bot {
	if cfg.TelegramBotToken == "" {
		return nil
	}

	client := advisor.NewClient(cfg.AdvisorAPIURL, tracer,
		advisor.WithAPIKey(cfg.AdvisorAPIKey),
		advisor.WithTimeout(time.Duration(cfg.HTTPTimeoutSecs)*time.Second),
		advisor.WithLogger(logger),
	)

	catOpts := []catalog.Option{catalog.WithLogger(logger)}
	rdb, err := connectRedisFunc(ctx, cfg.RedisURL, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, catalog mirror disabled")
	} else if rdb != nil {
		context.AfterFunc(ctx, func() { _ = rdb.Close() })
		catOpts = append(catOpts, catalog.WithRedis(rdb, time.Duration(cfg.CatalogCacheTTLSec)*time.Second))
	}
	cat := catalog.New(client, tracer, catOpts...)
	startRefresherFunc(job.NewCatalogRefresher(tracer, logger, cat, cfg.CatalogRefreshSecs), ctx)

	b := bot.New(client, cat, logger, cfg.InvestmentStep,
		lifecycle.WithTickInterval(time.Duration(cfg.TickMillis)*time.Millisecond),
		lifecycle.WithMaxStep(cfg.TickMaxStep),
		lifecycle.WithTracer(tracer),
	)
	tb, err := startTelegramBotFunc(cfg.TelegramBotToken, b, logger)
	if err != nil {
		logger.Error().Err(err).Msg("telegram bot disabled")
		return nil
	}
	return tb
}
