package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"etf-advisor/internal/bot"
	"etf-advisor/internal/config"
	"etf-advisor/internal/domain"
	"etf-advisor/internal/handler"
	"etf-advisor/internal/job"
	"etf-advisor/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps(&config.Config{
		ServerPort:     8080,
		InvestmentStep: 100,
		ServerModels:   []domain.LLMModel{{Provider: "static", ModelName: "reference", DisplayName: "Reference portfolio"}},
	})
	defer restore()

	var router *gin.Engine
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine {
		router = gin.New()
		return router
	}
	botStarted := false
	startTelegramBotFunc = func(string, *bot.Bot, zerolog.Logger) (*tele.Bot, error) {
		botStarted = true
		return nil, nil
	}

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
	if botStarted {
		t.Fatal("bot should not start without a token")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/models", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected models route to be mounted, got %d", rec.Code)
	}
}

func TestMainStartsBotWithToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps(&config.Config{
		ServerPort:         8080,
		InvestmentStep:     100,
		TelegramBotToken:   "token",
		AdvisorAPIURL:      "http://127.0.0.1:0/api",
		CatalogRefreshSecs: 60,
		TickMillis:         500,
		TickMaxStep:        10,
	})
	defer restore()

	var gotToken string
	startTelegramBotFunc = func(token string, b *bot.Bot, _ zerolog.Logger) (*tele.Bot, error) {
		if b == nil {
			t.Error("expected a bot")
		}
		gotToken = token
		return nil, nil
	}
	refresherStarted := false
	startRefresherFunc = func(*job.CatalogRefresher, context.Context) { refresherStarted = true }

	main()
	if gotToken != "token" || !refresherStarted {
		t.Fatalf("expected bot and refresher to start, token=%q refresher=%v", gotToken, refresherStarted)
	}
}

func TestRestoreWaitsForListener(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps(&config.Config{ServerPort: 8080, InvestmentStep: 100})

	var called atomic.Bool
	stubbed := startHTTPServerFunc
	startHTTPServerFunc = func(srv *http.Server) error {
		called.Store(true)
		return stubbed(srv)
	}

	main()
	restore()
	if !called.Load() {
		t.Fatal("listener goroutine must run the stub before globals are restored")
	}
}

func stubServerDeps(cfg *config.Config) func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origConnectRedis := connectRedisFunc
	origInitTracer := initTracerFunc
	origStartRefresher := startRefresherFunc
	origStartTelegram := startTelegramBotFunc
	origNewHandler := newHandlerFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config { return cfg }
	connectRedisFunc = func(context.Context, string, zerolog.Logger) (*redis.Client, error) { return nil, nil }
	initTracerFunc = func(context.Context, tracing.Options) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	startRefresherFunc = func(*job.CatalogRefresher, context.Context) {}
	startTelegramBotFunc = func(string, *bot.Bot, zerolog.Logger) (*tele.Bot, error) { return nil, nil }
	newHandlerFunc = handler.New
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	// The listener goroutine reads startHTTPServerFunc; restore waits for it.
	httpStarted := make(chan struct{})
	var startOnce sync.Once
	startHTTPServerFunc = func(*http.Server) error {
		startOnce.Do(func() { close(httpStarted) })
		return http.ErrServerClosed
	}
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		select {
		case <-httpStarted:
		case <-time.After(2 * time.Second):
		}
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		connectRedisFunc = origConnectRedis
		initTracerFunc = origInitTracer
		startRefresherFunc = origStartRefresher
		startTelegramBotFunc = origStartTelegram
		newHandlerFunc = origNewHandler
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}
