package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"slices"
	"syscall"
	"time"

	"etf-advisor/internal/advisor"
	"etf-advisor/internal/cache"
	"etf-advisor/internal/catalog"
	"etf-advisor/internal/config"
	"etf-advisor/internal/job"
	"etf-advisor/internal/lifecycle"
	"etf-advisor/internal/tui"
	"etf-advisor/pkg/logging"
	"etf-advisor/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	wishlogging "github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gossh "golang.org/x/crypto/ssh"
)

// ctxKey is a typed context key to avoid collisions.
type ctxKey string

const sshFingerprintKey ctxKey = "ssh_fingerprint"

var (
	loadEnvFunc        = godotenv.Load
	loadConfigFunc     = config.Load
	connectRedisFunc   = cache.Connect
	initTracerFunc     = tracing.InitTracer
	startRefresherFunc = func(r *job.CatalogRefresher, ctx context.Context) { go r.Start(ctx) }
	newWishServerFunc  = wish.NewServer
	setupSignalNotify  = ossignal.Notify
	waitForSignalFunc  = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: true})
	for _, w := range cfg.Warnings {
		logger.Warn().Msg(w)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		ServiceName: "etf-advisor-ssh",
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
		defer rdb.Close()
		catOpts = append(catOpts, catalog.WithRedis(rdb, time.Duration(cfg.CatalogCacheTTLSec)*time.Second))
	}
	// One catalog serves every session.
	cat := catalog.New(client, tracer, catOpts...)
	startRefresherFunc(job.NewCatalogRefresher(tracer, logger, cat, cfg.CatalogRefreshSecs), ctx)

	ctrlOpts := []lifecycle.Option{
		lifecycle.WithTickInterval(time.Duration(cfg.TickMillis) * time.Millisecond),
		lifecycle.WithMaxStep(cfg.TickMaxStep),
		lifecycle.WithTracer(tracer),
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)
	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(authorizeKey(cfg.SSHAllowedKeys, logger)),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				fingerprint, _ := s.Context().Value(sshFingerprintKey).(string)
				sessionLog := logger.With().Str("user", s.User()).Str("fingerprint", fingerprint).Logger()

				model := tui.NewAppModel(client, cat,
					tui.WithContext(s.Context()),
					tui.WithLogger(sessionLog),
					tui.WithInvestmentStep(cfg.InvestmentStep),
					tui.WithControllerOptions(ctrlOpts...),
				)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			wishlogging.Middleware(),
		),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create SSH server")
	}

	if srv != nil {
		go func() {
			logger.Info().Str("addr", addr).Msg("SSH server listening")
			if err := srv.ListenAndServe(); err != nil {
				logger.Info().Err(err).Msg("SSH server stopped")
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info().Msg("shutting down SSH server")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("SSH server shutdown error")
		}
	}

	logger.Info().Msg("SSH server exited")
}

// authorizeKey admits keys whose SHA256 fingerprint is in allowed, or every
// key when allowed is empty. The fingerprint is kept on the session context.
func authorizeKey(allowed []string, log zerolog.Logger) func(ctx ssh.Context, key ssh.PublicKey) bool {
	return func(ctx ssh.Context, key ssh.PublicKey) bool {
		fingerprint := gossh.FingerprintSHA256(key)
		if len(allowed) > 0 && !slices.Contains(allowed, fingerprint) {
			log.Warn().Str("fingerprint", fingerprint).Str("user", ctx.User()).Msg("SSH auth denied")
			return false
		}
		ctx.SetValue(sshFingerprintKey, fingerprint)
		log.Info().Str("fingerprint", fingerprint).Str("user", ctx.User()).Msg("SSH auth accepted")
		return true
	}
}
