package main

import (
	"context"
	"fmt"
	"os"
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
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const bootstrapTimeout = 5 * time.Second

var (
	loadEnvFunc        = godotenv.Load
	loadConfigFunc     = config.Load
	openLogFileFunc    = logging.OpenFile
	connectRedisFunc   = cache.Connect
	initTracerFunc     = tracing.InitTracer
	bootstrapFunc      = bootstrap
	startRefresherFunc = func(r *job.CatalogRefresher, ctx context.Context) { go r.Start(ctx) }
	exitFunc           = os.Exit

	runProgramFunc = func(m tea.Model, opts ...tea.ProgramOption) error {
		_, err := tea.NewProgram(m, opts...).Run()
		return err
	}
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	logFile, err := openLogFileFunc(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		exitFunc(1)
		return
	}
	defer logFile.Close()
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: true, Out: logFile})
	for _, w := range cfg.Warnings {
		logger.Warn().Msg(w)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		ServiceName: "etf-advisor",
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialize tracer: %v\n", err)
		exitFunc(1)
		return
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
	cat := catalog.New(client, tracer, catOpts...)

	notice := bootstrapFunc(ctx, client, cat, logger)
	startRefresherFunc(job.NewCatalogRefresher(tracer, logger, cat, cfg.CatalogRefreshSecs), ctx)

	model := tui.NewAppModel(client, cat,
		tui.WithContext(ctx),
		tui.WithLogger(logger),
		tui.WithInvestmentStep(cfg.InvestmentStep),
		tui.WithNotice(notice),
		tui.WithControllerOptions(
			lifecycle.WithTickInterval(time.Duration(cfg.TickMillis)*time.Millisecond),
			lifecycle.WithMaxStep(cfg.TickMaxStep),
			lifecycle.WithTracer(tracer),
		),
	)
	if err := runProgramFunc(model, tea.WithAltScreen()); err != nil {
		logger.Error().Err(err).Msg("terminal program failed")
		fmt.Fprintf(os.Stderr, "advisor: %v\n", err)
		exitFunc(1)
	}
}

type healthChecker interface {
	CheckHealth(ctx context.Context) (advisor.Health, error)
}

type catalogWarmer interface {
	Warm(ctx context.Context) error
}

// bootstrap checks the service and seeds the catalog from the mirror
// concurrently. It returns a notice for the form, or "" when all is well.
func bootstrap(ctx context.Context, api healthChecker, cat catalogWarmer, log zerolog.Logger) string {
	ctx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()

	var health advisor.Health
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := cat.Warm(gctx); err != nil {
			log.Warn().Err(err).Msg("catalog warm failed")
		}
		return nil
	})
	g.Go(func() error {
		h, err := api.CheckHealth(gctx)
		if err != nil {
			return err
		}
		health = h
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("advisor health check failed")
		return advisor.UserMessage(err)
	}
	if health.Status != "" && health.Status != "healthy" {
		return "Advisor status: " + health.Status
	}
	return ""
}
