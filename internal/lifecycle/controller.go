// Package lifecycle drives one analysis request from submission to a single
// terminal state while reporting simulated progress.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"etf-advisor/internal/catalog"
	"etf-advisor/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTickInterval = 500 * time.Millisecond
	DefaultMaxStep      = 10
	DefaultCeiling      = 90
)

var (
	ErrAlreadyInProgress = errors.New("analysis already in progress")
	// ErrCancelled marks a run abandoned by its consumer. It is the Err of the
	// Failed state and is not meant to be shown as a failure.
	ErrCancelled = errors.New("analysis cancelled")
)

// Analyzer performs the remote analysis call.
type Analyzer interface {
	RunAnalysis(ctx context.Context, req domain.AdvisorRequest) (domain.AdvisorResult, error)
}

// Ticker is the scheduling handle of the progress task.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Controller is safe for concurrent use. Every transition is a compare-and-swap
// on a single state slot, so whichever of tick, resolution or cancellation
// lands first wins and the others become no-ops.
type Controller struct {
	analyzer Analyzer
	tracer   trace.Tracer
	log      zerolog.Logger

	interval       time.Duration
	maxStep        float64
	ceiling        float64
	investmentStep float64
	random         func() float64
	newTicker      func(time.Duration) Ticker
	checkSelection func(catalog.Selection) error

	state   atomic.Pointer[State]
	changes chan struct{}
}

type Option func(*Controller)

func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithMaxStep bounds the random increment applied on each tick.
func WithMaxStep(step float64) Option {
	return func(c *Controller) {
		if step > 0 {
			c.maxStep = step
		}
	}
}

// WithCeiling sets the simulated progress cap; values outside (0, 100) are ignored.
func WithCeiling(ceiling float64) Option {
	return func(c *Controller) {
		if ceiling > 0 && ceiling < 100 {
			c.ceiling = ceiling
		}
	}
}

// WithInvestmentStep sets the step used to re-validate submitted preferences.
func WithInvestmentStep(step float64) Option {
	return func(c *Controller) {
		c.investmentStep = step
	}
}

func WithRandom(random func() float64) Option {
	return func(c *Controller) {
		c.random = random
	}
}

func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(c *Controller) {
		c.newTicker = newTicker
	}
}

// WithSelectionCheck rejects a submission synchronously when check fails,
// typically catalog.Catalog.Validate.
func WithSelectionCheck(check func(catalog.Selection) error) Option {
	return func(c *Controller) {
		c.checkSelection = check
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Controller) {
		c.tracer = tracer
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = log.With().Str("component", "lifecycle").Logger()
	}
}

func New(analyzer Analyzer, opts ...Option) *Controller {
	c := &Controller{
		analyzer:       analyzer,
		tracer:         trace.NewNoopTracerProvider().Tracer("lifecycle"),
		log:            zerolog.Nop(),
		interval:       DefaultTickInterval,
		maxStep:        DefaultMaxStep,
		ceiling:        DefaultCeiling,
		investmentStep: domain.DefaultInvestmentStep,
		random:         rand.Float64,
		newTicker:      newTimeTicker,
		changes:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.Store(&State{Phase: PhaseIdle})
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	return *c.state.Load()
}

// Changes receives a signal after state changes; read State for the value.
// Signals coalesce, so a slow reader only sees the latest state.
func (c *Controller) Changes() <-chan struct{} {
	return c.changes
}

// Submit validates pref and sel, then starts the analysis. Invalid input is
// returned without any transition. A controller that is Submitted or
// InProgress returns ErrAlreadyInProgress; a terminal one starts over.
func (c *Controller) Submit(ctx context.Context, pref domain.PortfolioPreference, sel catalog.Selection) error {
	if err := pref.Validate(c.investmentStep); err != nil {
		return err
	}
	if c.checkSelection != nil {
		if err := c.checkSelection(sel); err != nil {
			return err
		}
	}

	cur := c.state.Load()
	if !cur.acceptsSubmit() {
		return ErrAlreadyInProgress
	}

	r := c.newRun(ctx)
	submitted := &State{Phase: PhaseSubmitted, RunID: r.id, run: r}
	if !c.state.CompareAndSwap(cur, submitted) {
		r.release()
		return ErrAlreadyInProgress
	}
	c.notify()
	r.span.SetAttributes(
		attribute.String("lifecycle.goal", string(pref.Goal)),
		attribute.Float64("lifecycle.initial_investment", pref.InitialInvestment),
	)
	c.log.Info().Str("run_id", r.id).Str("goal", string(pref.Goal)).Msg("analysis submitted")

	inProgress := &State{Phase: PhaseInProgress, RunID: r.id, run: r}
	if !c.state.CompareAndSwap(submitted, inProgress) {
		// Cancelled or reset between the two transitions.
		return nil
	}
	c.notify()

	go c.tick(r)
	go c.await(r, sel.Request(pref))
	return nil
}

// Cancel abandons the active run. It reports whether a run was cancelled; a
// late response from the cancelled call is discarded.
func (c *Controller) Cancel() bool {
	cur := c.state.Load()
	if cur.run == nil || cur.Phase.IsTerminal() {
		return false
	}
	return c.finish(cur.run, domain.AdvisorResult{}, ErrCancelled)
}

// Reset cancels any active run and returns the controller to Idle, dropping
// any previous result or error.
func (c *Controller) Reset() {
	for {
		cur := c.state.Load()
		if cur.Phase == PhaseIdle {
			return
		}
		if !cur.Phase.IsTerminal() {
			c.finish(cur.run, domain.AdvisorResult{}, ErrCancelled)
			continue
		}
		if c.state.CompareAndSwap(cur, &State{Phase: PhaseIdle}) {
			c.notify()
			return
		}
	}
}

// Wait blocks until the current run is terminal or ctx is done. An Idle
// controller returns immediately.
func (c *Controller) Wait(ctx context.Context) (State, error) {
	cur := c.state.Load()
	if cur.run == nil {
		return *cur, nil
	}
	select {
	case <-cur.run.done:
		return *cur.run.final.Load(), nil
	case <-ctx.Done():
		return c.State(), ctx.Err()
	}
}

// tick owns the ticker for the lifetime of the run and stops it on every exit.
func (c *Controller) tick(r *run) {
	ticker := c.newTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			// The consumer's context ended before a result arrived. This is a
			// no-op when the run already reached a terminal state.
			if cause := context.Cause(r.ctx); !errors.Is(cause, errRunFinished) {
				c.finish(r, domain.AdvisorResult{}, fmt.Errorf("%w: %v", ErrCancelled, cause))
			}
			return
		case <-ticker.C():
			if !c.advance(r) {
				return
			}
		}
	}
}

// advance applies one progress step. It returns false once the run is no
// longer in progress.
func (c *Controller) advance(r *run) bool {
	for {
		cur := c.state.Load()
		if cur.run != r || cur.Phase != PhaseInProgress {
			return false
		}
		if cur.Progress >= c.ceiling {
			return true
		}
		next := *cur
		next.Progress = min(c.ceiling, cur.Progress+c.random()*c.maxStep)
		if next.Progress < cur.Progress {
			next.Progress = cur.Progress
		}
		if c.state.CompareAndSwap(cur, &next) {
			c.notify()
			c.log.Trace().Str("run_id", r.id).Float64("progress", next.Progress).Msg("progress tick")
			return true
		}
	}
}

func (c *Controller) await(r *run, req domain.AdvisorRequest) {
	result, err := c.analyzer.RunAnalysis(r.ctx, req)
	if err != nil && r.ctx.Err() != nil {
		err = fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	c.finish(r, result, err)
}

// finish performs the single terminal transition of r. It returns false when
// r is no longer current or already terminal.
func (c *Controller) finish(r *run, result domain.AdvisorResult, err error) bool {
	for {
		cur := c.state.Load()
		if cur.run != r || cur.Phase.IsTerminal() {
			c.log.Debug().Str("run_id", r.id).Bool("error", err != nil).Msg("late analysis outcome discarded")
			return false
		}

		next := &State{RunID: r.id, run: r, Progress: cur.Progress}
		if err != nil {
			next.Phase = PhaseFailed
			next.Err = err
		} else {
			next.Phase = PhaseCompleted
			next.Progress = 100
			res := result.Clone()
			next.result = &res
		}
		if !c.state.CompareAndSwap(cur, next) {
			continue
		}

		r.complete(next)
		c.notify()
		switch {
		case err == nil:
			c.log.Info().Str("run_id", r.id).Int("holdings", len(result.Portfolio.Holdings)).Msg("analysis completed")
		case errors.Is(err, ErrCancelled):
			c.log.Info().Str("run_id", r.id).Msg("analysis cancelled")
		default:
			c.log.Warn().Err(err).Str("run_id", r.id).Msg("analysis failed")
		}
		return true
	}
}

func isCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

func (c *Controller) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

var errRunFinished = errors.New("run finished")

// run is the token shared by the tick and resolution tasks of one submission.
type run struct {
	id     string
	ctx    context.Context
	cancel context.CancelCauseFunc
	span   trace.Span
	done   chan struct{}
	final  atomic.Pointer[State]
	once   sync.Once
}

func (c *Controller) newRun(parent context.Context) *run {
	id := uuid.NewString()
	ctx, span := c.tracer.Start(parent, "lifecycle.run", trace.WithAttributes(attribute.String("lifecycle.run_id", id)))
	ctx, cancel := context.WithCancelCause(ctx)
	return &run{
		id:     id,
		ctx:    ctx,
		cancel: cancel,
		span:   span,
		done:   make(chan struct{}),
	}
}

// complete records the terminal state, releases the run context (which stops
// the ticker) and ends the span. It runs at most once.
func (r *run) complete(final *State) {
	r.once.Do(func() {
		r.final.Store(final)
		r.cancel(errRunFinished)
		if final.Err != nil && !errors.Is(final.Err, ErrCancelled) {
			r.span.RecordError(final.Err)
			r.span.SetStatus(codes.Error, "analysis failed")
		}
		r.span.SetAttributes(attribute.String("lifecycle.phase", final.Phase.String()))
		r.span.End()
		close(r.done)
	})
}

// release drops a run that never became current.
func (r *run) release() {
	r.once.Do(func() {
		r.cancel(errRunFinished)
		r.span.End()
		close(r.done)
	})
}
