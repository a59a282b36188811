// Package tui is the terminal front end: a preference form, a progress screen
// driven by a lifecycle controller, and the rendered result.
package tui

import (
	"context"
	"errors"
	"fmt"

	"etf-advisor/internal/advisor"
	"etf-advisor/internal/catalog"
	"etf-advisor/internal/domain"
	"etf-advisor/internal/lifecycle"
	"etf-advisor/internal/view"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// ModelCatalog is the slice of catalog.Catalog the form needs.
type ModelCatalog interface {
	Refresh(ctx context.Context) ([]domain.LLMModel, error)
	Models() []domain.LLMModel
	Validate(sel catalog.Selection) error
}

type screen int

const (
	screenForm screen = iota
	screenProgress
	screenResults
)

type AppModel struct {
	ctx      context.Context
	analyzer lifecycle.Analyzer
	catalog  ModelCatalog
	log      zerolog.Logger
	step     float64
	ctrlOpts []lifecycle.Option

	screen screen
	form   form
	ctrl   *lifecycle.Controller
	state  lifecycle.State
	pref   domain.PortfolioPreference
	sel    catalog.Selection
	result *view.Result

	bar      progress.Model
	viewport viewport.Model
	width    int
	height   int
	notice   string
	errMsg   string
}

type Option func(*AppModel)

// WithContext bounds every run started by the model, e.g. to an SSH session.
func WithContext(ctx context.Context) Option {
	return func(m *AppModel) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(m *AppModel) {
		m.log = log.With().Str("component", "tui").Logger()
	}
}

func WithInvestmentStep(step float64) Option {
	return func(m *AppModel) {
		if step > 0 {
			m.step = step
		}
	}
}

// WithControllerOptions is applied to every controller the model creates.
func WithControllerOptions(opts ...lifecycle.Option) Option {
	return func(m *AppModel) {
		m.ctrlOpts = append(m.ctrlOpts, opts...)
	}
}

// WithNotice shows msg above the form until the first submit.
func WithNotice(msg string) Option {
	return func(m *AppModel) {
		m.notice = msg
	}
}

func NewAppModel(analyzer lifecycle.Analyzer, cat ModelCatalog, opts ...Option) *AppModel {
	m := &AppModel{
		ctx:      context.Background(),
		analyzer: analyzer,
		catalog:  cat,
		log:      zerolog.Nop(),
		step:     domain.DefaultInvestmentStep,
		form:     newForm(domain.NewPreferenceDraft()),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		viewport: viewport.New(80, 20),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.form.setModels(cat.Models())
	m.SetSize(80, 24)
	return m
}

// SetSize fits the progress bar and result viewport to the terminal.
func (m *AppModel) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height
	m.bar.Width = max(10, min(width-12, 60))
	m.viewport.Width = width
	m.viewport.Height = max(5, height-6)
	if m.result != nil {
		m.viewport.SetContent(renderResult(*m.result, width))
	}
}

type catalogMsg struct {
	models []domain.LLMModel
	err    error
}

// stateMsg carries a snapshot of ctrl; snapshots of a replaced controller are
// ignored.
type stateMsg struct {
	ctrl  *lifecycle.Controller
	state lifecycle.State
}

func (m *AppModel) Init() tea.Cmd {
	return m.loadCatalog()
}

func (m *AppModel) loadCatalog() tea.Cmd {
	ctx, cat := m.ctx, m.catalog
	return func() tea.Msg {
		models, err := cat.Refresh(ctx)
		return catalogMsg{models: models, err: err}
	}
}

func waitForChange(ctrl *lifecycle.Controller) tea.Cmd {
	return func() tea.Msg {
		<-ctrl.Changes()
		return stateMsg{ctrl: ctrl, state: ctrl.State()}
	}
}

// submit starts pref on a fresh controller.
func (m *AppModel) submit(pref domain.PortfolioPreference, sel catalog.Selection) tea.Cmd {
	opts := append([]lifecycle.Option{
		lifecycle.WithInvestmentStep(m.step),
		lifecycle.WithSelectionCheck(m.catalog.Validate),
		lifecycle.WithLogger(m.log),
	}, m.ctrlOpts...)
	ctrl := lifecycle.New(m.analyzer, opts...)

	if err := ctrl.Submit(m.ctx, pref, sel); err != nil {
		m.screen = screenForm
		m.errMsg = submitMessage(err)
		m.log.Warn().Err(err).Msg("submit rejected")
		return nil
	}
	m.ctrl = ctrl
	m.state = ctrl.State()
	m.pref, m.sel = pref, sel
	m.result = nil
	m.notice, m.errMsg = "", ""
	m.screen = screenProgress
	return waitForChange(ctrl)
}

func submitMessage(err error) string {
	var verr *domain.ValidationError
	var unknown *catalog.UnknownModelError
	switch {
	case errors.As(err, &verr):
		return "Please fix the highlighted fields."
	case errors.As(err, &unknown):
		return fmt.Sprintf("The model for %s is no longer available. Choose another one.", unknown.Role)
	case errors.Is(err, lifecycle.ErrAlreadyInProgress):
		return "An analysis is already running."
	}
	return "Could not start the analysis: " + err.Error()
}

func (m *AppModel) applyState(msg stateMsg) tea.Cmd {
	if msg.ctrl != m.ctrl {
		return nil
	}
	m.state = msg.state
	switch msg.state.Phase {
	case lifecycle.PhaseCompleted:
		result, ok := msg.state.Result()
		if !ok {
			return nil
		}
		r := view.NewResult(result)
		m.result = &r
		m.viewport.SetContent(renderResult(r, m.width))
		m.viewport.GotoTop()
		m.screen = screenResults
		return nil
	case lifecycle.PhaseFailed:
		m.screen = screenForm
		if !msg.state.Cancelled() {
			m.errMsg = advisor.UserMessage(msg.state.Err)
		}
		return nil
	case lifecycle.PhaseIdle:
		return nil
	}
	return waitForChange(m.ctrl)
}

// cancel abandons the running analysis and returns to the form.
func (m *AppModel) cancel() {
	if m.ctrl != nil && m.ctrl.Cancel() {
		m.notice = "Analysis cancelled."
	}
	m.screen = screenForm
}

// discard drops the result and returns to the form with the same draft.
func (m *AppModel) discard() {
	if m.ctrl != nil {
		m.ctrl.Reset()
	}
	m.state = lifecycle.State{}
	m.result = nil
	m.screen = screenForm
}
