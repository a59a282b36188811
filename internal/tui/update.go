package tui

import (
	"etf-advisor/internal/advisor"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case catalogMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("model catalog refresh failed")
			msg.models = m.catalog.Models()
			if len(msg.models) == 0 {
				m.errMsg = advisor.UserMessage(msg.err)
			}
		}
		m.form.setModels(msg.models)
		return m, nil

	case stateMsg:
		return m, m.applyState(msg)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch m.screen {
	case screenForm:
		m.form.amount, cmd = m.form.amount.Update(msg)
	case screenResults:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m *AppModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.ForceQuit) {
		if m.ctrl != nil {
			m.ctrl.Cancel()
		}
		return tea.Quit
	}

	switch m.screen {
	case screenProgress:
		switch {
		case key.Matches(msg, keys.Back):
			m.cancel()
		case key.Matches(msg, keys.Quit):
			m.ctrl.Cancel()
			return tea.Quit
		}
		return nil

	case screenResults:
		switch {
		case key.Matches(msg, keys.Back):
			m.discard()
			return nil
		case key.Matches(msg, keys.Retry):
			return m.submit(m.pref, m.sel)
		case key.Matches(msg, keys.Quit):
			return tea.Quit
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	if key.Matches(msg, keys.Submit) {
		pref, ok := m.form.freeze(m.step)
		if !ok {
			m.errMsg = "Please fix the highlighted fields."
			return nil
		}
		return m.submit(pref, m.form.selection)
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return cmd
}
