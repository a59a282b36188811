package tui

import (
	"fmt"
	"strings"

	"etf-advisor/internal/view"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const allocationBarWidth = 30

func (m *AppModel) View() string {
	var body string
	switch m.screen {
	case screenProgress:
		body = m.viewProgress()
	case screenResults:
		body = m.viewport.View() + "\n" + help(keys.Back, keys.Retry, keys.Quit)
	default:
		body = m.viewForm()
	}
	return titleStyle.Render("ETF Advisor") + "\n" + m.status() + body
}

func (m *AppModel) status() string {
	var lines []string
	if m.notice != "" {
		lines = append(lines, noticeStyle.Render(m.notice))
	}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	if len(lines) == 0 {
		return "\n"
	}
	return strings.Join(lines, "\n") + "\n\n"
}

func (m *AppModel) viewForm() string {
	return m.form.view() + "\n" +
		pendingStyle.Render(m.form.hint(m.step)) + "\n" +
		help(keys.Up, keys.Down, keys.Right, keys.Submit, keys.ForceQuit)
}

func (m *AppModel) viewProgress() string {
	var sb strings.Builder
	sb.WriteString("Building your portfolio\n\n")
	sb.WriteString(m.bar.ViewAs(m.state.Progress / 100))
	sb.WriteString(fmt.Sprintf(" %3.0f%%\n\n", m.state.Progress))
	for _, s := range view.Stages(m.state.Progress) {
		if s.Done {
			sb.WriteString(doneStyle.Render("✓ "+s.Label) + "\n")
		} else {
			sb.WriteString(pendingStyle.Render("○ "+s.Label) + "\n")
		}
	}
	sb.WriteString(help(keys.Back, keys.Quit))
	return sb.String()
}

func help(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Desc == "" {
			continue
		}
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}

// renderResult lays out a completed analysis for the result viewport.
func renderResult(r view.Result, width int) string {
	textWidth := max(20, width-4)
	wrap := lipgloss.NewStyle().Width(textWidth)

	var sb strings.Builder
	banner := reviewStyle
	if r.Banner.Kind == view.BannerApproved {
		banner = approvedStyle
	}
	sb.WriteString(banner.Render(lipgloss.NewStyle().Bold(true).Render(r.Banner.Title)+"\n"+r.Banner.Message) + "\n")

	sb.WriteString(headingStyle.Render(r.Name) + "\n")
	if r.Strategy.Name != "" {
		sb.WriteString(valueStyle.Render(r.Strategy.Name) + "\n")
	}
	if r.Strategy.Description != "" {
		sb.WriteString(wrap.Render(r.Strategy.Description) + "\n")
	}
	for _, metric := range r.Metrics {
		value := metric.Value
		if value == "" {
			value = "n/a"
		}
		sb.WriteString(labelStyle.Render(metric.Label) + valueStyle.Render(value) + "\n")
	}

	if len(r.Allocation) > 0 {
		sb.WriteString(headingStyle.Render("Asset Allocation") + "\n")
		for _, s := range r.Allocation {
			sb.WriteString(fmt.Sprintf("%s%s %5.1f%%\n", labelStyle.Render(s.Label), allocationBar(s.Value), s.Value))
		}
	}

	if len(r.Holdings) > 0 {
		sb.WriteString(headingStyle.Render("Holdings") + "\n")
		for _, h := range r.Holdings {
			sb.WriteString(fmt.Sprintf("%-6s %-40s %-12s %5.1f%%\n", h.Symbol, truncate(h.Name, 40), h.AssetClass, h.Weight))
		}
	}

	if len(r.Regions) > 0 {
		sb.WriteString(headingStyle.Render("Geographical Diversification") + "\n")
		for _, reg := range r.Regions {
			sb.WriteString(fmt.Sprintf("%s%5.1f%%\n", labelStyle.Render(reg.Region), reg.Weight))
		}
	}
	if len(r.Sectors) > 0 {
		sb.WriteString(headingStyle.Render("Sector Diversification") + "\n")
		for _, sec := range r.Sectors {
			sb.WriteString(fmt.Sprintf("%s%5.1f%%\n", labelStyle.Render(sec.Sector), sec.Weight))
		}
	}

	for _, sec := range r.Sections {
		sb.WriteString(headingStyle.Render(sec.Title) + "\n")
		sb.WriteString(wrap.Render(sec.Body) + "\n")
	}

	for _, w := range r.SumWarnings {
		sb.WriteString("\n" + noticeStyle.Render(fmt.Sprintf("Note: %s weights total %g%%.", view.Label(w.Axis), w.Total)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func allocationBar(pct float64) string {
	filled := int(pct / 100 * allocationBarWidth)
	filled = max(0, min(filled, allocationBarWidth))
	return barStyle.Render(strings.Repeat("█", filled)) + pendingStyle.Render(strings.Repeat("░", allocationBarWidth-filled))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
