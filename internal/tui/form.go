package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"etf-advisor/internal/catalog"
	"etf-advisor/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type field int

const (
	fieldGoal field = iota
	fieldRisk
	fieldHorizon
	fieldCurrency
	fieldExchange
	fieldAmount
	fieldInvestmentModel
	fieldPortfolioModel
	fieldAnalystModel
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Investment goal",
	"Risk profile",
	"Investment horizon",
	"Currency",
	"Stock exchange",
	"Initial investment",
	"Strategy model",
	"Portfolio model",
	"Analyst model",
}

// Wire names used by domain.ValidationError.
var fieldNames = [fieldCount]string{
	"goal",
	"risk_profile",
	"investment_horizon",
	"currency",
	"stock_exchange",
	"initial_investment",
	string(catalog.RoleInvestment),
	string(catalog.RolePortfolio),
	string(catalog.RoleAnalyst),
}

func (f field) role() (catalog.Role, bool) {
	switch f {
	case fieldInvestmentModel:
		return catalog.RoleInvestment, true
	case fieldPortfolioModel:
		return catalog.RolePortfolio, true
	case fieldAnalystModel:
		return catalog.RoleAnalyst, true
	}
	return "", false
}

type form struct {
	draft     domain.PreferenceDraft
	amount    textinput.Model
	models    []domain.LLMModel
	selection catalog.Selection
	focus     field
	errs      map[string]string
}

func newForm(draft domain.PreferenceDraft) form {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = strconv.Itoa(domain.DefaultInvestment)
	ti.CharLimit = 15
	ti.Width = 16
	if draft.InitialInvestment > 0 {
		ti.SetValue(strconv.FormatFloat(draft.InitialInvestment, 'f', -1, 64))
	}
	return form{draft: draft, amount: ti}
}

// setModels replaces the catalog and repoints any role whose model vanished
// to the first available one.
func (f *form) setModels(models []domain.LLMModel) {
	f.models = models
	for _, role := range catalog.Roles() {
		id := f.selection.Get(role)
		if id != "" && f.hasModel(id) {
			continue
		}
		if len(models) > 0 {
			f.selection.Set(role, models[0].ID())
		} else {
			f.selection.Set(role, "")
		}
	}
}

func (f form) hasModel(id string) bool {
	for _, m := range f.models {
		if m.ID() == id {
			return true
		}
	}
	return false
}

func (f form) modelName(id string) string {
	for _, m := range f.models {
		if m.ID() == id {
			return m.DisplayName
		}
	}
	return ""
}

func (f form) update(msg tea.KeyMsg) (form, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		return f.moveFocus(-1)
	case key.Matches(msg, keys.Down):
		return f.moveFocus(1)
	case key.Matches(msg, keys.Left) && f.focus != fieldAmount:
		f.shift(-1)
		return f, nil
	case key.Matches(msg, keys.Right) && f.focus != fieldAmount:
		f.shift(1)
		return f, nil
	}
	if f.focus != fieldAmount {
		return f, nil
	}
	if msg.Type == tea.KeyRunes && !amountRunes(msg.Runes) {
		return f, nil
	}
	var cmd tea.Cmd
	f.amount, cmd = f.amount.Update(msg)
	delete(f.errs, fieldNames[fieldAmount])
	return f, cmd
}

func amountRunes(rs []rune) bool {
	for _, r := range rs {
		if (r < '0' || r > '9') && r != ',' && r != '.' {
			return false
		}
	}
	return true
}

func (f form) moveFocus(delta int) (form, tea.Cmd) {
	f.focus = field((int(f.focus) + delta + int(fieldCount)) % int(fieldCount))
	if f.focus == fieldAmount {
		return f, f.amount.Focus()
	}
	f.amount.Blur()
	return f, nil
}

// shift cycles the focused select field. Unset fields start from either end.
func (f *form) shift(delta int) {
	switch f.focus {
	case fieldGoal:
		f.draft.Goal = cycle(domain.AllInvestmentGoals(), f.draft.Goal, delta)
	case fieldRisk:
		f.draft.RiskProfile = cycle(domain.AllRiskProfiles(), f.draft.RiskProfile, delta)
	case fieldHorizon:
		f.draft.InvestmentHorizon = cycle(domain.AllInvestmentHorizons(), f.draft.InvestmentHorizon, delta)
	case fieldCurrency:
		f.draft.Currency = cycle(domain.AllCurrencies(), f.draft.Currency, delta)
	case fieldExchange:
		f.draft.StockExchange = cycle(domain.AllStockExchanges(), f.draft.StockExchange, delta)
	default:
		role, ok := f.focus.role()
		if !ok || len(f.models) == 0 {
			return
		}
		ids := make([]string, len(f.models))
		for i, m := range f.models {
			ids[i] = m.ID()
		}
		f.selection.Set(role, cycle(ids, f.selection.Get(role), delta))
	}
	delete(f.errs, fieldNames[f.focus])
}

func cycle[T comparable](values []T, current T, delta int) T {
	n := len(values)
	if n == 0 {
		return current
	}
	for i, v := range values {
		if v == current {
			return values[((i+delta)%n+n)%n]
		}
	}
	if delta < 0 {
		return values[n-1]
	}
	return values[0]
}

var errAmountNotNumber = errors.New("must be a number")

func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errAmountNotNumber
	}
	return v, nil
}

// freeze validates the form and records the rejected fields for display.
func (f *form) freeze(step float64) (domain.PortfolioPreference, bool) {
	f.errs = map[string]string{}
	draft := f.draft
	amount, parseErr := parseAmount(f.amount.Value())
	draft.InitialInvestment = amount

	pref, err := draft.Freeze(step)
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		for _, fe := range verr.Fields {
			f.errs[fe.Field] = fe.Reason
		}
	}
	if parseErr != nil {
		f.errs[fieldNames[fieldAmount]] = parseErr.Error()
	}
	for _, role := range catalog.Roles() {
		if f.selection.Get(role) == "" {
			f.errs[string(role)] = "no model available"
		}
	}
	if len(f.errs) > 0 {
		return domain.PortfolioPreference{}, false
	}
	f.draft = draft
	return pref, true
}

func (f form) value(fl field) string {
	switch fl {
	case fieldGoal:
		return string(f.draft.Goal)
	case fieldRisk:
		return string(f.draft.RiskProfile)
	case fieldHorizon:
		return string(f.draft.InvestmentHorizon)
	case fieldCurrency:
		return string(f.draft.Currency)
	case fieldExchange:
		return string(f.draft.StockExchange)
	case fieldAmount:
		return f.draft.Currency.Symbol() + f.amount.View()
	}
	role, _ := fl.role()
	id := f.selection.Get(role)
	if name := f.modelName(id); name != "" {
		return name
	}
	return id
}

func (f form) view() string {
	var sb strings.Builder
	for fl := field(0); fl < fieldCount; fl++ {
		cursor := "  "
		if fl == f.focus {
			cursor = focusStyle.Render("› ")
		}
		value := f.value(fl)
		switch {
		case value == "":
			value = unsetStyle.Render("not selected")
		case fl == fieldAmount:
			// styled by the text input
		case fl == f.focus:
			value = focusStyle.Render("‹ " + value + " ›")
		default:
			value = valueStyle.Render(value)
		}
		line := cursor + labelStyle.Render(fieldLabels[fl]) + value
		if reason, ok := f.errs[fieldNames[fl]]; ok {
			line += "  " + errorStyle.Render(reason)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func (f form) hint(step float64) string {
	return fmt.Sprintf("Minimum %s%d, in multiples of %s%.0f.",
		f.draft.Currency.Symbol(), domain.MinimumInvestment, f.draft.Currency.Symbol(), step)
}
