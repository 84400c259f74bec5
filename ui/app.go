package ui

import (
	"strings"

	"github.com/NomadCrew/feedback-client/logger"
	"github.com/NomadCrew/feedback-client/services"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type tab int

const (
	tabForm tab = iota
	tabList
)

func (t tab) String() string {
	if t == tabList {
		return "Recent Feedback"
	}
	return "Submit Feedback"
}

// Rows taken by everything except the list viewport.
const chromeHeight = 12

// Model is the root bubbletea model.
type Model struct {
	keys   keyMap
	styles Styles
	help   help.Model

	active tab
	form   formModel
	list   listModel
	toasts toasts

	initial services.PageRequest

	width  int
	height int
}

// New builds the program model around the two services.
func New(list *services.FeedbackListService, submit *services.SubmissionService) Model {
	keys := defaultKeyMap()
	styles := DefaultStyles()
	m := Model{
		keys:   keys,
		styles: styles,
		help:   help.New(),
		form:   newFormModel(submit, keys, styles),
		list:   newListModel(list, keys, styles),
	}
	m.form.focusCmd()
	m.initial = list.BeginRefresh()
	m.list.sync()
	return m
}

// Init starts the first page load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.list.spinner.Tick,
		textinput.Blink,
		fetchCmd(m.list.svc, m.initial),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.form.setWidth(msg.Width)
		m.list.setSize(msg.Width, msg.Height-chromeHeight)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.SwitchTab):
			return m, m.switchTab()
		}
		return m.updateActive(msg)

	case tea.MouseMsg:
		return m.updateActive(msg)

	case pageLoadedMsg:
		m.list.apply(msg)
		return m, nil

	case submittedMsg:
		n, cmd := m.form.resolve(msg)
		cmds := []tea.Cmd{cmd}
		if n != nil {
			cmds = append(cmds, m.toasts.push(*n))
		}
		if msg.result.Outcome == services.OutcomeSuccess {
			m.list.svc.MarkStale()
			cmds = append(cmds, m.list.refreshIfStale())
		}
		return m, tea.Batch(cmds...)

	case toastExpiredMsg:
		m.toasts.expire(msg.id)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	// Cursor blinks and other component messages belong to the form.
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.active == tabList {
		m.list, cmd = m.list.Update(msg)
	} else {
		m.form, cmd = m.form.Update(msg)
	}
	return m, cmd
}

func (m *Model) switchTab() tea.Cmd {
	if m.active == tabForm {
		m.active = tabList
		logger.GetLogger().Debugw("Switched tab", "tab", m.active.String())
		return m.list.refreshIfStale()
	}
	m.active = tabForm
	logger.GetLogger().Debugw("Switched tab", "tab", m.active.String())
	return m.form.focusCmd()
}

func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Feedback App"))
	b.WriteString("\n")
	b.WriteString(s.Subtitle.Render("Submit your feedback below. We value your thoughts."))
	b.WriteString("\n\n")

	tabs := make([]string, 0, 2)
	for _, t := range []tab{tabForm, tabList} {
		style := s.Tab
		if t == m.active {
			style = s.ActiveTab
		}
		label := t.String()
		if t == tabList {
			label += " (" + pageStatus(m.list.snap) + ")"
		}
		tabs = append(tabs, style.Render(label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	if m.active == tabList {
		b.WriteString(m.list.View())
	} else {
		b.WriteString(m.form.View())
	}
	b.WriteString("\n")

	if m.toasts.len() > 0 {
		b.WriteString("\n")
		b.WriteString(m.toasts.view(s, m.width))
		b.WriteString("\n")
	}

	bindings := m.keys.formHelp()
	if m.active == tabList {
		bindings = m.keys.listHelp()
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}
