package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/NomadCrew/feedback-client/errors"
	"github.com/NomadCrew/feedback-client/services"
	"github.com/NomadCrew/feedback-client/types"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type pageLoadedMsg struct {
	services.PageResult
}

type listModel struct {
	svc    *services.FeedbackListService
	keys   keyMap
	styles Styles

	viewport viewport.Model
	spinner  spinner.Model
	snap     services.ListSnapshot
	width    int
}

func newListModel(svc *services.FeedbackListService, keys keyMap, styles Styles) listModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Primary)

	return listModel{
		svc:      svc,
		keys:     keys,
		styles:   styles,
		viewport: viewport.New(80, 10),
		spinner:  sp,
		snap:     svc.Snapshot(),
		width:    80,
	}
}

func fetchCmd(svc *services.FeedbackListService, req services.PageRequest) tea.Cmd {
	return func() tea.Msg {
		return pageLoadedMsg{svc.Fetch(context.Background(), req)}
	}
}

func (l *listModel) setSize(w, h int) {
	l.width = w
	l.viewport.Width = w
	l.viewport.Height = max(h, 3)
	l.sync()
}

// sync re-reads the list state and re-renders the viewport content.
func (l *listModel) sync() {
	l.snap = l.svc.Snapshot()
	l.viewport.SetContent(l.content())
}

func (l *listModel) refresh() tea.Cmd {
	cmd := fetchCmd(l.svc, l.svc.BeginRefresh())
	l.sync()
	return cmd
}

func (l *listModel) refreshIfStale() tea.Cmd {
	req, ok := l.svc.BeginRefreshIfStale()
	if !ok {
		return nil
	}
	cmd := fetchCmd(l.svc, req)
	l.sync()
	return cmd
}

func (l *listModel) fetchMore() tea.Cmd {
	req, err := l.svc.BeginFetchMore()
	if err != nil {
		return nil
	}
	cmd := fetchCmd(l.svc, req)
	l.sync()
	return cmd
}

func (l *listModel) apply(msg pageLoadedMsg) {
	if !l.svc.Apply(msg.PageResult) {
		return
	}
	l.sync()
}

func (l listModel) Update(msg tea.Msg) (listModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		if l.snap.Loading || l.snap.FetchingMore {
			l.viewport.SetContent(l.content())
		}
		return l, cmd
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, l.keys.Refresh):
			return l, l.refresh()
		case key.Matches(msg, l.keys.More):
			return l, l.fetchMore()
		}
	}

	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	if l.viewport.AtBottom() && l.snap.HasMore && !l.snap.FetchingMore && !l.snap.Loading && l.snap.Err == nil {
		return l, tea.Batch(cmd, l.fetchMore())
	}
	return l, cmd
}

func (l listModel) content() string {
	s := l.styles
	snap := l.snap

	if snap.Loading && len(snap.Items) == 0 {
		return l.spinner.View() + " Loading..."
	}

	var b strings.Builder
	if snap.Err != nil {
		b.WriteString(s.Alert.Render("Failed to load feedbacks: " + errorText(snap.Err)))
		b.WriteString("\n\n")
	}
	if snap.Empty() {
		b.WriteString(s.Footer.Render("No feedback yet."))
		return b.String()
	}

	for i, item := range snap.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(l.renderItem(item))
		b.WriteString("\n")
	}

	switch {
	case snap.FetchingMore:
		b.WriteString("\n" + l.spinner.View() + " Loading more...")
	case snap.HasMore:
		b.WriteString("\n" + s.Footer.Render("Load more (m)"))
	case len(snap.Items) > 0:
		b.WriteString("\n" + s.Footer.Render("End of list"))
	}
	return b.String()
}

func (l listModel) renderItem(item types.FeedbackResponse) string {
	s := l.styles
	header := s.ItemName.Render(item.Name) + " " + s.ItemTime.Render("("+displayTime(item)+")")
	body := s.ItemBody.Width(max(l.width-2, 10)).Render(item.Message)
	return header + "\n" + body
}

func (l listModel) View() string {
	return l.styles.Title.Render("Recent Feedback") + "\n\n" + l.viewport.View()
}

func displayTime(item types.FeedbackResponse) string {
	t, err := item.CreatedTime()
	if err != nil {
		return item.CreatedAt
	}
	return t.Local().Format(time.DateTime)
}

// errorText picks the message shown for a failed request.
func errorText(err error) string {
	if httpErr, ok := apperrors.AsHTTPError(err); ok && httpErr.Message != "" {
		return httpErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Request failed"
}

func pageStatus(snap services.ListSnapshot) string {
	return fmt.Sprintf("%d loaded", len(snap.Items))
}
