package ui

import (
	"strings"
	"time"

	"github.com/NomadCrew/feedback-client/services"
	tea "github.com/charmbracelet/bubbletea"
)

type toastExpiredMsg struct{ id int }

type toast struct {
	id int
	services.Notification
}

// toasts is a stack of notifications, each removed when its duration ends.
type toasts struct {
	nextID int
	items  []toast
}

// push adds n and returns the command that expires it.
func (t *toasts) push(n services.Notification) tea.Cmd {
	t.nextID++
	id := t.nextID
	t.items = append(t.items, toast{id: id, Notification: n})
	return tea.Tick(n.Duration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (t *toasts) expire(id int) {
	for i, it := range t.items {
		if it.id == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

func (t *toasts) len() int {
	return len(t.items)
}

func (t *toasts) view(s Styles, width int) string {
	if len(t.items) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(t.items))
	for _, it := range t.items {
		style := s.ToastOK
		if it.Variant == services.VariantError {
			style = s.ToastError
		}
		if width > 4 {
			style = style.Width(width - 2)
		}
		rendered = append(rendered, style.Render(s.Label.Render(it.Title)+"\n"+it.Description))
	}
	return strings.Join(rendered, "\n")
}
