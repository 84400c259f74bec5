package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/NomadCrew/feedback-client/services"
	"github.com/NomadCrew/feedback-client/types"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Focus positions on the form, in tab order.
const (
	focusName = iota
	focusEmail
	focusMessage
	focusSubmit
	focusReset
	focusCount
)

var fieldNames = [...]string{focusName: "name", focusEmail: "email", focusMessage: "message"}

type submittedMsg struct {
	result services.SubmissionResult
	err    error
}

type formModel struct {
	svc    *services.SubmissionService
	keys   keyMap
	styles Styles

	name    textinput.Model
	email   textinput.Model
	message textarea.Model

	focus       int
	touched     map[string]bool
	fieldErrors map[string]string
	submitting  bool
}

func newFormModel(svc *services.SubmissionService, keys keyMap, styles Styles) formModel {
	name := textinput.New()
	name.Placeholder = "John Doe"
	name.Prompt = ""

	email := textinput.New()
	email.Placeholder = "john@example.com"
	email.Prompt = ""

	message := textarea.New()
	message.Placeholder = "Your platform looks great!"
	message.ShowLineNumbers = false
	message.CharLimit = 0
	message.SetHeight(5)

	f := formModel{
		svc:         svc,
		keys:        keys,
		styles:      styles,
		name:        name,
		email:       email,
		message:     message,
		touched:     map[string]bool{},
		fieldErrors: map[string]string{},
	}
	return f
}

func (f *formModel) setWidth(w int) {
	inner := max(w-4, 20)
	f.name.Width = inner
	f.email.Width = inner
	f.message.SetWidth(inner)
}

func (f formModel) request() types.FeedbackRequest {
	return types.FeedbackRequest{
		Name:    f.name.Value(),
		Email:   f.email.Value(),
		Message: f.message.Value(),
	}
}

// focusCmd focuses the current position and blurs the rest.
func (f *formModel) focusCmd() tea.Cmd {
	f.name.Blur()
	f.email.Blur()
	f.message.Blur()

	switch f.focus {
	case focusName:
		return f.name.Focus()
	case focusEmail:
		return f.email.Focus()
	case focusMessage:
		return f.message.Focus()
	}
	return nil
}

func (f *formModel) moveFocus(delta int) tea.Cmd {
	f.blurField(f.focus)
	f.focus = (f.focus + delta + focusCount) % focusCount
	return f.focusCmd()
}

// blurField re-validates a field the user is leaving.
func (f *formModel) blurField(pos int) {
	if pos > focusMessage {
		return
	}
	field := fieldNames[pos]
	f.touched[field] = true
	f.validateTouched()
}

func (f *formModel) validateTouched() {
	errs := map[string]string{}
	for _, fe := range f.svc.Validate(f.request()) {
		errs[fe.Field] = fe.Message
	}
	for field := range f.touched {
		if msg, ok := errs[field]; ok {
			f.fieldErrors[field] = msg
		} else {
			delete(f.fieldErrors, field)
		}
	}
}

func (f *formModel) reset() tea.Cmd {
	f.name.Reset()
	f.email.Reset()
	f.message.Reset()
	f.touched = map[string]bool{}
	f.fieldErrors = map[string]string{}
	f.focus = focusName
	return f.focusCmd()
}

// submit validates locally and, when the input is valid, returns the command
// that sends it.
func (f *formModel) submit() tea.Cmd {
	if f.submitting {
		return nil
	}

	req := f.request()
	fields := f.svc.Validate(req)
	if len(fields) > 0 {
		f.fieldErrors = map[string]string{}
		for _, fe := range fields {
			f.fieldErrors[fe.Field] = fe.Message
		}
		for _, name := range fieldNames {
			f.touched[name] = true
		}
		return nil
	}

	f.fieldErrors = map[string]string{}
	f.submitting = true
	svc := f.svc
	return func() tea.Msg {
		res, err := svc.Submit(context.Background(), req)
		return submittedMsg{result: res, err: err}
	}
}

// resolve applies a finished submission. It returns the notification to show,
// if any.
func (f *formModel) resolve(msg submittedMsg) (*services.Notification, tea.Cmd) {
	if errors.Is(msg.err, services.ErrSubmissionInFlight) {
		return nil, nil
	}
	f.submitting = false

	res := msg.result
	switch res.Outcome {
	case services.OutcomeInvalid:
		for _, fe := range res.FieldErrors {
			f.fieldErrors[fe.Field] = fe.Message
		}
		return nil, nil
	case services.OutcomeSuccess:
		var cmd tea.Cmd
		if res.ClearForm {
			cmd = f.reset()
		}
		return res.Notification, cmd
	}
	return res.Notification, nil
}

func (f formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch {
		case key.Matches(keyMsg, f.keys.Submit):
			return f, f.submit()
		case key.Matches(keyMsg, f.keys.Reset):
			if f.submitting {
				return f, nil
			}
			return f, f.reset()
		case key.Matches(keyMsg, f.keys.Next):
			return f, f.moveFocus(1)
		case key.Matches(keyMsg, f.keys.Prev):
			return f, f.moveFocus(-1)
		}

		if f.submitting {
			return f, nil
		}

		if key.Matches(keyMsg, f.keys.Press) {
			switch f.focus {
			case focusName, focusEmail:
				return f, f.moveFocus(1)
			case focusSubmit:
				return f, f.submit()
			case focusReset:
				return f, f.reset()
			}
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case focusName:
		f.name, cmd = f.name.Update(msg)
	case focusEmail:
		f.email, cmd = f.email.Update(msg)
	case focusMessage:
		f.message, cmd = f.message.Update(msg)
	}
	return f, cmd
}

func (f formModel) View() string {
	s := f.styles
	var b strings.Builder

	field := func(label, name, input string) {
		b.WriteString(s.Label.Render(label))
		b.WriteString("\n")
		if f.submitting {
			input = s.Disabled.Render(input)
		}
		b.WriteString(input)
		b.WriteString("\n")
		if msg, ok := f.fieldErrors[name]; ok {
			b.WriteString(s.FieldError.Render(msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	field("Name", "name", f.name.View())
	field("Email", "email", f.email.View())
	field("Message", "message", f.message.View())

	submitLabel := "Submit"
	if f.submitting {
		submitLabel = "Submitting..."
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		f.button(submitLabel, focusSubmit),
		" ",
		f.button("Reset", focusReset),
	))
	return b.String()
}

func (f formModel) button(label string, pos int) string {
	switch {
	case f.submitting:
		return f.styles.Button.Inherit(f.styles.Disabled).Render(label)
	case f.focus == pos:
		return f.styles.FocusButton.Render(label)
	default:
		return f.styles.Button.Render(label)
	}
}
