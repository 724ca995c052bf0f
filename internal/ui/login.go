package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
	"github.com/foodbridge/foodbridge/internal/thunks"
)

var loginFields = [...]string{"email", "password"}

// loginForm collects credentials and shows the server's field errors under
// the matching input.
type loginForm struct {
	inputs     [len(loginFields)]textinput.Model
	focus      int
	errors     foodbridge.FieldErrors
	message    string
	submitting bool
}

func newLoginForm() loginForm {
	var f loginForm
	for i, name := range loginFields {
		ti := textinput.New()
		ti.Placeholder = name
		ti.CharLimit = 128
		ti.Width = 32
		if name == "password" {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		f.inputs[i] = ti
	}
	f.inputs[0].Focus()
	return f
}

func (f loginForm) credentials() foodbridge.Credentials {
	return foodbridge.Credentials{
		Email:    strings.TrimSpace(f.inputs[0].Value()),
		Password: f.inputs[1].Value(),
	}
}

func (f *loginForm) setFocus(i int) tea.Cmd {
	n := len(f.inputs)
	f.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

// fail records a login error. Field errors go under their inputs; anything
// else becomes the form message.
func (f *loginForm) fail(err error) {
	f.submitting = false
	f.errors = foodbridge.FieldErrors{}
	for k, v := range thunks.FieldErrors(err) {
		f.errors[k] = v
	}
	f.message = ""

	var rejected *thunks.RejectedError
	switch {
	case errors.As(err, &rejected):
		if len(rejected.Messages) > 0 {
			f.message = rejected.Messages[0]
		} else if len(f.errors) == 0 {
			f.message = rejected.Message()
		}
	case errors.Is(err, thunks.ErrServerUnavailable):
		f.message = "Server unavailable. Try again shortly."
	case len(f.errors) == 0:
		f.message = err.Error()
	}
	for i, name := range loginFields {
		if _, ok := f.errors[name]; ok {
			f.setFocus(i)
			break
		}
	}
}

// update handles one key. submit is true when the form should be sent.
func (f loginForm) update(msg tea.KeyMsg, keys keyMap) (loginForm, tea.Cmd, bool) {
	if f.submitting {
		return f, nil, false
	}
	switch {
	case key.Matches(msg, keys.Confirm):
		if f.focus < len(f.inputs)-1 && f.inputs[f.focus+1].Value() == "" {
			return f, f.setFocus(f.focus + 1), false
		}
		f.submitting = true
		f.message = ""
		return f, nil, true
	case key.Matches(msg, keys.NextField):
		return f, f.setFocus(f.focus + 1), false
	case key.Matches(msg, keys.PrevField):
		return f, f.setFocus(f.focus - 1), false
	case key.Matches(msg, keys.Cancel):
		f.message = ""
		f.errors = nil
		return f, nil, false
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	delete(f.errors, loginFields[f.focus])
	return f, cmd, false
}

func (m Model) renderLogin() string {
	styles := m.theme.Styles()
	f := m.login

	var b strings.Builder
	b.WriteString(styles.Logo.Render("FoodBridge"))
	b.WriteString(styles.MutedText.Render("  sign in"))
	b.WriteString("\n\n")
	for i, name := range loginFields {
		label := styles.MutedText
		if i == f.focus {
			label = styles.AccentText
		}
		b.WriteString(label.Render(titleCase(name)))
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
		if msg, ok := f.errors[name]; ok {
			b.WriteString(styles.DangerText.Render("  " + msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	switch {
	case f.submitting:
		b.WriteString(m.spinner.View() + styles.MutedText.Render(" signing in"))
	case f.message != "":
		b.WriteString(styles.DangerText.Render(f.message))
	default:
		b.WriteString(styles.FaintText.Render("enter submit · tab next field · ctrl+c quit"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 3).
		Width(48).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
