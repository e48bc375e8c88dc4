package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/airline/pkg/runtime"
)

// ConfirmationDialog represents a yes/no confirmation dialog
type ConfirmationDialog struct {
	Title       string
	Message     string
	YesSelected bool
}

// NewConfirmationDialog creates a dialog with Yes preselected.
func NewConfirmationDialog(title, message string) ConfirmationDialog {
	return ConfirmationDialog{Title: title, Message: message, YesSelected: true}
}

// Update handles a key press. answered reports whether the user decided,
// and yes what they decided.
func (d *ConfirmationDialog) Update(msg tea.KeyMsg) (answered, yes bool) {
	switch msg.String() {
	case "left", "h":
		d.YesSelected = true
	case "right", "l":
		d.YesSelected = false
	case "y", "Y":
		return true, true
	case "n", "N":
		return true, false
	case "enter":
		return true, d.YesSelected
	}
	return false, false
}

// View renders the confirmation dialog
func (d ConfirmationDialog) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n")
	b.WriteString(d.Message)
	b.WriteString("\n\n")

	yesButton := inactiveButtonStyle.Render("Yes")
	noButton := inactiveButtonStyle.Render("No")
	if d.YesSelected {
		yesButton = activeButtonStyle.Render("Yes")
	} else {
		noButton = activeButtonStyle.Render("No")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, yesButton, "  ", noButton))
	b.WriteString("\n")
	b.WriteString(helpLine("←/→", "choose", "y/n", "answer", "enter", "confirm", "esc", "back"))

	return boxStyle.Render(b.String())
}

// menuItem is one entry of the main menu.
type menuItem struct {
	title  string
	desc   string
	action action
}

func (i menuItem) FilterValue() string { return i.title }
func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }

type menuDelegate struct{}

func (d menuDelegate) Height() int                             { return 2 }
func (d menuDelegate) Spacing() int                            { return 0 }
func (d menuDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d menuDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(menuItem)
	if !ok {
		return
	}

	var s string
	if index == m.Index() {
		s = selectedItemStyle.Render(fmt.Sprintf("▸ %d. %s\n    %s", index+1, i.title, mutedStyle.Render(i.desc)))
	} else {
		s = unselectedItemStyle.Render(fmt.Sprintf("%d. %s\n  %s", index+1, i.title, mutedStyle.Render(i.desc)))
	}

	_, _ = fmt.Fprint(w, s)
}

// Field describes one form input. Key matches the field name that parse
// and validation errors report.
type Field struct {
	Key         string
	Label       string
	Placeholder string
}

type formField struct {
	Field
	input textinput.Model
}

// Form is a column of labelled text inputs. Enter on the last field
// submits; submit parses the values and returns the command to run.
type Form struct {
	Title  string
	Err    string
	fields []formField
	focus  int
	submit func(values []string) (tea.Cmd, error)
}

// NewForm builds a form with one input per field.
func NewForm(title string, fields []Field, submit func(values []string) (tea.Cmd, error)) *Form {
	f := &Form{Title: title, submit: submit}
	for _, fld := range fields {
		in := textinput.New()
		in.Placeholder = fld.Placeholder
		in.CharLimit = 256
		in.Width = 32
		in.Prompt = ""
		f.fields = append(f.fields, formField{Field: fld, input: in})
	}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

// Values returns the raw text of every field in order.
func (f *Form) Values() []string {
	values := make([]string, len(f.fields))
	for i, fld := range f.fields {
		values[i] = fld.input.Value()
	}
	return values
}

// Focused returns the index of the field receiving keys.
func (f *Form) Focused() int { return f.focus }

func (f *Form) setFocus(i int) {
	if i < 0 || i >= len(f.fields) {
		return
	}
	f.fields[f.focus].input.Blur()
	f.focus = i
	f.fields[f.focus].input.Focus()
}

// FocusField moves the cursor to the field with the given key, if any.
func (f *Form) FocusField(key string) {
	for i, fld := range f.fields {
		if fld.Key == key {
			f.setFocus(i)
			return
		}
	}
}

// Update moves between fields, edits the focused one, or submits. The
// returned command is nil unless the form was submitted successfully;
// submitted reports that case.
func (f *Form) Update(msg tea.KeyMsg) (cmd tea.Cmd, submitted bool) {
	switch msg.String() {
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return nil, false
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return nil, false
	case "enter":
		if f.focus < len(f.fields)-1 {
			f.setFocus(f.focus + 1)
			return nil, false
		}
		cmd, err := f.submit(f.Values())
		if err != nil {
			f.Fail(err)
			return nil, false
		}
		f.Err = ""
		return cmd, true
	}

	var c tea.Cmd
	f.fields[f.focus].input, c = f.fields[f.focus].input.Update(msg)
	return c, false
}

// Fail shows err under the form and focuses the field it names.
func (f *Form) Fail(err error) {
	f.Err = err.Error()
	var ve *runtime.ValidationError
	if errors.As(err, &ve) {
		f.FocusField(ve.Field)
	}
}

// View renders the form
func (f *Form) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(f.Title))
	b.WriteString("\n")
	for i, fld := range f.fields {
		label := labelStyle.Render(fld.Label)
		if i == f.focus {
			label = focusedLabelStyle.Render(fld.Label)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, label, fld.input.View()))
		b.WriteString("\n")
	}

	if f.Err != "" {
		b.WriteString("\n")
		b.WriteString(dangerStyle.Render(f.Err))
		b.WriteString("\n")
	}

	b.WriteString(helpLine("tab/↓", "next", "shift+tab/↑", "previous", "enter", "submit", "esc", "menu"))
	return boxStyle.Render(b.String())
}
