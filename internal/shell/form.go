package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// field describes one form input
type field struct {
	Label       string
	Placeholder string
	Secret      bool
	Value       string // Initial value
}

// form is a column of text inputs, one focused at a time
type form struct {
	action Action
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
	err    string
}

func newForm(action Action, title string, fields []field) form {
	f := form{action: action, title: title}
	for _, fd := range fields {
		in := textinput.New()
		in.Placeholder = fd.Placeholder
		in.CharLimit = 512
		in.Width = 40
		in.SetValue(fd.Value)
		if fd.Secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.labels = append(f.labels, fd.Label)
		f.inputs = append(f.inputs, in)
	}
	return f.setFocus(0)
}

func (f form) setFocus(i int) form {
	if n := len(f.inputs); n > 0 {
		i = (i%n + n) % n
	}
	f.focus = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
			f.inputs[j].PromptStyle = FocusedInputStyle
			f.inputs[j].TextStyle = FocusedInputStyle
		} else {
			f.inputs[j].Blur()
			f.inputs[j].PromptStyle = BlurredInputStyle
			f.inputs[j].TextStyle = BlurredInputStyle
		}
	}
	return f
}

// values returns the trimmed input values in field order. Secret fields
// are returned as typed.
func (f form) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		if in.EchoMode == textinput.EchoPassword {
			out[i] = in.Value()
		} else {
			out[i] = strings.TrimSpace(in.Value())
		}
	}
	return out
}

// missing returns the label of the first empty field, or ""
func (f form) missing() string {
	for i, v := range f.values() {
		if v == "" {
			return f.labels[i]
		}
	}
	return ""
}

// update forwards a message to the focused input
func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f form) view() string {
	var b strings.Builder
	b.WriteString(RenderTitle(f.title))
	b.WriteString("\n")

	width := 0
	for _, l := range f.labels {
		if len(l) > width {
			width = len(l)
		}
	}
	for i, in := range f.inputs {
		label := fmt.Sprintf("  %-*s ", width+1, f.labels[i]+":")
		if i == f.focus {
			b.WriteString(FocusedInputStyle.Render(label))
		} else {
			b.WriteString(BlurredInputStyle.Render(label))
		}
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}

	if f.err != "" {
		b.WriteString(RenderError(f.err))
		b.WriteString("\n")
	}
	return b.String()
}
