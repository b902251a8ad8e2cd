package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gifveil/gifveil/internal/codec"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenMenu    Screen = "menu"
	ScreenForm    Screen = "form"
	ScreenRunning Screen = "running"
	ScreenConfirm Screen = "confirm"
	ScreenResult  Screen = "result"
)

// EncryptRequest carries the encrypt form
type EncryptRequest struct {
	Recipient string
	Input     string
	Cover     string
	Output    string
}

// DecryptRequest carries the decrypt form and the session credentials
type DecryptRequest struct {
	User       string
	Passphrase string
	Original   string
	Encoded    string
	Output     string
	Force      bool // Proceed past a cover checksum mismatch
}

// Actions performs session operations. Calls block and run off the UI
// goroutine. Decrypt reports a cover mismatch as a codec ChecksumMismatch
// error unless Force is set; the shell then asks the user.
type Actions interface {
	Login(user, passphrase string) error
	Register(user, passphrase string) error
	Encrypt(req EncryptRequest) (map[string]string, error)
	Decrypt(req DecryptRequest) (map[string]string, error)
}

// Options seeds form defaults
type Options struct {
	OutputFile string // Default encoded GIF path
}

// job is a submitted form waiting on Actions
type job struct {
	action  Action
	user    string
	pass    string
	encrypt EncryptRequest
	decrypt DecryptRequest
}

type jobDoneMsg struct {
	job     job
	details map[string]string
	err     error
}

// result is what the result screen shows
type result struct {
	title   string
	details map[string]string
	err     error
}

// AppModel is the top-level model that manages screen transitions and
// the login session
type AppModel struct {
	CurrentScreen Screen

	actions Actions
	opts    Options

	// Session credentials, kept in memory only until logout
	user string
	pass string

	menu     list.Model
	form     form
	spinner  spinner.Model
	pending  job
	mismatch *codec.CodecError
	result   result
	status   string

	Width  int
	Height int

	help help.Model
	keys keyMaps
}

// New creates the session model starting at the menu
func New(actions Actions, opts Options) AppModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return AppModel{
		CurrentScreen: ScreenMenu,
		actions:       actions,
		opts:          opts,
		menu:          newMenu(false),
		spinner:       s,
		help:          help.New(),
		keys:          newKeyMaps(),
		Width:         MinTerminalWidth,
	}
}

// User returns the logged-in user, or "" when logged out
func (m AppModel) User() string {
	return m.user
}

// Init implements tea.Model
func (m AppModel) Init() tea.Cmd {
	return nil
}

// Update handles all messages and routes them to the current screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.menu.SetSize(msg.Width-4, max(msg.Height-8, 6))
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.CurrentScreen != ScreenRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case jobDoneMsg:
		return m.finishJob(msg)
	}

	switch m.CurrentScreen {
	case ScreenMenu:
		return m.updateMenu(msg)
	case ScreenForm:
		return m.updateForm(msg)
	case ScreenConfirm:
		return m.updateConfirm(msg)
	case ScreenResult:
		return m.updateResult(msg)
	}
	return m, nil
}

func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Menu.Quit):
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.Menu.Enter):
			item, ok := m.menu.SelectedItem().(menuItem)
			if !ok {
				return m, nil
			}
			return m.selectAction(item.action)
		}
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

// selectAction opens the form for action, or acts on it directly
func (m AppModel) selectAction(action Action) (tea.Model, tea.Cmd) {
	m.status = ""
	switch action {
	case ActionQuit:
		return m, tea.Quit

	case ActionLogout:
		m.status = fmt.Sprintf("Logged out %s", m.user)
		m.user, m.pass = "", ""
		m.menu.SetItems(menuItems(false))
		m.menu.Select(0)
		return m, nil

	case ActionLogin:
		m.form = newForm(action, "Login", []field{
			{Label: "Username", Placeholder: "alice"},
			{Label: "Passphrase", Secret: true},
		})

	case ActionRegister:
		m.form = newForm(action, "Register", []field{
			{Label: "Username", Placeholder: "alice"},
			{Label: "Passphrase", Secret: true},
			{Label: "Confirm passphrase", Secret: true},
		})

	case ActionEncrypt:
		m.form = newForm(action, "Encrypt", []field{
			{Label: "Recipient", Placeholder: "bob"},
			{Label: "Input file", Placeholder: "notes.txt"},
			{Label: "Cover GIF", Placeholder: "cover.gif"},
			{Label: "Output GIF", Value: m.opts.OutputFile},
		})

	case ActionDecrypt:
		m.form = newForm(action, "Decrypt as "+m.user, []field{
			{Label: "Original GIF", Placeholder: "cover.gif"},
			{Label: "Encoded GIF", Placeholder: m.opts.OutputFile},
			{Label: "Output file", Placeholder: "notes.txt"},
		})

	default:
		return m, nil
	}

	m.CurrentScreen = ScreenForm
	return m, nil
}

func (m AppModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Form.Cancel):
		m.CurrentScreen = ScreenMenu
		return m, nil
	case key.Matches(keyMsg, m.keys.Form.Next):
		m.form = m.form.setFocus(m.form.focus + 1)
		return m, nil
	case key.Matches(keyMsg, m.keys.Form.Prev):
		m.form = m.form.setFocus(m.form.focus - 1)
		return m, nil
	case key.Matches(keyMsg, m.keys.Form.Submit):
		if m.form.focus < len(m.form.inputs)-1 {
			m.form = m.form.setFocus(m.form.focus + 1)
			return m, nil
		}
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

// submitForm validates the form and starts its job
func (m AppModel) submitForm() (tea.Model, tea.Cmd) {
	if label := m.form.missing(); label != "" {
		m.form.err = label + " is required"
		return m, nil
	}

	v := m.form.values()
	j := job{action: m.form.action}
	switch m.form.action {
	case ActionLogin:
		j.user, j.pass = v[0], v[1]
	case ActionRegister:
		if v[1] != v[2] {
			m.form.err = "Passphrases do not match"
			return m, nil
		}
		j.user, j.pass = v[0], v[1]
	case ActionEncrypt:
		j.encrypt = EncryptRequest{Recipient: v[0], Input: v[1], Cover: v[2], Output: v[3]}
	case ActionDecrypt:
		j.decrypt = DecryptRequest{User: m.user, Passphrase: m.pass, Original: v[0], Encoded: v[1], Output: v[2]}
	}
	return m.startJob(j)
}

func (m AppModel) startJob(j job) (tea.Model, tea.Cmd) {
	m.pending = j
	m.CurrentScreen = ScreenRunning
	return m, tea.Batch(m.spinner.Tick, runJob(m.actions, j))
}

// runJob performs j on actions off the UI goroutine
func runJob(actions Actions, j job) tea.Cmd {
	return func() tea.Msg {
		done := jobDoneMsg{job: j}
		switch j.action {
		case ActionLogin:
			done.err = actions.Login(j.user, j.pass)
		case ActionRegister:
			done.err = actions.Register(j.user, j.pass)
		case ActionEncrypt:
			done.details, done.err = actions.Encrypt(j.encrypt)
		case ActionDecrypt:
			done.details, done.err = actions.Decrypt(j.decrypt)
		}
		return done
	}
}

func (m AppModel) finishJob(msg jobDoneMsg) (tea.Model, tea.Cmd) {
	j := msg.job

	if msg.err != nil {
		if ce, ok := codec.AsCodecError(msg.err); ok && ce.Type == codec.ErrTypeChecksumMismatch && j.action == ActionDecrypt && !j.decrypt.Force {
			m.mismatch = ce
			m.CurrentScreen = ScreenConfirm
			return m, nil
		}
		m.result = result{title: actionTitle(j.action) + " failed", err: msg.err}
		m.CurrentScreen = ScreenResult
		return m, nil
	}

	details := msg.details
	switch j.action {
	case ActionLogin:
		m.user, m.pass = j.user, j.pass
		m.menu.SetItems(menuItems(true))
		m.menu.Select(0)
		details = map[string]string{"User": j.user}
	case ActionRegister:
		if details == nil {
			details = map[string]string{"User": j.user}
		}
	}
	m.result = result{title: actionTitle(j.action) + " complete", details: details}
	m.CurrentScreen = ScreenResult
	return m, nil
}

func (m AppModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm.Yes):
		j := m.pending
		j.decrypt.Force = true
		m.mismatch = nil
		return m.startJob(j)
	case key.Matches(keyMsg, m.keys.Confirm.No):
		m.result = result{title: "Decrypt aborted", err: m.mismatch}
		m.mismatch = nil
		m.CurrentScreen = ScreenResult
	}
	return m, nil
}

func (m AppModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Result.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Result.Back):
		m.CurrentScreen = ScreenMenu
	}
	return m, nil
}

func actionTitle(a Action) string {
	s := string(a)
	return strings.ToUpper(s[:1]) + s[1:]
}

// View renders the current screen
func (m AppModel) View() string {
	var content, helpText string

	switch m.CurrentScreen {
	case ScreenMenu:
		content = m.menu.View()
		if m.status != "" {
			content = RenderSubtitle("  "+m.status) + "\n" + content
		}
		helpText = m.help.View(m.keys.Menu)

	case ScreenForm:
		content = m.form.view()
		helpText = m.help.View(m.keys.Form)

	case ScreenRunning:
		content = "\n" + SpinnerStyle.Render(fmt.Sprintf("  %s %s...", m.spinner.View(), actionTitle(m.pending.action))) + "\n"

	case ScreenConfirm:
		content = m.confirmView()
		helpText = m.help.View(m.keys.Confirm)

	case ScreenResult:
		content = m.resultView()
		helpText = m.help.View(m.keys.Result)
	}

	return RenderApplicationContainer(content, helpText, m.user, m.Width, m.Height)
}

func (m AppModel) confirmView() string {
	var b strings.Builder
	b.WriteString(RenderTitle("Original GIF does not match"))
	b.WriteString("\n")
	if m.mismatch != nil {
		b.WriteString(RenderDetails(map[string]string{
			"Embedded checksum": m.mismatch.Expected.String(),
			"Supplied original": m.mismatch.Actual.String(),
		}))
	}
	b.WriteString("\n")
	b.WriteString(WarningBoxStyle.Render("⚠ Decoding with the wrong original yields garbage.\nTry to decode anyway?"))
	b.WriteString("\n")
	return b.String()
}

func (m AppModel) resultView() string {
	var b strings.Builder
	if m.result.err != nil {
		b.WriteString(RenderError(m.result.title))
		b.WriteString("\n\n")
		b.WriteString("  Error: " + m.result.err.Error() + "\n")
		for _, hint := range codec.GetTroubleshootingHint(m.result.err) {
			b.WriteString("    • " + hint + "\n")
		}
		return b.String()
	}

	b.WriteString(RenderSuccess(m.result.title))
	b.WriteString("\n\n")
	b.WriteString(RenderDetails(m.result.details))
	return b.String()
}
