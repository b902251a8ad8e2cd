package shell

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// Action is an entry in the session menu
type Action string

const (
	ActionLogin    Action = "login"
	ActionLogout   Action = "logout"
	ActionRegister Action = "register"
	ActionEncrypt  Action = "encrypt"
	ActionDecrypt  Action = "decrypt"
	ActionQuit     Action = "quit"
)

// menuItem wraps an Action for use with bubbles/list
type menuItem struct {
	action Action
	title  string
	desc   string
}

// FilterValue implements list.Item
func (i menuItem) FilterValue() string { return i.title }

// menuItems returns the actions available in the current session state
func menuItems(loggedIn bool) []list.Item {
	items := []list.Item{}
	if loggedIn {
		items = append(items,
			menuItem{ActionDecrypt, "Decrypt", "Recover a file hidden for you"},
			menuItem{ActionEncrypt, "Encrypt", "Hide a file in a cover GIF"},
			menuItem{ActionLogout, "Logout", "Forget the session passphrase"},
		)
	} else {
		items = append(items,
			menuItem{ActionLogin, "Login", "Unlock your key to decrypt"},
			menuItem{ActionEncrypt, "Encrypt", "Hide a file in a cover GIF"},
			menuItem{ActionRegister, "Register", "Create a user and key pair"},
		)
	}
	return append(items, menuItem{ActionQuit, "Quit", "Leave the session"})
}

// menuDelegate renders menu entries as a title line and a muted description
type menuDelegate struct{}

func (d menuDelegate) Height() int { return 2 }

func (d menuDelegate) Spacing() int { return 1 }

func (d menuDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d menuDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	mi, ok := item.(menuItem)
	if !ok {
		return
	}
	fmt.Fprintf(w, "%s\n%s", RenderMenuItem(mi.title, index == m.Index()), MenuItemStyle.Render("  "+SubtitleStyle.Render(mi.desc)))
}

func newMenu(loggedIn bool) list.Model {
	menu := list.New(menuItems(loggedIn), menuDelegate{}, MinTerminalWidth-4, 14)
	menu.Title = "What would you like to do?"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	menu.SetShowHelp(false)
	menu.Styles.Title = TitleStyle
	return menu
}
