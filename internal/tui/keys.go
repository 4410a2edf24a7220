package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/smp-planner/spmp/internal/i18n"
)

// keyMap 界面快捷键，说明文字随界面语言变化
type keyMap struct {
	Submit  key.Binding
	Tab     key.Binding
	Section key.Binding
	Mode    key.Binding
	Lang    key.Binding
	Clear   key.Binding
	Up      key.Binding
	Down    key.Binding
	Quit    key.Binding
}

func newKeyMap(loc i18n.Locale) keyMap {
	return keyMap{
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", loc.T("help.submit"))),
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", loc.T("help.tab"))),
		Section: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", loc.T("help.section"))),
		Mode:    key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", loc.T("help.mode"))),
		Lang:    key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", loc.T("help.lang"))),
		Clear:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", loc.T("help.clear"))),
		Up:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup/pgdn", loc.T("help.scroll"))),
		Down:    key.NewBinding(key.WithKeys("pgdown")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", loc.T("help.quit"))),
	}
}

// ShortHelp 实现 help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Tab, k.Mode, k.Lang, k.Quit}
}

// FullHelp 实现 help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Tab, k.Section},
		{k.Mode, k.Lang, k.Clear},
		{k.Up, k.Quit},
	}
}
