package update

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/dayplan/internal/views"
)

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

var (
	keyMove    = key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "move"))
	keyDay     = key.NewBinding(key.WithKeys("h", "l"), key.WithHelp("h/l", "prev/next day"))
	keyToday   = key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today"))
	keyReplan  = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "replan"))
	keyDone    = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "mark done"))
	keyExplain = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "explain"))
	keyPalette = key.NewBinding(key.WithKeys(":", "/"), key.WithHelp(":", "command"))
	keyHelp    = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help"))
	keyQuit    = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))

	shortKeys = helpKeyMap{
		short: []key.Binding{keyMove, keyDay, keyReplan, keyDone, keyPalette, keyHelp, keyQuit},
	}
	allKeys = []key.Binding{keyMove, keyDay, keyToday, keyReplan, keyDone, keyExplain, keyPalette, keyHelp, keyQuit}
)

var paletteCommands = []string{
	"plan [today|tomorrow|YYYY-MM-DD]",
	"done <task-id>",
	"overrun <task-id> <minutes>",
	"explain <task-id>",
	"add <title> [for:<min>] [due:<day>] [p:low|medium|high] [deep]",
}

func (m Model) renderHelpView() string {
	bindings := make([]string, 0, len(allKeys))
	for _, b := range allKeys {
		h := b.Help()
		bindings = append(bindings, "- "+h.Key+": "+h.Desc)
	}
	return views.RenderHelpPanel(views.HelpPanelData{Bindings: bindings, Commands: paletteCommands})
}
