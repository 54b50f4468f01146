package tui

import (
	"github.com/brizzai/hubspot-connect/internal/tui/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// newItemDelegate returns a list.DefaultDelegate with custom update and help functions.
func newItemDelegate(keys *delegateKeyMap) list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.UpdateFunc = func(msg tea.Msg, m *list.Model) tea.Cmd {
		item, ok := m.SelectedItem().(models.ContactItem)
		if !ok {
			return nil
		}

		if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.exclude) {
			updated := item.ToggleExcluded()
			m.SetItem(m.GlobalIndex(), updated)
			if updated.IsExcluded {
				return m.NewStatusMessage(statusMessageStyle("Excluded " + item.Title() + " from the export"))
			}
			return m.NewStatusMessage(statusMessageStyle("Added back " + item.Title() + " to the export"))
		}
		return nil
	}

	help := []key.Binding{keys.exclude}

	d.ShortHelpFunc = func() []key.Binding {
		return help
	}

	d.FullHelpFunc = func() [][]key.Binding {
		return [][]key.Binding{help}
	}

	return d
}

// delegateKeyMap holds key bindings for list item actions.
type delegateKeyMap struct {
	exclude key.Binding
}

func (d delegateKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{d.exclude}
}

func (d delegateKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{d.exclude}}
}

func newDelegateKeyMap() *delegateKeyMap {
	return &delegateKeyMap{
		exclude: key.NewBinding(
			key.WithKeys("x", "backspace"),
			key.WithHelp("x", "Exclude from export"),
		),
	}
}
