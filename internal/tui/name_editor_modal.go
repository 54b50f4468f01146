package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// NameEditorModal provides a single-line input for renaming a contact.
type NameEditorModal struct {
	input textinput.Model
}

func NewNameEditorModal(initial string) NameEditorModal {
	ti := textinput.New()
	ti.Placeholder = "Contact name"
	ti.CharLimit = 256
	ti.Width = 50
	ti.SetValue(initial)
	ti.Focus()
	return NameEditorModal{input: ti}
}

// Init returns the initial command for the modal (cursor blink).
func (m NameEditorModal) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the modal.
func (m NameEditorModal) Update(msg tea.Msg) (NameEditorModal, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Name returns the current value of the input.
func (m NameEditorModal) Name() string {
	return m.input.Value()
}

func (m NameEditorModal) View(title string) string {
	return fmt.Sprintf(
		"%s\n\n%s\n\n%s",
		editHeaderStyle.Render(title),
		m.input.View(),
		"(enter to save, esc to cancel)",
	) + "\n\n"
}
