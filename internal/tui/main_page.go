package tui

import (
	"fmt"
	"strings"

	itemmodels "github.com/brizzai/hubspot-connect/internal/models"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxPreviewContacts = 5

// MainPageKeyMap holds key bindings for the main page actions
type MainPageKeyMap struct {
	open key.Binding
	quit key.Binding
}

func newMainPageKeyMap() *MainPageKeyMap {
	return &MainPageKeyMap{
		open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Browse contacts"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("ctrl+c/q", "Quit"),
		),
	}
}

// MainPageModel is the landing page summarizing the fetched contacts.
type MainPageModel struct {
	keys     *MainPageKeyMap
	width    int
	height   int
	contacts []itemmodels.IntegrationItem
	warning  string
}

// OpenListItemMsg is sent when the user chooses to open the contact list
type OpenListItemMsg struct{}

// NewMainPageModel creates a new main page model. A non-empty warning is shown
// when the fetch stopped early and the list is partial.
func NewMainPageModel(contacts []itemmodels.IntegrationItem, warning string) MainPageModel {
	return MainPageModel{
		keys:     newMainPageKeyMap(),
		contacts: contacts,
		warning:  warning,
	}
}

func (m MainPageModel) Init() tea.Cmd {
	return nil
}

func (m MainPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.open):
			return m, func() tea.Msg { return OpenListItemMsg{} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m MainPageModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render("HubSpot Contacts")

	descStyle := lipgloss.NewStyle().
		Padding(1, 0).
		Width(m.width - 4).
		Align(lipgloss.Center)

	description := descStyle.Render(
		"Browse the contacts fetched from your HubSpot account.\n" +
			"You can filter, rename and exclude contacts before exporting them.\n\n" +
			"Fetched " + pluralize(len(m.contacts), "contact") + ".",
	)

	previewStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(accentColor)).
		Padding(1, 1).
		Width(m.width - 10).
		Align(lipgloss.Left)

	var preview strings.Builder
	shown := min(len(m.contacts), maxPreviewContacts)
	for _, c := range m.contacts[:shown] {
		fmt.Fprintf(&preview, "%s  %s\n", itemmodels.StringValue(c.ID), c.Name)
	}
	if len(m.contacts) > maxPreviewContacts {
		fmt.Fprintf(&preview, "\n... and %d more contacts", len(m.contacts)-maxPreviewContacts)
	}
	if len(m.contacts) == 0 {
		preview.WriteString("No contacts")
	}

	instructionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(accentColor)).
		Padding(1, 0).
		Width(m.width - 4).
		Align(lipgloss.Center)

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#626262", Dark: "#A49FA5"}).
		Width(m.width - 4).
		Align(lipgloss.Center)

	parts := []string{
		"",
		title,
		"",
		description,
	}
	if m.warning != "" {
		parts = append(parts, warningStyle(m.warning))
	}
	parts = append(parts,
		"",
		previewStyle.Render(preview.String()),
		"",
		instructionStyle.Render("Press ENTER to browse contacts"),
		"",
		helpStyle.Render("Press q or Ctrl+C to quit"),
	)

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
}

// pluralize returns the count followed by the noun, pluralized when needed.
func pluralize(count int, singular string) string {
	if count == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %ss", count, singular)
}
