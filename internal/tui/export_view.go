package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	itemmodels "github.com/brizzai/hubspot-connect/internal/models"
	"github.com/brizzai/hubspot-connect/internal/tui/models"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// DefaultExportFile is used when the filename prompt is left empty.
const DefaultExportFile = "hubspot-contacts.yaml"

// ExportView handles prompting for a filename and exporting contacts
type ExportView struct {
	contacts     []*models.ContactItem
	textInput    textinput.Model
	err          error
	width        int
	height       int
	exportStatus string
	Success      bool
}

// NewExportView creates a new export view
func NewExportView(contacts []*models.ContactItem) ExportView {
	ti := textinput.New()
	ti.Placeholder = DefaultExportFile
	ti.Focus()
	ti.Width = 40

	return ExportView{
		contacts:  contacts,
		textInput: ti,
	}
}

// Init initializes the export view
func (m ExportView) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the export view
func (m ExportView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, func() tea.Msg { return BackToListMsg{} }
		case "enter":
			filename := strings.TrimSpace(m.textInput.Value())
			if filename == "" {
				filename = DefaultExportFile
			}
			if !strings.HasSuffix(filename, ".yaml") && !strings.HasSuffix(filename, ".yml") {
				filename += ".yaml"
			}

			err := ExportItemsToYamlFile(m.contacts, filename)
			if err != nil {
				m.err = err
				m.exportStatus = fmt.Sprintf("Error exporting: %v", err)
				return m, nil
			}

			if _, err := os.Stat(filename); os.IsNotExist(err) {
				m.exportStatus = fmt.Sprintf("Error: File %s was not created", filename)
				return m, nil
			}

			m.Success = true
			m.exportStatus = completeMessageStyle(fmt.Sprintf("Successfully exported to %s", filename))
			return m, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tea.Quit()
			})
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the export view
func (m ExportView) View() string {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("\n", max((m.height-6)/2, 0)))

	title := titleStyle.Render("Export Contacts")
	sb.WriteString(centerText(title, m.width))
	sb.WriteString("\n\n")

	prompt := fmt.Sprintf("Export %s to:", pluralize(m.exportCount(), "contact"))
	sb.WriteString(centerText(prompt, m.width))
	sb.WriteString("\n")

	input := m.textInput.View()
	sb.WriteString(centerText(input, m.width))
	sb.WriteString("\n\n")

	if m.exportStatus != "" {
		sb.WriteString(centerText(m.exportStatus, m.width))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(centerText("(esc) Back to list | (enter) Export", m.width))

	return sb.String()
}

func (m ExportView) exportCount() int {
	n := 0
	for _, c := range m.contacts {
		if c != nil && !c.IsExcluded {
			n++
		}
	}
	return n
}

// BackToListMsg signals to go back to the contact list
type BackToListMsg struct{}

// ContactExport is the document written by the export view.
type ContactExport struct {
	Contacts []itemmodels.IntegrationItem `yaml:"contacts"`
}

// ExportItemsToYamlFile writes every contact not marked as excluded, with
// renames applied, to filename.
func ExportItemsToYamlFile(contacts []*models.ContactItem, filename string) error {
	exportData := ContactExport{Contacts: []itemmodels.IntegrationItem{}}
	for _, c := range contacts {
		if c == nil || c.IsExcluded {
			continue
		}
		exportData.Contacts = append(exportData.Contacts, c.Export())
	}

	yamlData, err := yaml.Marshal(exportData)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, yamlData, 0o644)
}

// centerText pads text so it sits in the middle of width columns.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if width <= w {
		return text
	}

	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}
