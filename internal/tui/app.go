package tui

import (
	itemmodels "github.com/brizzai/hubspot-connect/internal/models"
	"github.com/brizzai/hubspot-connect/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
)

type page string

const (
	pageMain   page = "main"
	pageList   page = "list"
	pageExport page = "export"
)

// AppModel is the main application model that manages page switching
type AppModel struct {
	mainPage   MainPageModel
	listView   ListItemModel
	exportView ExportView
	page       page
}

// NewAppModel creates the contact browser. warning is shown on the landing
// page, typically when the fetch returned a partial list.
func NewAppModel(contacts []itemmodels.IntegrationItem, warning string) AppModel {
	return AppModel{
		mainPage: NewMainPageModel(contacts, warning),
		listView: NewListItemModel(contacts),
		// replaced on DoneMsg
		exportView: ExportView{},
		page:       pageMain,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.mainPage.Init(),
		m.listView.Init(),
	)
}

// Update handles app-level messages and delegates to the active page
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case OpenListItemMsg:
		m.page = pageList
		return m, m.listView.Init()

	case DoneMsg:
		m.page = pageExport
		m.exportView = NewExportView(msg.Contacts)
		return m, m.exportView.Init()

	case BackToListMsg:
		m.page = pageList
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "esc" && m.page == pageList && !m.listView.Busy() {
			m.page = pageMain
			return m, nil
		}

	case tea.WindowSizeMsg:
		var cmd tea.Cmd
		var tempModel tea.Model

		tempModel, cmd = m.mainPage.Update(msg)
		m.mainPage = tempModel.(MainPageModel)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.listView.Update(msg)
		m.listView = tempModel.(ListItemModel)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.exportView.Update(msg)
		m.exportView = tempModel.(ExportView)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	var tempModel tea.Model
	switch m.page {
	case pageMain:
		tempModel, cmd = m.mainPage.Update(msg)
		m.mainPage = tempModel.(MainPageModel)
	case pageList:
		tempModel, cmd = m.listView.Update(msg)
		m.listView = tempModel.(ListItemModel)
	case pageExport:
		tempModel, cmd = m.exportView.Update(msg)
		m.exportView = tempModel.(ExportView)
	}

	return m, cmd
}

func (m AppModel) View() string {
	switch m.page {
	case pageMain:
		return m.mainPage.View()
	case pageExport:
		return m.exportView.View()
	default:
		return m.listView.View()
	}
}

// GetContactUpdates delegates to the list view
func (m AppModel) GetContactUpdates() []*models.ContactItem {
	return m.listView.GetContactUpdates()
}

// IsFinished reports whether the user exported the contacts.
func (m AppModel) IsFinished() bool {
	return m.exportView.Success
}
