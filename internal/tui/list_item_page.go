package tui

import (
	itemmodels "github.com/brizzai/hubspot-connect/internal/models"
	"github.com/brizzai/hubspot-connect/internal/tui/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// listKeyMap holds key bindings for the list actions.
type listKeyMap struct {
	rename key.Binding
	save   key.Binding
	cancel key.Binding
	finish key.Binding
	quit   key.Binding
}

// DoneMsg is sent when the user finishes reviewing contacts.
type DoneMsg struct {
	Contacts []*models.ContactItem
}

func newListKeyMap() *listKeyMap {
	return &listKeyMap{
		rename: key.NewBinding(
			key.WithKeys("E", "e"),
			key.WithHelp("E", "Rename"),
		),
		save: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Save"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
		finish: key.NewBinding(
			key.WithKeys("F", "f"),
			key.WithHelp("F", "Finish"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
	}
}

// ListItemModel is the contact browser page.
type ListItemModel struct {
	list      list.Model
	keys      *listKeyMap
	editing   bool
	editIndex int
	editModal NameEditorModal
}

func (m ListItemModel) Init() tea.Cmd {
	return nil
}

// Update routes messages to the rename modal while editing, otherwise to the list.
func (m ListItemModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleEditModeUpdate(msg)
	}
	return m.handleListModeUpdate(msg)
}

func (m ListItemModel) handleEditModeUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.cancel):
			m.editing = false
			return m, nil
		case key.Matches(msg, m.keys.save):
			m.editing = false
			item, ok := m.list.Items()[m.editIndex].(models.ContactItem)
			if !ok {
				return m, nil
			}
			newName := m.editModal.Name()
			if newName != item.Title() {
				updated := item.Renamed(newName)
				cmd := m.list.SetItem(m.editIndex, updated)
				return m, tea.Batch(cmd, m.list.NewStatusMessage(statusMessageStyle("Renamed contact to "+updated.Title())))
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}
	var cmd tea.Cmd
	m.editModal, cmd = m.editModal.Update(msg)
	return m, cmd
}

func (m ListItemModel) handleListModeUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Filter input owns the keyboard until it is applied or cancelled.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.rename):
			item, ok := m.list.SelectedItem().(models.ContactItem)
			if !ok {
				return m, nil
			}
			if item.IsExcluded {
				return m, m.list.NewStatusMessage(statusMessageStyle("Can't rename excluded contacts"))
			}
			m.editing = true
			m.editIndex = m.list.GlobalIndex()
			m.editModal = NewNameEditorModal(item.Title())
			return m, m.editModal.Init()
		case key.Matches(msg, m.keys.finish):
			return m, func() tea.Msg {
				return DoneMsg{Contacts: m.GetContactUpdates()}
			}
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m ListItemModel) View() string {
	if m.editing {
		title := ""
		if item, ok := m.list.Items()[m.editIndex].(models.ContactItem); ok {
			title = item.Title()
		}
		return docStyle.Render(m.editModal.View(title))
	}
	return docStyle.Render(m.list.View())
}

// NewListItemModel creates the contact browser for the fetched items.
func NewListItemModel(contacts []itemmodels.IntegrationItem) ListItemModel {
	listKeys := newListKeyMap()

	items := make([]list.Item, len(contacts))
	for i, c := range contacts {
		items[i] = models.ContactItem{Item: c}
	}
	delegate := newItemDelegate(newDelegateKeyMap())

	l := list.New(items, delegate, 0, 0)
	l.Title = titleStyle.Render("HubSpot contacts")
	l.SetShowFilter(true)

	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			listKeys.rename,
			listKeys.finish,
			listKeys.quit,
		}
	}
	return ListItemModel{list: l, keys: listKeys, editIndex: -1}
}

// GetContactUpdates returns the currently visible contacts with their edits.
func (m ListItemModel) GetContactUpdates() []*models.ContactItem {
	visible := m.list.VisibleItems()
	result := make([]*models.ContactItem, 0, len(visible))
	for _, item := range visible {
		c, ok := item.(models.ContactItem)
		if !ok {
			continue
		}
		result = append(result, &c)
	}
	return result
}

// Busy reports whether the page is consuming keys itself (renaming or filtering).
func (m ListItemModel) Busy() bool {
	return m.editing || m.list.FilterState() == list.Filtering
}
