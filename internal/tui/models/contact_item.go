package models

import (
	"fmt"
	"strings"

	items "github.com/brizzai/hubspot-connect/internal/models"
	"github.com/charmbracelet/lipgloss"
)

// ContactItem wraps an IntegrationItem for display in the list
// Implements list.Item
type ContactItem struct {
	Item       items.IntegrationItem
	NewName    string
	IsExcluded bool
}

func (i ContactItem) Title() string {
	if i.NewName != "" {
		return i.NewName
	}
	return i.Item.Name
}

func (i ContactItem) Description() string {
	if i.IsExcluded {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Render("[Excluded]")
	}
	parts := []string{fmt.Sprintf("#%s", items.StringValue(i.Item.ID))}
	if updated := items.StringValue(i.Item.LastModifiedTime); updated != "" {
		parts = append(parts, "updated "+updated)
	}
	if url := items.StringValue(i.Item.URL); url != "" {
		parts = append(parts, url)
	}
	return strings.Join(parts, "  ")
}

func (i ContactItem) Renamed(name string) ContactItem {
	if name == i.Item.Name {
		name = ""
	}
	i.NewName = name
	return i
}

func (i ContactItem) ToggleExcluded() ContactItem {
	i.IsExcluded = !i.IsExcluded
	return i
}

// Export returns the item as it should be written out, with any rename applied.
func (i ContactItem) Export() items.IntegrationItem {
	out := i.Item
	if i.NewName != "" {
		out.Name = i.NewName
	}
	return out
}

func (i ContactItem) FilterValue() string {
	return i.Item.Name + " " + items.StringValue(i.Item.ID)
}
