package hubspot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brizzai/hubspot-connect/internal/models"
)

// ItemTypeContact is the IntegrationItem type for CRM contacts
const ItemTypeContact = "Contact"

// DefaultAppBaseURL is where record links point when none is configured
const DefaultAppBaseURL = "https://app.hubspot.com"

// Contact is one record of the CRM v3 contacts listing
type Contact struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
	CreatedAt  string         `json:"createdAt"`
	UpdatedAt  string         `json:"updatedAt"`
	Archived   bool           `json:"archived"`
}

// UnmarshalJSON accepts the id as a string, a number or null so one odd
// record cannot fail the decode of a whole page.
func (c *Contact) UnmarshalJSON(data []byte) error {
	type alias Contact
	aux := struct {
		ID json.RawMessage `json:"id"`
		*alias
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.ID = rawID(aux.ID)
	return nil
}

func rawID(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return text
}

type contactsPage struct {
	Results []Contact `json:"results"`
	Paging  *struct {
		Next *struct {
			After string `json:"after"`
			Link  string `json:"link"`
		} `json:"next"`
	} `json:"paging"`
}

func (p *contactsPage) nextCursor() string {
	if p.Paging == nil || p.Paging.Next == nil {
		return ""
	}
	return p.Paging.Next.After
}

// Normalize maps a contact to an IntegrationItem linking into the default app.
func Normalize(c Contact, itemType string) models.IntegrationItem {
	return normalize(c, itemType, DefaultAppBaseURL)
}

func normalize(c Contact, itemType, appBaseURL string) models.IntegrationItem {
	item := models.IntegrationItem{
		Name:             contactName(c),
		Type:             itemType,
		CreationTime:     optional(c.CreatedAt),
		LastModifiedTime: optional(c.UpdatedAt),
	}
	if c.ID != "" {
		id := c.ID
		link := fmt.Sprintf("%s/contacts/%s", strings.TrimRight(appBaseURL, "/"), c.ID)
		item.ID = &id
		item.URL = &link
	}
	return item
}

func contactName(c Contact) string {
	first := property(c.Properties, "firstname")
	last := property(c.Properties, "lastname")
	if first != "" || last != "" {
		if name := strings.TrimSpace(first + " " + last); name != "" {
			return name
		}
	}
	if email := strings.TrimSpace(property(c.Properties, "email")); email != "" {
		return email
	}
	if c.ID == "" {
		return "Contact Unknown"
	}
	return "Contact " + c.ID
}

// property reads a string property; HubSpot sends null for unset values.
func property(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
