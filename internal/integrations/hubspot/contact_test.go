package hubspot

import (
	"encoding/json"
	"testing"

	"github.com/brizzai/hubspot-connect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		contact  Contact
		wantName string
		wantURL  *string
	}{
		{
			name:     "First And Last Name",
			contact:  Contact{ID: "1", Properties: map[string]any{"firstname": "A", "lastname": "B"}},
			wantName: "A B",
			wantURL:  ptr("https://app.hubspot.com/contacts/1"),
		},
		{
			name:     "First Name Only Is Trimmed",
			contact:  Contact{ID: "1", Properties: map[string]any{"firstname": "A", "email": "a@b.c"}},
			wantName: "A",
			wantURL:  ptr("https://app.hubspot.com/contacts/1"),
		},
		{
			name:     "Email Fallback",
			contact:  Contact{ID: "2", Properties: map[string]any{"email": "x@y.com"}},
			wantName: "x@y.com",
			wantURL:  ptr("https://app.hubspot.com/contacts/2"),
		},
		{
			name:     "Null Properties",
			contact:  Contact{ID: "4", Properties: map[string]any{"firstname": nil, "lastname": nil, "email": nil}},
			wantName: "Contact 4",
			wantURL:  ptr("https://app.hubspot.com/contacts/4"),
		},
		{
			name:     "Id Fallback",
			contact:  Contact{ID: "3"},
			wantName: "Contact 3",
			wantURL:  ptr("https://app.hubspot.com/contacts/3"),
		},
		{
			name:     "No Id",
			contact:  Contact{},
			wantName: "Contact Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := Normalize(tt.contact, ItemTypeContact)
			assert.Equal(t, tt.wantName, item.Name)
			assert.Equal(t, ItemTypeContact, item.Type)
			assert.Equal(t, tt.wantURL, item.URL)
			if tt.contact.ID == "" {
				assert.Nil(t, item.ID)
			} else {
				assert.Equal(t, tt.contact.ID, models.StringValue(item.ID))
			}
		})
	}
}

func TestNormalize_Timestamps(t *testing.T) {
	item := Normalize(Contact{ID: "1", CreatedAt: "2024-01-01T00:00:00Z"}, "Contact")
	assert.Equal(t, "2024-01-01T00:00:00Z", models.StringValue(item.CreationTime))
	assert.Nil(t, item.LastModifiedTime)
}

func TestNormalize_AppBaseURL(t *testing.T) {
	item := normalize(Contact{ID: "9"}, ItemTypeContact, "https://app-eu1.hubspot.com/")
	assert.Equal(t, "https://app-eu1.hubspot.com/contacts/9", models.StringValue(item.URL))
}

func TestContact_UnmarshalID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: `{"id":"151"}`, want: "151"},
		{raw: `{"id":151}`, want: "151"},
		{raw: `{"id":1.5e3}`, want: "1.5e3"},
		{raw: `{"id":null}`, want: ""},
		{raw: `{}`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var c Contact
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &c))
			assert.Equal(t, tt.want, c.ID)
		})
	}
}

func TestContact_UnmarshalKeepsOtherFields(t *testing.T) {
	var c Contact
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"properties":{"email":"a@b.c"},"createdAt":"2024-01-01T00:00:00Z","archived":true}`), &c))
	assert.Equal(t, "7", c.ID)
	assert.Equal(t, "a@b.c", c.Properties["email"])
	assert.Equal(t, "2024-01-01T00:00:00Z", c.CreatedAt)
	assert.True(t, c.Archived)
	assert.Equal(t, "https://app.hubspot.com/contacts/7", models.StringValue(Normalize(c, ItemTypeContact).URL))
}
