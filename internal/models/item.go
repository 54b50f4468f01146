package models

// IntegrationItem is the vendor-neutral representation of a CRM record.
// Nullable fields are pointers so they serialize as JSON null.
type IntegrationItem struct {
	ID               *string `json:"id" yaml:"id"`
	Name             string  `json:"name" yaml:"name"`
	Type             string  `json:"type" yaml:"type"`
	CreationTime     *string `json:"creation_time" yaml:"creation_time"`
	LastModifiedTime *string `json:"last_modified_time" yaml:"last_modified_time"`
	URL              *string `json:"url" yaml:"url"`
}

// StringValue dereferences a nullable field, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
