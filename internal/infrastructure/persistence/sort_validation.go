package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"email":         true,
	"full_name":     true,
	"role":          true,
	"department":    true,
	"is_active":     true,
	"last_login_at": true,
}

// ContactSortFields contains allowed sort fields for contacts
var ContactSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"type":         true,
	"company_name": true,
	"first_name":   true,
	"last_name":    true,
	"email":        true,
	"city":         true,
	"country":      true,
}

// DealSortFields contains allowed sort fields for deals
var DealSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"title":               true,
	"value":               true,
	"stage":               true,
	"probability":         true,
	"expected_close_date": true,
	"actual_close_date":   true,
}

// ProjectSortFields contains allowed sort fields for projects
var ProjectSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"status":     true,
	"priority":   true,
	"start_date": true,
	"due_date":   true,
	"budget":     true,
	"progress":   true,
}

// TaskSortFields contains allowed sort fields for tasks
var TaskSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"status":     true,
	"priority":   true,
	"due_date":   true,
}

// ActivitySortFields contains allowed sort fields for activity feed entries
var ActivitySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"type":       true,
}
