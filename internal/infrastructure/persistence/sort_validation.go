package persistence

import "strings"

// ValidateSortOrder normalizes a sort direction to ASC or DESC.
// Anything unrecognized falls back to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks the requested column against a whitelist.
// Sort fields are interpolated into ORDER BY clauses, so only
// whitelisted names ever reach the query.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	field := strings.TrimSpace(sortField)
	if field == "" || !allowedFields[field] {
		return defaultField
	}
	return field
}
