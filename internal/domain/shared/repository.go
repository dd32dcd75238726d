package shared

// Filter carries the listing options repositories understand: paging,
// sorting, free-text search, and field filters. Page and PageSize both
// positive enables paging; repositories validate OrderBy against their
// own column whitelist.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}
