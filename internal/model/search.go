package model

// SearchResult partitions a flat backend result list by item kind.
type SearchResult struct {
	Documents   []Document   `json:"documents"`
	Folders     []Folder     `json:"folders"`
	Departments []Department `json:"departments,omitempty"`
	TotalItems  int64        `json:"totalItems"`
}

// FolderFilters narrows a folder listing. Zero values mean backend defaults.
type FolderFilters struct {
	MaxItems  int
	SkipCount int
	OrderBy   string
}
