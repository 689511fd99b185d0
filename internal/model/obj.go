package model

import "time"

// ItemType tags a BrowseItem with its concrete kind.
type ItemType string

const (
	TypeFile       ItemType = "file"
	TypeFolder     ItemType = "folder"
	TypeDepartment ItemType = "department"
)

// DefaultMimeType is used when a backend omits the content type of a document.
const DefaultMimeType = "application/octet-stream"

// BrowseItem is the uniform supertype for anything listable: a document, a
// folder, or a department. Data carries the fully typed record (*Document,
// *Folder or *Department) whose ID and Type always match the item's own, so
// generic list rendering and type-specific access work off the same value.
type BrowseItem struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Path                string    `json:"path"`
	Type                ItemType  `json:"type"`
	IsFolder            bool      `json:"isFolder"`
	IsDepartment        bool      `json:"isDepartment"`
	MimeType            string    `json:"mimeType"`
	Size                int64     `json:"size"`
	CreatedAt           time.Time `json:"createdAt"`
	ModifiedAt          time.Time `json:"lastModified"`
	CreatedBy           string    `json:"createdBy"`
	ModifiedBy          string    `json:"modifiedBy"`
	AllowableOperations []string  `json:"allowableOperations"`
	Data                any       `json:"-"`
}

// Document is a file node. IsOfflineAvailable is client-side cache state,
// never reported by a backend.
type Document struct {
	BrowseItem
	IsOfflineAvailable bool `json:"isOfflineAvailable"`
}

// Folder is a container node. ParentID is empty only at the department
// boundary.
type Folder struct {
	BrowseItem
	ParentID string `json:"parentId"`
}

// Department is a top-level organizational container. The modern backend
// exposes these natively; the classic backend synthesizes them from sites.
type Department struct {
	BrowseItem
	Description     string `json:"description"`
	ParentPath      string `json:"parentPath"`
	MaterializePath string `json:"materializePath"`
}

// Item wraps the document in its BrowseItem envelope with Data pointing at
// the already-built record.
func (d *Document) Item() BrowseItem {
	it := d.BrowseItem
	it.Data = d
	return it
}

// Item wraps the folder in its BrowseItem envelope.
func (f *Folder) Item() BrowseItem {
	it := f.BrowseItem
	it.Data = f
	return it
}

// Item wraps the department in its BrowseItem envelope.
func (dp *Department) Item() BrowseItem {
	it := dp.BrowseItem
	it.Data = dp
	return it
}

// AsDocument returns the typed record when the item is a file.
func (b BrowseItem) AsDocument() (*Document, bool) {
	d, ok := b.Data.(*Document)
	return d, ok
}

// AsFolder returns the typed record when the item is a folder.
func (b BrowseItem) AsFolder() (*Folder, bool) {
	f, ok := b.Data.(*Folder)
	return f, ok
}

// AsDepartment returns the typed record when the item is a department.
func (b BrowseItem) AsDepartment() (*Department, bool) {
	d, ok := b.Data.(*Department)
	return d, ok
}
