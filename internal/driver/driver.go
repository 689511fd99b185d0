// Package driver defines the uniform provider contract and the registry
// through which concrete backends are constructed.
package driver

import (
	"context"

	"github.com/EisenVault/evdms/internal/model"
)

// DMSProvider is the single surface the rest of the application talks to.
// One instance adapts one backend; instances share no state. Every data
// operation requires a prior successful Login or SetToken and fails with an
// authentication error otherwise.
type DMSProvider interface {
	// Login exchanges credentials for a token and a user profile. Profile
	// enrichment is best-effort: a degraded profile is returned rather than
	// failing a login the backend accepted.
	Login(ctx context.Context, username, password string) (*model.AuthResponse, error)

	// Logout invalidates the session remotely on a best-effort basis and
	// always clears the local token.
	Logout(ctx context.Context) error

	// SetToken replaces the credential used by subsequent calls. An empty
	// string clears it. Synchronous, no network.
	SetToken(token string)
	GetToken() string
	IsAuthenticated() bool

	GetDepartments(ctx context.Context) ([]model.Department, error)
	GetDepartment(ctx context.Context, id string) (*model.Department, error)

	GetFolders(ctx context.Context, parentID string, filters *model.FolderFilters) ([]model.Folder, error)
	GetDocuments(ctx context.Context, folderID string) ([]model.Document, error)
	GetDocument(ctx context.Context, id string) (*model.Document, error)

	// GetChildren lists a parent polymorphically: department children when
	// parent.IsDepartment, folder children otherwise. Folders sort before
	// documents, each group in natural name order.
	GetChildren(ctx context.Context, parent model.BrowseItem) ([]model.BrowseItem, error)

	UploadDocument(ctx context.Context, folderID string, file model.FileUpload) (*model.Document, error)
	DownloadDocument(ctx context.Context, id string) ([]byte, error)
	GetDocumentContent(ctx context.Context, id string) (string, error)
	DeleteDocument(ctx context.Context, id string) error
	UpdateDocument(ctx context.Context, id string, props map[string]any) (*model.Document, error)

	CreateFolder(ctx context.Context, parentID, name string) (*model.Folder, error)
	DeleteFolder(ctx context.Context, id string) error

	Search(ctx context.Context, query string) (*model.SearchResult, error)
}

// Config is the static metadata a driver registers itself with.
type Config struct {
	Name        string
	DisplayName string
	// DefaultRoot is the backend token the synthetic parent id "root"
	// normalizes to.
	DefaultRoot string
}
