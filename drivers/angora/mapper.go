package angora

// Pure translation from Angora wire shapes into the uniform model. Every
// optional backend field gets a safe default; the uniform model never carries
// an absent field.

import (
	"time"

	"github.com/EisenVault/evdms/internal/errs"
	"github.com/EisenVault/evdms/internal/model"
	"github.com/pkg/errors"
)

func parseTime(s string) time.Time {
	if s == "" {
		return time.Now()
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Now()
}

func baseItem(n *wireNode, typ model.ItemType) model.BrowseItem {
	name := n.Name
	if name == "" {
		name = n.ID
	}
	mime := ""
	if typ == model.TypeFile {
		mime = n.MimeType
		if mime == "" {
			mime = model.DefaultMimeType
		}
	}
	ops := n.Permissions
	if ops == nil {
		ops = []string{}
	}
	return model.BrowseItem{
		ID:                  n.ID,
		Name:                name,
		Path:                n.Path,
		Type:                typ,
		IsFolder:            typ == model.TypeFolder,
		IsDepartment:        typ == model.TypeDepartment,
		MimeType:            mime,
		Size:                n.Size,
		CreatedAt:           parseTime(n.CreatedAt),
		ModifiedAt:          parseTime(n.UpdatedAt),
		CreatedBy:           n.CreatedBy,
		ModifiedBy:          n.ModifiedBy,
		AllowableOperations: ops,
	}
}

func mapDocument(n *wireNode) (*model.Document, error) {
	if n == nil || n.ID == "" {
		return nil, errors.Wrap(errs.Mapping, "file entry missing")
	}
	return &model.Document{BrowseItem: baseItem(n, model.TypeFile)}, nil
}

func mapFolder(n *wireNode) (*model.Folder, error) {
	if n == nil || n.ID == "" {
		return nil, errors.Wrap(errs.Mapping, "folder entry missing")
	}
	return &model.Folder{
		BrowseItem: baseItem(n, model.TypeFolder),
		ParentID:   n.ParentID,
	}, nil
}

func mapDepartment(n *wireNode) (*model.Department, error) {
	if n == nil || n.ID == "" {
		return nil, errors.Wrap(errs.Mapping, "department entry missing")
	}
	return &model.Department{
		BrowseItem:      baseItem(n, model.TypeDepartment),
		Description:     n.Description,
		ParentPath:      n.ParentPath,
		MaterializePath: n.MaterializePath,
	}, nil
}

func mapUser(u wireUser) model.UserProfile {
	p := model.UserProfile{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Username:    u.Username,
	}
	if p.Username == "" {
		p.Username = p.ID
	}
	p.FillDisplayName()
	return p
}
