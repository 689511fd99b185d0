package alfresco

// Pure translation from repository wire shapes into the uniform model.
// Departments do not exist in this backend; sites are mapped into them here
// and nowhere else, so the difference never leaks to callers.

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
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Now()
}

func baseItem(n *nodeEntry, typ model.ItemType) model.BrowseItem {
	name := n.Name
	if name == "" {
		name = n.ID
	}
	path := n.Path.Name
	if path != "" {
		path = path + "/" + name
	}
	mime := ""
	var size int64
	if typ == model.TypeFile {
		mime = n.Content.MimeType
		if mime == "" {
			mime = model.DefaultMimeType
		}
		size = n.Content.SizeInBytes
	}
	ops := n.AllowableOperations
	if ops == nil {
		ops = []string{}
	}
	return model.BrowseItem{
		ID:                  n.ID,
		Name:                name,
		Path:                path,
		Type:                typ,
		IsFolder:            typ == model.TypeFolder,
		IsDepartment:        false,
		MimeType:            mime,
		Size:                size,
		CreatedAt:           parseTime(n.CreatedAt),
		ModifiedAt:          parseTime(n.ModifiedAt),
		CreatedBy:           userName(n.CreatedByUser),
		ModifiedBy:          userName(n.ModifiedByUser),
		AllowableOperations: ops,
	}
}

func userName(u userInfo) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

func mapDocument(n *nodeEntry) (*model.Document, error) {
	if n == nil || n.ID == "" {
		return nil, errors.Wrap(errs.Mapping, "node entry missing")
	}
	return &model.Document{BrowseItem: baseItem(n, model.TypeFile)}, nil
}

func mapFolder(n *nodeEntry) (*model.Folder, error) {
	if n == nil || n.ID == "" {
		return nil, errors.Wrap(errs.Mapping, "node entry missing")
	}
	return &model.Folder{
		BrowseItem: baseItem(n, model.TypeFolder),
		ParentID:   n.ParentID,
	}, nil
}

// mapSiteDepartment synthesizes a department from a site container.
func mapSiteDepartment(s *siteEntry) (*model.Department, error) {
	if s == nil || s.ID == "" {
		return nil, errors.Wrap(errs.Mapping, "site entry missing")
	}
	name := s.Title
	if name == "" {
		name = s.ID
	}
	return &model.Department{
		BrowseItem: model.BrowseItem{
			ID:                  s.ID,
			Name:                name,
			Path:                "/Sites/" + s.ID,
			Type:                model.TypeDepartment,
			IsDepartment:        true,
			CreatedAt:           time.Now(),
			ModifiedAt:          time.Now(),
			AllowableOperations: []string{},
		},
		Description:     s.Description,
		ParentPath:      "/Sites",
		MaterializePath: "/Sites/" + s.ID,
	}, nil
}

func mapPerson(p personEntry) model.UserProfile {
	u := model.UserProfile{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Username:    p.ID,
	}
	u.FillDisplayName()
	return u
}
