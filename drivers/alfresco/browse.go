package alfresco

import (
	"context"
	"net/http"
	"strconv"

	"github.com/EisenVault/evdms/internal/model"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	sidePayload  = "path,properties,allowableOperations"
	sitePageSize = 100
)

// rootID normalizes the synthetic "root" parent to the repository root token.
func rootID(parentID string) string {
	if parentID == "" || parentID == "root" {
		return config.DefaultRoot
	}
	return parentID
}

// GetDepartments pages through the sites listing and synthesizes departments
// from it. Callers never see the site concept.
func (d *Alfresco) GetDepartments(ctx context.Context) ([]model.Department, error) {
	var out []model.Department
	for skip := 0; ; skip += sitePageSize {
		var list listWrap[siteEntry]
		err := d.t.request(ctx, http.MethodGet, corePath+"/sites", func(r *resty.Request) {
			r.SetQueryParams(map[string]string{
				"skipCount": strconv.Itoa(skip),
				"maxItems":  strconv.Itoa(sitePageSize),
			})
		}, &list)
		if err != nil {
			d.log.WithField("op", "getDepartments").WithError(err).Error("site listing failed")
			return nil, err
		}
		for i := range list.List.Entries {
			dept, merr := mapSiteDepartment(&list.List.Entries[i].Entry)
			if merr != nil {
				return nil, merr
			}
			out = append(out, *dept)
		}
		if !list.List.Pagination.HasMoreItems {
			break
		}
	}
	d.log.WithFields(logrus.Fields{"op": "getDepartments", "count": len(out)}).Debug("departments listed")
	return out, nil
}

func (d *Alfresco) GetDepartment(ctx context.Context, id string) (*model.Department, error) {
	var env entryWrap[siteEntry]
	if err := d.t.request(ctx, http.MethodGet, corePath+"/sites/"+id, nil, &env); err != nil {
		d.log.WithFields(logrus.Fields{"op": "getDepartment", "id": id}).WithError(err).Error("site fetch failed")
		return nil, err
	}
	return mapSiteDepartment(&env.Entry)
}

// documentLibraryID resolves a site to its documentLibrary container node,
// the actual parent of everything inside a synthesized department.
func (d *Alfresco) documentLibraryID(ctx context.Context, siteID string) (string, error) {
	d.mu.Lock()
	if id, ok := d.docLibs[siteID]; ok {
		d.mu.Unlock()
		return id, nil
	}
	d.mu.Unlock()

	var env entryWrap[containerEntry]
	err := d.t.request(ctx, http.MethodGet, corePath+"/sites/"+siteID+"/containers/documentLibrary", nil, &env)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	d.docLibs[siteID] = env.Entry.ID
	d.mu.Unlock()
	return env.Entry.ID, nil
}

func (d *Alfresco) listChildren(ctx context.Context, parentID, where string, filters *model.FolderFilters) ([]nodeEntry, error) {
	var list listWrap[nodeEntry]
	err := d.t.request(ctx, http.MethodGet, corePath+"/nodes/"+parentID+"/children", func(r *resty.Request) {
		r.SetQueryParam("include", sidePayload)
		if where != "" {
			r.SetQueryParam("where", where)
		}
		if filters == nil {
			return
		}
		if filters.MaxItems > 0 {
			r.SetQueryParam("maxItems", strconv.Itoa(filters.MaxItems))
		}
		if filters.SkipCount > 0 {
			r.SetQueryParam("skipCount", strconv.Itoa(filters.SkipCount))
		}
		if filters.OrderBy != "" {
			r.SetQueryParam("orderBy", filters.OrderBy)
		}
	}, &list)
	if err != nil {
		return nil, err
	}
	nodes := make([]nodeEntry, 0, len(list.List.Entries))
	for _, e := range list.List.Entries {
		nodes = append(nodes, e.Entry)
	}
	return nodes, nil
}

func (d *Alfresco) GetFolders(ctx context.Context, parentID string, filters *model.FolderFilters) ([]model.Folder, error) {
	nodes, err := d.listChildren(ctx, rootID(parentID), "(isFolder=true)", filters)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "getFolders", "parent": parentID}).WithError(err).Error("folder listing failed")
		return nil, err
	}
	folders := make([]model.Folder, 0, len(nodes))
	for i := range nodes {
		f, merr := mapFolder(&nodes[i])
		if merr != nil {
			return nil, merr
		}
		folders = append(folders, *f)
	}
	return folders, nil
}

func (d *Alfresco) GetDocuments(ctx context.Context, folderID string) ([]model.Document, error) {
	nodes, err := d.listChildren(ctx, rootID(folderID), "(isFile=true)", nil)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "getDocuments", "folder": folderID}).WithError(err).Error("document listing failed")
		return nil, err
	}
	docs := make([]model.Document, 0, len(nodes))
	for i := range nodes {
		doc, merr := mapDocument(&nodes[i])
		if merr != nil {
			return nil, merr
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (d *Alfresco) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var env entryWrap[nodeEntry]
	err := d.t.request(ctx, http.MethodGet, corePath+"/nodes/"+id, func(r *resty.Request) {
		r.SetQueryParam("include", sidePayload)
	}, &env)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "getDocument", "id": id}).WithError(err).Error("document fetch failed")
		return nil, err
	}
	return mapDocument(&env.Entry)
}

// GetChildren lists a parent polymorphically. A department resolves to its
// site's documentLibrary node first; everything else lists directly.
func (d *Alfresco) GetChildren(ctx context.Context, parent model.BrowseItem) ([]model.BrowseItem, error) {
	parentID := rootID(parent.ID)
	if parent.IsDepartment {
		libID, err := d.documentLibraryID(ctx, parent.ID)
		if err != nil {
			d.log.WithFields(logrus.Fields{"op": "getChildren", "department": parent.ID}).WithError(err).Error("container resolution failed")
			return nil, err
		}
		parentID = libID
	}
	nodes, err := d.listChildren(ctx, parentID, "", nil)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "getChildren", "parent": parent.ID}).WithError(err).Error("children listing failed")
		return nil, err
	}
	items := make([]model.BrowseItem, 0, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if n.IsFolder {
			f, merr := mapFolder(n)
			if merr != nil {
				return nil, merr
			}
			items = append(items, f.Item())
			continue
		}
		doc, merr := mapDocument(n)
		if merr != nil {
			return nil, merr
		}
		items = append(items, doc.Item())
	}
	model.SortItems(items)
	return items, nil
}
