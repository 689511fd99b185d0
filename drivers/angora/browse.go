package angora

import (
	"context"
	"net/http"
	"strconv"

	"github.com/EisenVault/evdms/internal/model"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const departmentPageSize = 100

// rootID normalizes the synthetic "root" parent to the Angora top level,
// which is addressed by omitting the parent filter.
func rootID(parentID string) string {
	if parentID == "root" {
		return config.DefaultRoot
	}
	return parentID
}

// GetDepartments pages through the department listing. Entries the backend
// does not flag as departments are skipped.
func (d *Angora) GetDepartments(ctx context.Context) ([]model.Department, error) {
	var out []model.Department
	for page := 1; ; page++ {
		var env envelope[departmentList]
		err := d.t.request(ctx, http.MethodGet, "/api/departments", func(r *resty.Request) {
			r.SetQueryParams(map[string]string{
				"page":  strconv.Itoa(page),
				"limit": strconv.Itoa(departmentPageSize),
			})
		}, &env)
		if err != nil {
			d.log.WithField("op", "getDepartments").WithError(err).Error("department listing failed")
			return nil, err
		}
		for i := range env.Data.Departments {
			n := &env.Data.Departments[i]
			if !n.IsDepartment {
				continue
			}
			dept, merr := mapDepartment(n)
			if merr != nil {
				return nil, merr
			}
			out = append(out, *dept)
		}
		if len(env.Data.Departments) < departmentPageSize || int64(len(out)) >= env.Data.Total {
			break
		}
	}
	d.log.WithFields(logrus.Fields{"op": "getDepartments", "count": len(out)}).Debug("departments listed")
	return out, nil
}

func (d *Angora) GetDepartment(ctx context.Context, id string) (*model.Department, error) {
	var env envelope[wireNode]
	if err := d.t.request(ctx, http.MethodGet, "/api/departments/"+id, nil, &env); err != nil {
		d.log.WithFields(logrus.Fields{"op": "getDepartment", "id": id}).WithError(err).Error("department fetch failed")
		return nil, err
	}
	return mapDepartment(&env.Data)
}

func (d *Angora) GetFolders(ctx context.Context, parentID string, filters *model.FolderFilters) ([]model.Folder, error) {
	var env envelope[folderList]
	err := d.t.request(ctx, http.MethodGet, "/api/folders", func(r *resty.Request) {
		if pid := rootID(parentID); pid != "" {
			r.SetQueryParam("parent_id", pid)
		}
		if filters == nil {
			return
		}
		if filters.MaxItems > 0 {
			r.SetQueryParam("limit", strconv.Itoa(filters.MaxItems))
		}
		if filters.SkipCount > 0 {
			r.SetQueryParam("skip", strconv.Itoa(filters.SkipCount))
		}
		if filters.OrderBy != "" {
			r.SetQueryParam("order_by", filters.OrderBy)
		}
	}, &env)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "getFolders", "parent": parentID}).WithError(err).Error("folder listing failed")
		return nil, err
	}
	folders := make([]model.Folder, 0, len(env.Data.Folders))
	for i := range env.Data.Folders {
		f, merr := mapFolder(&env.Data.Folders[i])
		if merr != nil {
			return nil, merr
		}
		folders = append(folders, *f)
	}
	return folders, nil
}

func (d *Angora) GetDocuments(ctx context.Context, folderID string) ([]model.Document, error) {
	var env envelope[fileList]
	err := d.t.request(ctx, http.MethodGet, "/api/files", func(r *resty.Request) {
		if fid := rootID(folderID); fid != "" {
			r.SetQueryParam("folder_id", fid)
		}
	}, &env)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "getDocuments", "folder": folderID}).WithError(err).Error("document listing failed")
		return nil, err
	}
	docs := make([]model.Document, 0, len(env.Data.Files))
	for i := range env.Data.Files {
		doc, merr := mapDocument(&env.Data.Files[i])
		if merr != nil {
			return nil, merr
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (d *Angora) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var env envelope[wireNode]
	if err := d.t.request(ctx, http.MethodGet, "/api/files/"+id, nil, &env); err != nil {
		d.log.WithFields(logrus.Fields{"op": "getDocument", "id": id}).WithError(err).Error("document fetch failed")
		return nil, err
	}
	return mapDocument(&env.Data)
}

// GetChildren lists a parent polymorphically. Departments and folders both
// contain folders and files in Angora; the parent id is all that differs.
func (d *Angora) GetChildren(ctx context.Context, parent model.BrowseItem) ([]model.BrowseItem, error) {
	folders, err := d.GetFolders(ctx, parent.ID, nil)
	if err != nil {
		return nil, err
	}
	docs, err := d.GetDocuments(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	items := make([]model.BrowseItem, 0, len(folders)+len(docs))
	for i := range folders {
		items = append(items, folders[i].Item())
	}
	for i := range docs {
		items = append(items, docs[i].Item())
	}
	model.SortItems(items)
	return items, nil
}
