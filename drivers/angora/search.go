package angora

import (
	"context"
	"net/http"

	"github.com/EisenVault/evdms/internal/model"
	"github.com/EisenVault/evdms/internal/utils"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const searchPageSize = 100

// Search sends a structured query (free text gets a trailing wildcard,
// relevance-descending sort, capped page size) and partitions the flat result
// list by each entry's kind flags.
func (d *Angora) Search(ctx context.Context, query string) (*model.SearchResult, error) {
	body := searchRequest{
		Query: utils.NormalizeSearchTerm(query),
		Sort:  searchSort{Field: "score", Order: "desc"},
		Page:  1,
		Limit: searchPageSize,
	}

	var env envelope[searchData]
	err := d.t.request(ctx, http.MethodPost, "/api/search", func(r *resty.Request) {
		r.SetBody(body)
	}, &env)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "search", "query": query}).WithError(err).Error("search failed")
		return nil, err
	}

	result := &model.SearchResult{TotalItems: env.Data.Total}
	for i := range env.Data.Results {
		n := &env.Data.Results[i]
		switch {
		case n.IsDepartment:
			dept, merr := mapDepartment(n)
			if merr != nil {
				return nil, merr
			}
			result.Departments = append(result.Departments, *dept)
		case n.IsFolder:
			folder, merr := mapFolder(n)
			if merr != nil {
				return nil, merr
			}
			result.Folders = append(result.Folders, *folder)
		default:
			doc, merr := mapDocument(n)
			if merr != nil {
				return nil, merr
			}
			result.Documents = append(result.Documents, *doc)
		}
	}
	if result.TotalItems == 0 {
		result.TotalItems = int64(len(env.Data.Results))
	}
	d.log.WithFields(logrus.Fields{"op": "search", "query": query, "total": result.TotalItems}).Debug("search complete")
	return result, nil
}
