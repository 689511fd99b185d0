package alfresco

import (
	"context"
	"net/http"

	"github.com/EisenVault/evdms/internal/model"
	"github.com/EisenVault/evdms/internal/utils"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const searchPageSize = 100

// Search issues an AFTS query: free text gets a trailing wildcard, results
// sort by relevance score descending, and the flat list is partitioned by
// each entry's folder flag.
func (d *Alfresco) Search(ctx context.Context, query string) (*model.SearchResult, error) {
	body := searchRequest{
		Query: searchQuery{
			Query:    utils.NormalizeSearchTerm(query),
			Language: "afts",
		},
		Paging: searchPaging{MaxItems: searchPageSize, SkipCount: 0},
		Sort: []searchSort{
			{Type: "SCORE", Field: "score", Ascending: false},
		},
		Include: []string{"path", "properties", "allowableOperations"},
	}

	var list listWrap[nodeEntry]
	err := d.t.request(ctx, http.MethodPost, searchPath+"/search", func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}, &list)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "search", "query": query}).WithError(err).Error("search failed")
		return nil, err
	}

	result := &model.SearchResult{TotalItems: list.List.Pagination.TotalItems}
	for i := range list.List.Entries {
		n := &list.List.Entries[i].Entry
		if n.IsFolder {
			folder, merr := mapFolder(n)
			if merr != nil {
				return nil, merr
			}
			result.Folders = append(result.Folders, *folder)
			continue
		}
		doc, merr := mapDocument(n)
		if merr != nil {
			return nil, merr
		}
		result.Documents = append(result.Documents, *doc)
	}
	if result.TotalItems == 0 {
		result.TotalItems = int64(len(list.List.Entries))
	}
	d.log.WithFields(logrus.Fields{"op": "search", "query": query, "total": result.TotalItems}).Debug("search complete")
	return result, nil
}
