package alfresco

// Wire formats of the classic content-repository API. Entries arrive wrapped
// in entry/list envelopes; all fields are decoded defensively.

type entryWrap[T any] struct {
	Entry T `json:"entry"`
}

type listWrap[T any] struct {
	List struct {
		Entries    []entryWrap[T] `json:"entries"`
		Pagination pagination     `json:"pagination"`
	} `json:"list"`
}

type pagination struct {
	Count        int64 `json:"count"`
	HasMoreItems bool  `json:"hasMoreItems"`
	TotalItems   int64 `json:"totalItems"`
	SkipCount    int64 `json:"skipCount"`
	MaxItems     int64 `json:"maxItems"`
}

type errorEnvelope struct {
	Error struct {
		ErrorKey     string `json:"errorKey"`
		StatusCode   int    `json:"statusCode"`
		BriefSummary string `json:"briefSummary"`
	} `json:"error"`
}

type ticketRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type ticketEntry struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
}

type personEntry struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

type userInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type contentInfo struct {
	MimeType    string `json:"mimeType"`
	SizeInBytes int64  `json:"sizeInBytes"`
}

type pathInfo struct {
	Name string `json:"name"`
}

type nodeEntry struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	NodeType            string         `json:"nodeType"`
	IsFolder            bool           `json:"isFolder"`
	IsFile              bool           `json:"isFile"`
	ParentID            string         `json:"parentId"`
	CreatedAt           string         `json:"createdAt"`
	ModifiedAt          string         `json:"modifiedAt"`
	CreatedByUser       userInfo       `json:"createdByUser"`
	ModifiedByUser      userInfo       `json:"modifiedByUser"`
	Content             contentInfo    `json:"content"`
	Path                pathInfo       `json:"path"`
	AllowableOperations []string       `json:"allowableOperations"`
	Properties          map[string]any `json:"properties"`
}

type siteEntry struct {
	ID          string `json:"id"`
	GUID        string `json:"guid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

type containerEntry struct {
	ID       string `json:"id"`
	FolderID string `json:"folderId"`
}

type createNodeRequest struct {
	Name     string `json:"name"`
	NodeType string `json:"nodeType"`
}

type updateNodeRequest struct {
	Properties map[string]any `json:"properties"`
}

type searchRequest struct {
	Query   searchQuery   `json:"query"`
	Paging  searchPaging  `json:"paging"`
	Sort    []searchSort  `json:"sort"`
	Include []string      `json:"include"`
	Filters []searchQuery `json:"filterQueries,omitempty"`
}

type searchQuery struct {
	Query    string `json:"query"`
	Language string `json:"language,omitempty"`
}

type searchPaging struct {
	MaxItems  int `json:"maxItems"`
	SkipCount int `json:"skipCount"`
}

type searchSort struct {
	Type      string `json:"type"`
	Field     string `json:"field"`
	Ascending bool   `json:"ascending"`
}
