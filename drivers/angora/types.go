package angora

// Wire formats of the Angora document-store API. Every field is decoded
// defensively; the mapper fills defaults for anything the backend omits.

type envelope[T any] struct {
	Data T `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
	Message string `json:"message"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginData struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
	User         wireUser `json:"user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshData struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type wireUser struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Username    string `json:"username"`
}

type wireNode struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Path            string   `json:"path"`
	ParentID        string   `json:"parent_id"`
	IsFolder        bool     `json:"is_folder"`
	IsDepartment    bool     `json:"is_department"`
	MimeType        string   `json:"mime_type"`
	Size            int64    `json:"size"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	CreatedBy       string   `json:"created_by"`
	ModifiedBy      string   `json:"modified_by"`
	Permissions     []string `json:"permissions"`
	Description     string   `json:"description"`
	ParentPath      string   `json:"parent_path"`
	MaterializePath string   `json:"materialize_path"`
}

type departmentList struct {
	Departments []wireNode `json:"departments"`
	Total       int64      `json:"total"`
}

type folderList struct {
	Folders []wireNode `json:"folders"`
}

type fileList struct {
	Files []wireNode `json:"files"`
}

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
}

type updateFileRequest struct {
	Properties map[string]any `json:"properties"`
}

type searchRequest struct {
	Query string     `json:"query"`
	Sort  searchSort `json:"sort"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

type searchSort struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

type searchData struct {
	Results []wireNode `json:"results"`
	Total   int64      `json:"total"`
}
