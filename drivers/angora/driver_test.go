package angora

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/EisenVault/evdms/internal/conf"
	"github.com/EisenVault/evdms/internal/errs"
	"github.com/EisenVault/evdms/internal/model"
	"github.com/EisenVault/evdms/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestProvider(t *testing.T, handler http.Handler) *Angora {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := New(conf.Api{BaseURL: srv.URL, Timeout: 5 * time.Second}, testLogger())
	require.NoError(t, err)
	return p.(*Angora)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body, _ := utils.Json.Marshal(v)
	w.Write(body)
}

func loginHandler(mux *http.ServeMux, token, refresh string) {
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		body, _ := io.ReadAll(r.Body)
		_ = utils.Json.Unmarshal(body, &req)
		if req.Password != "pw" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": map[string]string{"message": "invalid credentials"},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"token":         token,
			"refresh_token": refresh,
		}})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"id": "u1", "first_name": "Alice", "last_name": "Smith", "email": "alice@example.com",
		}})
	})
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux, "tok1", "rt1")
	p := newTestProvider(t, mux)

	auth, err := p.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok1", auth.Token)
	assert.Equal(t, "u1", auth.User.ID)
	assert.Equal(t, "Alice Smith", auth.User.DisplayName)
	assert.True(t, p.IsAuthenticated())
}

func TestLoginBadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux, "tok1", "rt1")
	p := newTestProvider(t, mux)

	_, err := p.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.True(t, errs.IsAuthentication(err))
	assert.Contains(t, err.Error(), "invalid credentials")
	assert.False(t, p.IsAuthenticated())
}

func TestLoginDegradedProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"token": "tok1", "refresh_token": "rt1",
		}})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "boom"})
	})
	p := newTestProvider(t, mux)

	auth, err := p.Login(context.Background(), "alice", "pw")
	require.NoError(t, err, "login succeeds even when enrichment fails")
	assert.Equal(t, "alice", auth.User.ID)
	assert.Equal(t, "alice", auth.User.DisplayName)
	assert.True(t, p.IsAuthenticated())
}

func TestUnauthenticatedCallFailsFast(t *testing.T) {
	var hit atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		hit.Store(true)
	})
	p := newTestProvider(t, mux)

	_, err := p.GetDepartments(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsAuthentication(err))
	assert.False(t, hit.Load(), "no request may be sent without a token")
}

func TestSetTokenEnablesCalls(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/files/f1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer external", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "f1", "name": "a.pdf"}})
	})
	p := newTestProvider(t, mux)
	p.SetToken("external")

	doc, err := p.GetDocument(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", doc.ID)

	p.SetToken("")
	assert.False(t, p.IsAuthenticated())
}

func TestGetDepartments(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux, "tok1", "rt1")
	mux.HandleFunc("GET /api/departments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, portalName, r.Header.Get(headerPortal))
		assert.Equal(t, serviceName, r.Header.Get(headerService))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"departments": []map[string]any{
				{"id": "d1", "name": "Legal", "is_department": true, "description": "contracts"},
				{"id": "x1", "name": "not a department", "is_department": false},
				{"id": "d2", "name": "Finance", "is_department": true},
			},
			"total": 3,
		}})
	})
	p := newTestProvider(t, mux)
	_, err := p.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	depts, err := p.GetDepartments(context.Background())
	require.NoError(t, err)
	require.Len(t, depts, 2, "entries without the department flag are skipped")
	for _, dep := range depts {
		assert.True(t, dep.IsDepartment)
		assert.Equal(t, model.TypeDepartment, dep.Type)
	}
	assert.Equal(t, "contracts", depts[0].Description)
}

func TestGetChildrenSortsFoldersFirst(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/folders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "d1", r.URL.Query().Get("parent_id"))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"folders": []map[string]any{
				{"id": "fo10", "name": "chapter10", "is_folder": true},
				{"id": "fo2", "name": "chapter2", "is_folder": true},
			},
		}})
	})
	mux.HandleFunc("GET /api/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "d1", r.URL.Query().Get("folder_id"))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"files": []map[string]any{
				{"id": "f1", "name": "agenda.pdf", "size": 10},
			},
		}})
	})
	p := newTestProvider(t, mux)
	p.SetToken("tok")

	dept := model.Department{BrowseItem: model.BrowseItem{ID: "d1", IsDepartment: true, Type: model.TypeDepartment}}
	items, err := p.GetChildren(context.Background(), dept.Item())
	require.NoError(t, err)
	require.Len(t, items, 3)
	// Natural order: chapter2 before chapter10, folders before files.
	assert.Equal(t, "chapter2", items[0].Name)
	assert.Equal(t, "chapter10", items[1].Name)
	assert.Equal(t, "agenda.pdf", items[2].Name)

	folder, ok := items[0].AsFolder()
	require.True(t, ok)
	assert.Equal(t, items[0].ID, folder.ID)
}

func TestSingleFlightRefresh(t *testing.T) {
	const workers = 8
	var refreshes, fetches atomic.Int32
	var mu sync.Mutex
	current := "tok1"

	mux := http.NewServeMux()
	loginHandler(mux, "tok1", "rt1")
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		time.Sleep(200 * time.Millisecond)
		mu.Lock()
		current = "tok2"
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"token": "tok2", "refresh_token": "rt2",
		}})
	})
	mux.HandleFunc("GET /api/files/f1", func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		mu.Lock()
		want := "Bearer " + current
		mu.Unlock()
		if r.Header.Get("Authorization") != want || want == "Bearer tok1" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "token expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "f1", "name": "a.pdf"}})
	})

	p := newTestProvider(t, mux)
	_, err := p.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.GetDocument(context.Background(), "f1")
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err, "every caller completes with the refreshed token")
	}
	assert.Equal(t, int32(1), refreshes.Load(), "exactly one refresh request")
	assert.Equal(t, "tok2", p.GetToken())
}

func TestRefreshFailureClearsSessionAndPropagates401(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux, "tok1", "rt1")
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "refresh token revoked"})
	})
	mux.HandleFunc("GET /api/files/f1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "token expired"})
	})
	p := newTestProvider(t, mux)
	_, err := p.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	_, err = p.GetDocument(context.Background(), "f1")
	require.Error(t, err)
	assert.True(t, errs.IsAuthentication(err))
	assert.Contains(t, err.Error(), "token expired", "the original 401 propagates")
	assert.False(t, p.IsAuthenticated())
}

func TestLogoutAlwaysClearsLocally(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux, "tok1", "")
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "backend down"})
	})
	p := newTestProvider(t, mux)
	_, err := p.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	require.NoError(t, p.Logout(context.Background()), "remote failure does not propagate")
	assert.False(t, p.IsAuthenticated())
}

func TestUploadRejectsEmptyFileBeforeRequest(t *testing.T) {
	var hit atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hit.Store(true) })
	p := newTestProvider(t, mux)
	p.SetToken("tok")

	_, err := p.UploadDocument(context.Background(), "fo1", model.FileUpload{
		Name: "empty.txt", Size: 0, Reader: strings.NewReader(""),
	})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.False(t, hit.Load(), "no request may be sent for an empty upload")
}

func TestUploadSendsResumableHeaders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/files/upload", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("x-file-id"))
		assert.Equal(t, "0", r.Header.Get("x-start-byte"))
		assert.Equal(t, "5", r.Header.Get("x-total-size"))
		assert.Equal(t, "fo1", r.Header.Get("x-parent-id"))
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "notes.txt", hdr.Filename)
		body, _ := io.ReadAll(f)
		assert.Equal(t, "hello", string(body))

		writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]any{
			"id": "f9", "name": "notes.txt", "size": 5, "mime_type": "text/plain",
		}})
	})
	p := newTestProvider(t, mux)
	p.SetToken("tok")

	doc, err := p.UploadDocument(context.Background(), "fo1", model.FileUpload{
		Name: "notes.txt", Size: 5, Reader: strings.NewReader("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "f9", doc.ID)
	assert.Equal(t, "text/plain", doc.MimeType)
}

func TestResumeUploadContinuesFromOffset(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/files/upload", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fixed-id", r.Header.Get("x-file-id"))
		assert.Equal(t, "3", r.Header.Get("x-start-byte"))
		assert.Equal(t, "5", r.Header.Get("x-total-size"))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "f9", "name": "notes.txt"}})
	})
	p := newTestProvider(t, mux)
	p.SetToken("tok")

	session := UploadSession{FileID: "fixed-id", ParentID: "fo1", StartByte: 3, TotalSize: 5}
	_, err := p.ResumeUpload(context.Background(), session, model.FileUpload{
		Name: "notes.txt", Size: 2, Reader: strings.NewReader("lo"),
	})
	require.NoError(t, err)
}

func TestUploadRewindsBodyOnRefreshRetry(t *testing.T) {
	var uploads, refreshes atomic.Int32
	mux := http.NewServeMux()
	loginHandler(mux, "tok1", "rt1")
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"token": "tok2", "refresh_token": "rt2",
		}})
	})
	mux.HandleFunc("POST /api/files/upload", func(w http.ResponseWriter, r *http.Request) {
		if uploads.Add(1) == 1 {
			// Drain the body so the client reader is fully consumed
			// before the 401 comes back.
			io.Copy(io.Discard, r.Body)
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "token expired"})
			return
		}
		assert.Equal(t, "Bearer tok2", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "hello", string(body), "the retried attempt carries the full body")
		writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]any{
			"id": "f9", "name": "notes.txt", "size": 5,
		}})
	})
	p := newTestProvider(t, mux)
	_, err := p.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	doc, err := p.UploadDocument(context.Background(), "fo1", model.FileUpload{
		Name: "notes.txt", Size: 5, Reader: strings.NewReader("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "f9", doc.ID)
	assert.Equal(t, int32(2), uploads.Load())
	assert.Equal(t, int32(1), refreshes.Load())
}

func TestUploadUnseekableBodySkipsRetryAfterRefresh(t *testing.T) {
	var uploads atomic.Int32
	mux := http.NewServeMux()
	loginHandler(mux, "tok1", "rt1")
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"token": "tok2", "refresh_token": "rt2",
		}})
	})
	mux.HandleFunc("POST /api/files/upload", func(w http.ResponseWriter, r *http.Request) {
		uploads.Add(1)
		io.Copy(io.Discard, r.Body)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "token expired"})
	})
	p := newTestProvider(t, mux)
	_, err := p.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	// io.MultiReader hides the Seek method, so the drained body cannot be
	// rewound and the 401 must surface instead of a corrupted retry.
	_, err = p.UploadDocument(context.Background(), "fo1", model.FileUpload{
		Name: "notes.txt", Size: 5, Reader: io.MultiReader(strings.NewReader("hello")),
	})
	require.Error(t, err)
	assert.True(t, errs.IsAuthentication(err))
	assert.Equal(t, int32(1), uploads.Load(), "a drained body is never resent")
	assert.Equal(t, "tok2", p.GetToken(), "the session still refreshes so a resume can proceed")
}

func TestRetrySkipsRefreshWhenTokenAlreadyRotated(t *testing.T) {
	var refreshes atomic.Int32
	var p *Angora
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"token": "tok3", "refresh_token": "rt3",
		}})
	})
	mux.HandleFunc("GET /api/files/f1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer tok1" {
			// Another caller rotated the pair while this request was
			// in flight.
			p.t.SetTokens("tok2", "rt2")
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "token expired"})
			return
		}
		assert.Equal(t, "Bearer tok2", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "f1", "name": "a.pdf"}})
	})
	p = newTestProvider(t, mux)
	p.t.SetTokens("tok1", "rt1")

	doc, err := p.GetDocument(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", doc.ID)
	assert.Equal(t, int32(0), refreshes.Load(), "the rotated token is reused without another refresh")
	assert.Equal(t, "tok2", p.GetToken())
}

func TestSearchNormalizesFreeText(t *testing.T) {
	var sent searchRequest
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/search", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, utils.Json.Unmarshal(body, &sent))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"results": []map[string]any{
				{"id": "f1", "name": "report.docx"},
				{"id": "fo1", "name": "reports", "is_folder": true},
			},
			"total": 2,
		}})
	})
	p := newTestProvider(t, mux)
	p.SetToken("tok")

	result, err := p.Search(context.Background(), "report")
	require.NoError(t, err)
	assert.Equal(t, "report*", sent.Query, "free text gets a trailing wildcard")
	assert.Equal(t, "score", sent.Sort.Field)
	assert.Equal(t, "desc", sent.Sort.Order)
	assert.Len(t, result.Documents, 1)
	assert.Len(t, result.Folders, 1)
	assert.Equal(t, int64(2), result.TotalItems)

	_, err = p.Search(context.Background(), "cm:name:report")
	require.NoError(t, err)
	assert.Equal(t, "cm:name:report", sent.Query, "explicit query syntax passes through")
}

func TestTimeoutSurfacesAsTimeoutError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/files/f1", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "f1"}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	p, err := New(conf.Api{BaseURL: srv.URL, Timeout: 30 * time.Millisecond}, testLogger())
	require.NoError(t, err)
	p.SetToken("tok")

	_, err = p.GetDocument(context.Background(), "f1")
	require.Error(t, err)
	assert.True(t, errs.IsTimeout(err))
}

func TestDownloadAndContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/files/f1/download", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("binary-payload"))
	})
	p := newTestProvider(t, mux)
	p.SetToken("tok")

	body, err := p.DownloadDocument(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "binary-payload", string(body))

	b64, err := p.GetDocumentContent(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "YmluYXJ5LXBheWxvYWQ=", b64)
}

func TestEmptyBodyIsResponseFormatError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/files/f1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	p := newTestProvider(t, mux)
	p.SetToken("tok")

	_, err := p.GetDocument(context.Background(), "f1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ResponseFormat)
}
