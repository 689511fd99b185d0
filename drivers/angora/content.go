package angora

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strconv"

	"github.com/EisenVault/evdms/internal/model"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UploadSession identifies a resumable transfer. FileID is synthesized
// client-side so a retry after an interrupted upload is idempotent.
type UploadSession struct {
	FileID    string
	ParentID  string
	StartByte int64
	TotalSize int64
}

// NewUploadSession starts a resumable session for a file destined for the
// given folder.
func NewUploadSession(folderID string, totalSize int64) UploadSession {
	return UploadSession{
		FileID:    uuid.NewString(),
		ParentID:  folderID,
		TotalSize: totalSize,
	}
}

func (d *Angora) UploadDocument(ctx context.Context, folderID string, file model.FileUpload) (*model.Document, error) {
	if err := file.Validate(); err != nil {
		return nil, err
	}
	session := NewUploadSession(rootID(folderID), file.Size)
	return d.upload(ctx, session, file)
}

// ResumeUpload continues an interrupted transfer from session.StartByte.
func (d *Angora) ResumeUpload(ctx context.Context, session UploadSession, file model.FileUpload) (*model.Document, error) {
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return d.upload(ctx, session, file)
}

func (d *Angora) upload(ctx context.Context, session UploadSession, file model.FileUpload) (*model.Document, error) {
	d.log.WithFields(logrus.Fields{
		"op": "uploadDocument", "folder": session.ParentID, "name": file.Name,
		"size": file.Size, "startByte": session.StartByte,
	}).Info("uploading document")

	build := func(r *resty.Request) {
		r.SetFileReader("file", file.Name, file.Reader).
			SetMultipartFormData(map[string]string{
				"relative_path": file.RelativePath,
			}).
			SetHeader("x-file-id", session.FileID).
			SetHeader("x-start-byte", strconv.FormatInt(session.StartByte, 10)).
			SetHeader("x-total-size", strconv.FormatInt(session.TotalSize, 10)).
			SetHeader("x-parent-id", session.ParentID)
	}

	// A first attempt drains the reader. Only a seekable body can be rewound
	// for the refresh retry; anything else propagates the 401 and the caller
	// continues with ResumeUpload.
	rearm := func() bool { return false }
	if seeker, ok := file.Reader.(io.Seeker); ok {
		if offset, serr := seeker.Seek(0, io.SeekCurrent); serr == nil {
			rearm = func() bool {
				_, rerr := seeker.Seek(offset, io.SeekStart)
				return rerr == nil
			}
		}
	}

	var env envelope[wireNode]
	err := d.t.requestStream(ctx, http.MethodPost, "/api/files/upload", build, rearm, &env)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "uploadDocument", "name": file.Name}).WithError(err).Error("upload failed")
		return nil, err
	}
	return mapDocument(&env.Data)
}

func (d *Angora) DownloadDocument(ctx context.Context, id string) ([]byte, error) {
	body, err := d.t.download(ctx, "/api/files/"+id+"/download")
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "downloadDocument", "id": id}).WithError(err).Error("download failed")
		return nil, err
	}
	return body, nil
}

func (d *Angora) GetDocumentContent(ctx context.Context, id string) (string, error) {
	body, err := d.DownloadDocument(ctx, id)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(body), nil
}

func (d *Angora) DeleteDocument(ctx context.Context, id string) error {
	if err := d.t.request(ctx, http.MethodDelete, "/api/files/"+id, nil, nil); err != nil {
		d.log.WithFields(logrus.Fields{"op": "deleteDocument", "id": id}).WithError(err).Error("delete failed")
		return err
	}
	return nil
}

func (d *Angora) UpdateDocument(ctx context.Context, id string, props map[string]any) (*model.Document, error) {
	var env envelope[wireNode]
	err := d.t.request(ctx, http.MethodPatch, "/api/files/"+id, func(r *resty.Request) {
		r.SetBody(updateFileRequest{Properties: props})
	}, &env)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "updateDocument", "id": id}).WithError(err).Error("update failed")
		return nil, err
	}
	return mapDocument(&env.Data)
}

func (d *Angora) CreateFolder(ctx context.Context, parentID, name string) (*model.Folder, error) {
	var env envelope[wireNode]
	err := d.t.request(ctx, http.MethodPost, "/api/folders", func(r *resty.Request) {
		r.SetBody(createFolderRequest{Name: name, ParentID: rootID(parentID)})
	}, &env)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "createFolder", "parent": parentID, "name": name}).WithError(err).Error("create folder failed")
		return nil, err
	}
	return mapFolder(&env.Data)
}

func (d *Angora) DeleteFolder(ctx context.Context, id string) error {
	if err := d.t.request(ctx, http.MethodDelete, "/api/folders/"+id, nil, nil); err != nil {
		d.log.WithFields(logrus.Fields{"op": "deleteFolder", "id": id}).WithError(err).Error("delete folder failed")
		return err
	}
	return nil
}
