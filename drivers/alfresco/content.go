package alfresco

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/EisenVault/evdms/internal/model"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

func (d *Alfresco) UploadDocument(ctx context.Context, folderID string, file model.FileUpload) (*model.Document, error) {
	if err := file.Validate(); err != nil {
		return nil, err
	}
	d.log.WithFields(logrus.Fields{
		"op": "uploadDocument", "folder": folderID, "name": file.Name, "size": file.Size,
	}).Info("uploading document")

	form := map[string]string{
		"name":       file.Name,
		"autoRename": "true",
	}
	if file.RelativePath != "" {
		form["relativePath"] = file.RelativePath
	}

	var env entryWrap[nodeEntry]
	err := d.t.request(ctx, http.MethodPost, corePath+"/nodes/"+rootID(folderID)+"/children", func(r *resty.Request) {
		r.SetFileReader("filedata", file.Name, file.Reader).
			SetMultipartFormData(form)
	}, &env)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "uploadDocument", "name": file.Name}).WithError(err).Error("upload failed")
		return nil, err
	}
	return mapDocument(&env.Entry)
}

func (d *Alfresco) DownloadDocument(ctx context.Context, id string) ([]byte, error) {
	body, err := d.t.download(ctx, corePath+"/nodes/"+id+"/content")
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "downloadDocument", "id": id}).WithError(err).Error("download failed")
		return nil, err
	}
	return body, nil
}

func (d *Alfresco) GetDocumentContent(ctx context.Context, id string) (string, error) {
	body, err := d.DownloadDocument(ctx, id)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(body), nil
}

func (d *Alfresco) DeleteDocument(ctx context.Context, id string) error {
	if err := d.t.request(ctx, http.MethodDelete, corePath+"/nodes/"+id, nil, nil); err != nil {
		d.log.WithFields(logrus.Fields{"op": "deleteDocument", "id": id}).WithError(err).Error("delete failed")
		return err
	}
	return nil
}

func (d *Alfresco) UpdateDocument(ctx context.Context, id string, props map[string]any) (*model.Document, error) {
	var env entryWrap[nodeEntry]
	err := d.t.request(ctx, http.MethodPut, corePath+"/nodes/"+id, func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").
			SetBody(updateNodeRequest{Properties: props})
	}, &env)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "updateDocument", "id": id}).WithError(err).Error("update failed")
		return nil, err
	}
	return mapDocument(&env.Entry)
}

func (d *Alfresco) CreateFolder(ctx context.Context, parentID, name string) (*model.Folder, error) {
	var env entryWrap[nodeEntry]
	err := d.t.request(ctx, http.MethodPost, corePath+"/nodes/"+rootID(parentID)+"/children", func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").
			SetBody(createNodeRequest{Name: name, NodeType: "cm:folder"})
	}, &env)
	if err != nil {
		d.log.WithFields(logrus.Fields{"op": "createFolder", "parent": parentID, "name": name}).WithError(err).Error("create folder failed")
		return nil, err
	}
	return mapFolder(&env.Entry)
}

func (d *Alfresco) DeleteFolder(ctx context.Context, id string) error {
	if err := d.t.request(ctx, http.MethodDelete, corePath+"/nodes/"+id, nil, nil); err != nil {
		d.log.WithFields(logrus.Fields{"op": "deleteFolder", "id": id}).WithError(err).Error("delete folder failed")
		return err
	}
	return nil
}
