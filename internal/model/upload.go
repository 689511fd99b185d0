package model

import (
	"io"

	"github.com/EisenVault/evdms/internal/errs"
	"github.com/pkg/errors"
)

// FileUpload carries the content and metadata for an upload. Size must be
// known up front so resumable transfers can report totals.
type FileUpload struct {
	Name         string
	Size         int64
	MimeType     string
	RelativePath string
	Reader       io.Reader
}

// Validate rejects uploads that would fail on every backend before a single
// request is sent.
func (f FileUpload) Validate() error {
	if f.Name == "" {
		return errors.Wrap(errs.Validation, "upload requires a file name")
	}
	if f.Size <= 0 {
		return errors.Wrapf(errs.Validation, "upload %q is empty", f.Name)
	}
	if f.Reader == nil {
		return errors.Wrapf(errs.Validation, "upload %q has no content reader", f.Name)
	}
	return nil
}
