package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Upload records one statement file handed to the pipeline.
type Upload struct {
	ID                string    `json:"id"`
	Filename          string    `json:"filename"`
	FileType          string    `json:"fileType"`
	FileSize          int64     `json:"fileSize"`
	UserID            string    `json:"userId"`
	UploadedAt        time.Time `json:"uploadedAt"`
	Processed         bool      `json:"processed"`
	TransactionsCount int       `json:"transactionsCount"`
}

// NewUpload assigns a fresh id to a file about to be processed. FileType is
// the lower-cased extension without the dot.
func NewUpload(userID, path string, size int64, at time.Time) Upload {
	return Upload{
		ID:         uuid.NewString(),
		Filename:   filepath.Base(path),
		FileType:   strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		FileSize:   size,
		UserID:     userID,
		UploadedAt: at.UTC(),
	}
}

// FileSource is the tag stored on every transaction committed from this upload.
func (u Upload) FileSource() string {
	return FileSourceFor(u.ID)
}
