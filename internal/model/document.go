package model

import (
	"path/filepath"
	"strings"
)

// UploadedDocument is a file selected in the upload form.
// It lives in memory for a single run and is consumed once by an upload call.
type UploadedDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Ext returns the lower-cased file extension including the dot.
func (d *UploadedDocument) Ext() string {
	if d == nil {
		return ""
	}
	return strings.ToLower(filepath.Ext(d.Filename))
}

// Size returns the document length in bytes.
func (d *UploadedDocument) Size() int64 {
	if d == nil {
		return 0
	}
	return int64(len(d.Data))
}
