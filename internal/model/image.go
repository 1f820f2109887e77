package model

import (
	"strings"
	"time"
)

// UploadedImage is the transient payload assembled from a multipart request.
// It lives only for the duration of a single upload.
type UploadedImage struct {
	Data        []byte
	ContentType string
	Filename    string
	Quality     *int // requested JPEG quality, nil when not supplied
	Width       *int // requested width in pixels, nil when not supplied
	Height      *int // requested height in pixels, nil when not supplied
}

// Format returns the format tag derived from the declared content type,
// e.g. "jpeg" for "image/jpeg".
func (u UploadedImage) Format() string {
	if i := strings.LastIndex(u.ContentType, "/"); i >= 0 {
		return u.ContentType[i+1:]
	}
	return u.ContentType
}

// ProcessedImage is the result of the normalization pipeline: final JPEG
// bytes plus the dimensions measured after any resize. Quality is nil when
// no compression was requested (conversion-only encode at full fidelity).
type ProcessedImage struct {
	Data    []byte
	Width   int
	Height  int
	Quality *int
}

// Image is a persisted image record. Rows are append-only: created on a
// successful upload and never updated or deleted.
type Image struct {
	ID             int64     `json:"id"`
	Filename       string    `json:"filename"`
	OriginalFormat string    `json:"original_format"`
	ContentType    string    `json:"content_type"`
	Data           []byte    `json:"-"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Quality        *int      `json:"quality"`
	FileSize       int       `json:"size"`
	CreatedAt      time.Time `json:"created_at"`
}
