package model

import "time"

// Document is the record describing one stored object. It is computed from
// the object store on every request; nothing in this process caches it.
// ID equals the storage object key, so a record exists exactly when the
// object does.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
	URL         string    `json:"url"`
}
