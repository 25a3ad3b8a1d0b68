// Package filestore keeps uploaded product images and serves them back by id.
package filestore

import (
	"context"
	"errors"
	"io"
	"strings"
)

var ErrNotFound = errors.New("file not found")

const urlPrefix = "/api/v1/files/"

type File struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

func (f *File) URL() string {
	return URL(f.ID)
}

type Store interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (*File, error)
	Open(ctx context.Context, id string) (io.ReadCloser, *File, error)
	Delete(ctx context.Context, id string) error
}

// URL is the public download path for a stored file.
func URL(id string) string {
	return urlPrefix + id
}

// IDFromURL extracts the file id from a download URL produced by URL. URLs
// pointing anywhere else (static assets, external hosts) report false.
func IDFromURL(url string) (string, bool) {
	idx := strings.Index(url, urlPrefix)
	if idx < 0 {
		return "", false
	}

	id := strings.Trim(url[idx+len(urlPrefix):], "/")
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}

	return id, true
}
