package documents

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	custom_error "splitters/pkg/errors"
)

type Document struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

type DocumentService struct {
	storage ObjectStorage
	bucket  string
	now     func() time.Time
}

// NewDocumentService returns a service writing to bucket. A nil storage disables uploads.
func NewDocumentService(storage ObjectStorage, bucket string) *DocumentService {
	return &DocumentService{storage: storage, bucket: bucket, now: time.Now}
}

func (s *DocumentService) Enabled() bool {
	return s != nil && s.storage != nil
}

// ObjectKey places a document under its location as <locationId>/<unixMillis>_<filename>.
func (s *DocumentService) ObjectKey(locationID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")

	return fmt.Sprintf("%s/%d_%s", locationID, s.now().UnixMilli(), name)
}

func (s *DocumentService) Upload(locationID, filename string, body io.Reader) (Document, error) {
	if !s.Enabled() {
		return Document{}, custom_error.ErrStorageDisabled
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return Document{}, fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(raw)
	key := s.ObjectKey(locationID, filename)

	if err := s.storage.Upload(s.bucket, key, bytes.NewReader(raw), contentType); err != nil {
		return Document{}, err
	}

	return Document{Key: key, URL: s.storage.PublicURL(s.bucket, key), ContentType: contentType}, nil
}

// Remove deletes a document. The key must belong to locationID.
func (s *DocumentService) Remove(locationID, key string) error {
	if !s.Enabled() {
		return custom_error.ErrStorageDisabled
	}

	key = strings.TrimPrefix(key, "/")
	if !strings.HasPrefix(key, locationID+"/") || strings.Contains(key, "..") {
		return fmt.Errorf("document %q is not stored under location %s: %w", key, locationID, custom_error.ErrInvalidInput)
	}

	return s.storage.Remove(s.bucket, key)
}
