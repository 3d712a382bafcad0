package documents

import (
	"fmt"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// ObjectStorage is the bucket API the documents service needs.
type ObjectStorage interface {
	Upload(bucket, key string, body io.Reader, contentType string) error
	PublicURL(bucket, key string) string
	Remove(bucket, key string) error
}

type supabaseStorage struct {
	client *storage_go.Client
}

// NewSupabaseStorage connects to the storage API of the project at projectURL.
func NewSupabaseStorage(projectURL, apiKey string) ObjectStorage {
	endpoint := strings.TrimRight(projectURL, "/") + "/storage/v1"
	return &supabaseStorage{client: storage_go.NewClient(endpoint, apiKey, nil)}
}

func (s *supabaseStorage) Upload(bucket, key string, body io.Reader, contentType string) error {
	if _, err := s.client.UploadFile(bucket, key, body, storage_go.FileOptions{ContentType: &contentType}); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	return nil
}

func (s *supabaseStorage) PublicURL(bucket, key string) string {
	return s.client.GetPublicUrl(bucket, key).SignedURL
}

func (s *supabaseStorage) Remove(bucket, key string) error {
	if _, err := s.client.RemoveFile(bucket, []string{key}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}

	return nil
}
