package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RemoteStore talks to an object-storage HTTP API (Supabase-storage style:
// POST to /object/{bucket}/{name}, public read from
// /object/public/{bucket}/{name}).
type RemoteStore struct {
	Endpoint string
	Bucket   string
	APIKey   string

	client *http.Client
}

func NewRemoteStore(endpoint, bucket, apiKey string) *RemoteStore {
	return &RemoteStore{
		Endpoint: endpoint,
		Bucket:   bucket,
		APIKey:   apiKey,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *RemoteStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.Endpoint, s.Bucket, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("blob store upload error (%d): %s", resp.StatusCode, string(body))
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.Endpoint, s.Bucket, url.PathEscape(name))
	return publicURL, nil
}
