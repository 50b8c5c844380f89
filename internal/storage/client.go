package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/logger"
)

// StorageError carries the object store's failure message for the
// caller to surface.
type StorageError struct {
	StatusCode int
	Message    string
}

func (e *StorageError) Error() string {
	return e.Message
}

// Client talks to the hosted object storage where product images live.
// Objects are public-read; writes are authorized by the service key.
type Client struct {
	BaseURL    string
	APIKey     string
	Bucket     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey, bucket string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Bucket:  bucket,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second, // uploads can be slow
		},
	}
}

// ObjectName builds a collision-free object name for an uploaded file,
// keeping the original extension: "{random}-{timestamp}.{ext}".
func ObjectName(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	return fmt.Sprintf("%s-%d%s", uuid.NewString(), time.Now().UnixMilli(), ext)
}

// Upload stores the object and returns its public URL.
func (c *Client) Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error) {
	reqURL := fmt.Sprintf("%s/object/%s/%s", c.BaseURL, c.Bucket, objectName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		logger.Error("StorageClient.Upload: NewRequest failed", err)
		return "", fmt.Errorf("failed to create request to object storage: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.Error("StorageClient.Upload: HTTPClient.Do failed", err)
		return "", fmt.Errorf("failed to call object storage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.storageError(resp)
	}
	return c.PublicURL(objectName), nil
}

// PublicURL is where browsers fetch the object from.
func (c *Client) PublicURL(objectName string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.BaseURL, c.Bucket, objectName)
}

func (c *Client) storageError(resp *http.Response) error {
	message := http.StatusText(resp.StatusCode)
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		switch {
		case payload.Message != "":
			message = payload.Message
		case payload.Error != "":
			message = payload.Error
		}
	}
	return &StorageError{StatusCode: resp.StatusCode, Message: message}
}
