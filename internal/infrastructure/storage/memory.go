package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	orderapp "github.com/vertinimas/portal/internal/application/order"
)

var _ orderapp.ObjectStorage = (*MemoryObjectStorage)(nil)

// StoredObject is an object held by MemoryObjectStorage
type StoredObject struct {
	Data        []byte
	ContentType string
}

// MemoryObjectStorage keeps objects in process memory. Download URLs point
// at BaseURL and are only meaningful for local development.
type MemoryObjectStorage struct {
	BaseURL string
	TTL     time.Duration

	mu      sync.RWMutex
	objects map[string]StoredObject
}

// NewMemoryObjectStorage creates an empty in-memory store
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	return &MemoryObjectStorage{
		BaseURL: baseURL,
		TTL:     15 * time.Minute,
		objects: make(map[string]StoredObject),
	}
}

// Upload reads body fully and stores it under key
func (m *MemoryObjectStorage) Upload(_ context.Context, key string, body io.Reader, size int64, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("upload size mismatch: declared %d, read %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = StoredObject{Data: data, ContentType: contentType}
	return nil
}

// DownloadURL returns BaseURL/key with an expiry parameter
func (m *MemoryObjectStorage) DownloadURL(_ context.Context, key, filename string) (string, time.Time, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", time.Time{}, fmt.Errorf("object %s does not exist", key)
	}

	expires := time.Now().Add(m.TTL)
	q := url.Values{}
	q.Set("expires", expires.UTC().Format(time.RFC3339))
	if filename != "" {
		q.Set("filename", filename)
	}
	return m.BaseURL + "/" + key + "?" + q.Encode(), expires, nil
}

// Delete removes key
func (m *MemoryObjectStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Object returns the stored object for key
func (m *MemoryObjectStorage) Object(key string) (StoredObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o, ok
}

// Disabled rejects every operation with ErrStorageDisabled
type Disabled struct{}

var _ orderapp.ObjectStorage = Disabled{}

// Upload always fails
func (Disabled) Upload(context.Context, string, io.Reader, int64, string) error {
	return orderapp.ErrStorageDisabled
}

// DownloadURL always fails
func (Disabled) DownloadURL(context.Context, string, string) (string, time.Time, error) {
	return "", time.Time{}, orderapp.ErrStorageDisabled
}

// Delete is a no-op so order deletion works without storage
func (Disabled) Delete(context.Context, string) error {
	return nil
}
