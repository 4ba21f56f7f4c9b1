package services

import (
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/book-a-meal/book-a-meal-api/utils"
)

// MockImageService is a mock implementation of ImageService for testing
type MockImageService struct {
	images     map[string]bool // set of stored image keys
	failUpload bool
	mu         sync.RWMutex
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{
		images: make(map[string]bool),
	}
}

// SetAsMockForTesting sets this mock as the global image service instance for testing
func (m *MockImageService) SetAsMockForTesting() {
	SetImageService(m)
}

// FailNextUpload makes the next UploadImage call return an error
func (m *MockImageService) FailNextUpload() {
	m.mu.Lock()
	m.failUpload = true
	m.mu.Unlock()
}

// UploadImage simulates validating and uploading an image
func (m *MockImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	// Run the real validation so tests exercise format and size rules
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failUpload {
		m.failUpload = false
		return "", fmt.Errorf("mock upload failure")
	}

	key := fmt.Sprintf("meal-images/mock_%s", fileHeader.Filename)
	m.images[key] = true
	return key, nil
}

// GetImageURL simulates generating an access URL for an image
func (m *MockImageService) GetImageURL(imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.images[imageKey] {
		return "", fmt.Errorf("image not found in mock storage: %s", imageKey)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", imageKey), nil
}

// DeleteImage simulates removing an image
func (m *MockImageService) DeleteImage(imageKey string) error {
	if imageKey == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.images, imageKey)
	m.mu.Unlock()
	return nil
}

// ImageExists checks if an image exists in mock storage
func (m *MockImageService) ImageExists(imageKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.images[imageKey]
}
