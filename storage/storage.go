package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Storage interface for reading stored case documents
type Storage interface {
	// Download retrieves a document by its stored path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Exists reports whether a document is present at the stored path
	Exists(ctx context.Context, storagePath string) (bool, error)
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

const (
	// DefaultS3Bucket is the public bucket behind CourtListener's local_path values
	DefaultS3Bucket = "com-courtlistener-storage"
	DefaultS3Region = "us-west-2"
)

// ErrNotFound is returned when no document exists at a stored path
var ErrNotFound = errors.New("document not found")

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string // Empty means anonymous access
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3 bucket is required for S3 storage")
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// CleanStoragePath normalizes a stored path and rejects paths escaping the root
func CleanStoragePath(storagePath string) (string, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(storagePath), "/")
	if trimmed == "" {
		return "", errors.New("empty storage path")
	}

	cleaned := path.Clean(trimmed)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid storage path: %s", storagePath)
	}

	return cleaned, nil
}
