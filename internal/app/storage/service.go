/*
Package storage stores and retrieves the bytes of uploaded files.

Two backends exist behind one interface: a local disk directory (the default,
suited to a LAN deployment) and an S3-compatible bucket. Metadata about uploads
lives in the store package; this package only moves bytes.
*/
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound reports that no stored file exists under the given name.
var ErrObjectNotFound = errors.New("stored file not found")

// ServiceConfig holds the configuration required to initialize a storage backend.
type ServiceConfig struct {
	// Backend selects the implementation: "disk" or "s3".
	Backend string

	// UploadDir is the local directory for the disk backend.
	UploadDir string

	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Service is the public interface for uploaded file storage. All content moves
// as streams; implementations never buffer whole files in memory.
type Service interface {
	// Save streams content into storage under the given stored name.
	Save(ctx context.Context, storedName string, contentType string, size int64, content io.Reader) error

	// Open streams a stored file back out, together with its size in bytes.
	// Returns ErrObjectNotFound when no such file exists.
	Open(ctx context.Context, storedName string) (io.ReadCloser, int64, error)

	// Delete removes a stored file. Deleting a missing file returns
	// ErrObjectNotFound.
	Delete(ctx context.Context, storedName string) error

	// Kind names the backing implementation ("disk" or "s3").
	Kind() string
}

// NewService is the factory function for Service. It initializes and returns a
// concrete implementation based on the provided configuration.
func NewService(cfg ServiceConfig) (Service, error) {
	switch cfg.Backend {
	case "s3":
		return newS3Store(cfg)
	default:
		return newDiskStore(cfg.UploadDir)
	}
}
