// Package storage provides blob storage for recorded audio with Azure Blob
// Storage and S3-compatible (MinIO) implementations.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JaimeStill/candor/pkg/lifecycle"
)

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that ensures the container or bucket exists.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams size bytes from reader to the blob at key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Download returns a stream for the blob at the given key. The caller must close the reader.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob at the given key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// New creates the storage system selected by cfg.Provider.
// Clients are constructed here; no network calls happen until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderMinio:
		return newMinio(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
