package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JaimeStill/candor/pkg/lifecycle"
)

const noSuchKey = "NoSuchKey"

type minioStore struct {
	client *minio.Client
	bucket string
	region string
	logger *slog.Logger
}

func newMinio(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &minioStore{
		client: client,
		bucket: cfg.Container,
		region: cfg.Region,
		logger: logger,
	}, nil
}

func (m *minioStore) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("starting storage system")

	lc.OnStartup("minio bucket", func() {
		ctx := lc.Context()

		exists, err := m.client.BucketExists(ctx, m.bucket)
		if err != nil {
			m.logger.Error("storage bucket check failed", "error", err)
			return
		}

		if !exists {
			if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
				m.logger.Error("storage bucket initialization failed", "error", err)
				return
			}
		}

		m.logger.Info("storage bucket ready", "bucket", m.bucket)
	})

	return nil
}

func (m *minioStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := m.client.PutObject(ctx, m.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload object %s: %w", key, err)
	}

	return nil
}

func (m *minioStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("download object %s: %w", key, err)
	}

	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == noSuchKey {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download object %s: %w", key, err)
	}

	return obj, nil
}

func (m *minioStore) Delete(ctx context.Context, key string) error {
	exists, err := m.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}

	return nil
}

func (m *minioStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	if _, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == noSuchKey {
			return false, nil
		}
		return false, fmt.Errorf("check object existence %s: %w", key, err)
	}

	return true, nil
}
