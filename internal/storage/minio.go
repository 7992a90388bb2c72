// Package storage keeps copies of swept documents in a MinIO bucket.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gogotex/docshare/internal/config"
	"github.com/gogotex/docshare/internal/document"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStorage archives expired documents as JSON objects.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIOStorage creates a MinIO client and ensures the bucket exists.
func NewMinIOStorage(ctx context.Context, cfg config.ArchiveConfig) (*MinIOStorage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStorage{client: mc, bucket: cfg.Bucket}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// already exists is fine
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// ArchiveKey is the object key for a document, partitioned by creation day.
func ArchiveKey(d *document.Document) string {
	return fmt.Sprintf("expired/%s/%s.json", d.CreatedAt.UTC().Format("2006/01/02"), d.ID)
}

// Encode renders the archived form of a document. The delete code is not
// part of it.
func Encode(d *document.Document) ([]byte, error) {
	v := d.View()
	return json.Marshal(struct {
		ID string `json:"id"`
		document.View
	}{ID: d.ID, View: v})
}

// Archive uploads the document under ArchiveKey.
func (s *MinIOStorage) Archive(ctx context.Context, d *document.Document) error {
	body, err := Encode(d)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.ID, err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, ArchiveKey(d), bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}
