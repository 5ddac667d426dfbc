package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/config"
)

// S3 wraps MinIO/S3 interactions for photos and exported documents.
type S3 struct {
	client         *minio.Client
	photoBucket    string
	documentBucket string
	region         string
	urlTTL         time.Duration
}

// NewS3 creates a MinIO client from the Config.
func NewS3(cfg *config.Config) (*S3, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &S3{
		client:         client,
		photoBucket:    cfg.PhotoBucket,
		documentBucket: cfg.DocumentBucket,
		region:         cfg.S3Region,
		urlTTL:         cfg.SignedURLTTL,
	}, nil
}

// EnsureBuckets makes sure the photo and document buckets exist before use.
func (s *S3) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.photoBucket, s.documentBucket} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
				return fmt.Errorf("make bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

// PutPhoto uploads a passport photo keyed by roll number, replacing any
// previous one.
func (s *S3) PutPhoto(ctx context.Context, rollNo string, data []byte, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: photoType(contentType)}
	_, err := s.client.PutObject(ctx, s.photoBucket, PhotoKey(rollNo), bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return fmt.Errorf("upload photo object: %w", err)
	}
	return nil
}

// GetPhoto downloads a passport photo.
func (s *S3) GetPhoto(ctx context.Context, rollNo string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.photoBucket, PhotoKey(rollNo), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get photo object: %w", err)
	}
	defer obj.Close()
	buf, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, apperrors.NotFound("Photo not found")
		}
		return nil, fmt.Errorf("read photo object: %w", err)
	}
	return buf, nil
}

// PhotoURL returns a presigned GET URL for the photo, or "" when the student
// has none.
func (s *S3) PhotoURL(ctx context.Context, rollNo string) (string, error) {
	key := PhotoKey(rollNo)
	if _, err := s.client.StatObject(ctx, s.photoBucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return "", nil
		}
		return "", fmt.Errorf("stat photo object: %w", err)
	}
	return s.presign(ctx, s.photoBucket, key)
}

// PutDocument uploads an exported PDF.
func (s *S3) PutDocument(ctx context.Context, key string, data []byte) error {
	opts := minio.PutObjectOptions{ContentType: "application/pdf"}
	_, err := s.client.PutObject(ctx, s.documentBucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return fmt.Errorf("upload document object: %w", err)
	}
	return nil
}

// DocumentURL returns a presigned GET URL for an exported PDF.
func (s *S3) DocumentURL(ctx context.Context, key string) (string, error) {
	return s.presign(ctx, s.documentBucket, key)
}

// PurgeStudent removes every photo and document stored for rollNo.
func (s *S3) PurgeStudent(ctx context.Context, rollNo string) (int, error) {
	removed := 0
	for _, bucket := range []string{s.photoBucket, s.documentBucket} {
		objects := s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: StudentPrefix(rollNo), Recursive: true})
		for obj := range objects {
			if obj.Err != nil {
				return removed, fmt.Errorf("list %s: %w", bucket, obj.Err)
			}
			if err := s.client.RemoveObject(ctx, bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
				return removed, fmt.Errorf("remove %s/%s: %w", bucket, obj.Key, err)
			}
			removed++
		}
	}
	return removed, nil
}

// MoveStudent copies every object of fromRollNo under toRollNo and removes
// the originals.
func (s *S3) MoveStudent(ctx context.Context, fromRollNo, toRollNo string) (int, error) {
	if fromRollNo == toRollNo {
		return 0, nil
	}
	from, to := StudentPrefix(fromRollNo), StudentPrefix(toRollNo)
	moved := 0
	for _, bucket := range []string{s.photoBucket, s.documentBucket} {
		objects := s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: from, Recursive: true})
		for obj := range objects {
			if obj.Err != nil {
				return moved, fmt.Errorf("list %s: %w", bucket, obj.Err)
			}
			dst := minio.CopyDestOptions{Bucket: bucket, Object: to + strings.TrimPrefix(obj.Key, from)}
			src := minio.CopySrcOptions{Bucket: bucket, Object: obj.Key}
			if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
				return moved, fmt.Errorf("copy %s/%s: %w", bucket, obj.Key, err)
			}
			if err := s.client.RemoveObject(ctx, bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
				return moved, fmt.Errorf("remove %s/%s: %w", bucket, obj.Key, err)
			}
			moved++
		}
	}
	return moved, nil
}

func (s *S3) presign(ctx context.Context, bucket, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, key, s.urlTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
