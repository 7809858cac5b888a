package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/minio/minio-go/v7"
)

/*
Storage provider for S3-compatible object storage. We use the minio client
library.
*/

////////////////////////////////////////////////////////////////////////////////

const (
	minioErrNoSuchKey = "NoSuchKey"
)

type S3Store struct {
	mc     *minio.Client
	bucket string
}

func NewS3Store(mc *minio.Client, bucket string) *S3Store {
	return &S3Store{
		mc:     mc,
		bucket: bucket,
	}
}

// Put stores the data in the object store.
func (s *S3Store) Put(ctx context.Context, id string, data []byte) error {
	n := int64(len(data))
	_, err := s.mc.PutObject(
		ctx,
		s.bucket,
		id,
		bytes.NewReader(data),
		n,
		minio.PutObjectOptions{},
	)
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

// Get retrieves an object from the object store.
func (s *S3Store) Get(ctx context.Context, id string) ([]byte, error) {
	obj, err := s.mc.GetObject(ctx, s.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == minioErrNoSuchKey {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return data, nil
}

// List returns the ids of objects beginning with prefix.
func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	ids := []string{}
	for obj := range s.mc.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		ids = append(ids, obj.Key)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes an object from the object store.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	if err := s.mc.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == minioErrNoSuchKey {
			return nil
		}
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

func (s *S3Store) String() string {
	return fmt.Sprintf("s3(%s)", s.bucket)
}
