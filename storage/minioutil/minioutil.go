package minioutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
)

/*
Test fixtures for S3 storage. Tests that need an S3 endpoint set
ROS2DYN_TEST_S3_ENDPOINT (and optionally ROS2DYN_TEST_S3_ACCESS_KEY and
ROS2DYN_TEST_S3_SECRET_KEY, defaulting to minioadmin) and are skipped
otherwise.
*/

////////////////////////////////////////////////////////////////////////////////

// NewClient returns a client for the configured test endpoint and a fresh
// bucket. The third return value removes the bucket and its contents.
func NewClient(t *testing.T) (*minio.Client, string, func()) {
	t.Helper()
	endpoint := os.Getenv("ROS2DYN_TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("ROS2DYN_TEST_S3_ENDPOINT not set")
	}
	accessKeyID := getenv("ROS2DYN_TEST_S3_ACCESS_KEY", "minioadmin")
	secretAccessKey := getenv("ROS2DYN_TEST_S3_SECRET_KEY", "minioadmin")

	ctx := context.Background()
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: false,
	})
	require.NoError(t, err)

	bucket := fmt.Sprintf("ros2dyn-test-%d", time.Now().UnixNano())
	require.NoError(t, mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	return mc, bucket, func() {
		for obj := range mc.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
			if obj.Err != nil {
				t.Log(obj.Err)
				continue
			}
			if err := mc.RemoveObject(ctx, bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
				t.Log(err)
			}
		}
		require.NoError(t, mc.RemoveBucket(ctx, bucket))
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
