package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalService_PutDelete(t *testing.T) {
	root := t.TempDir()
	svc, err := NewLocalService(root, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := svc.Put(ctx, Object{Key: "avatars/1/pic.png", Body: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/avatars/1/pic.png", url)

	data, err := os.ReadFile(filepath.Join(root, "avatars", "1", "pic.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, svc.Delete(ctx, "avatars/1/pic.png"))
	_, err = os.Stat(filepath.Join(root, "avatars", "1", "pic.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, svc.Delete(ctx, "avatars/1/pic.png"))
}

func TestLocalService_ConfinesKeysToRoot(t *testing.T) {
	root := t.TempDir()
	svc, err := NewLocalService(filepath.Join(root, "uploads"), "/uploads")
	require.NoError(t, err)

	url, err := svc.Put(context.Background(), Object{Key: "../../escape.png", Body: strings.NewReader("x")})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/escape.png", url)

	_, err = os.Stat(filepath.Join(root, "uploads", "escape.png"))
	assert.NoError(t, err)

	_, err = svc.Put(context.Background(), Object{Key: "", Body: strings.NewReader("x")})
	assert.Error(t, err)
}

func TestS3Service_Keys(t *testing.T) {
	client := s3.New(s3.Options{Region: "eu-west-1", Credentials: aws.AnonymousCredentials{}})

	svc := NewS3Service(client, S3Options{Bucket: "pics", KeyPrefix: "/avatars/", Region: "eu-west-1"})
	assert.Equal(t, "avatars/1/a.png", svc.objectKey("/1/a.png"))
	assert.Equal(t, "https://pics.s3.eu-west-1.amazonaws.com/avatars/1/a.png", svc.publicURL("avatars/1/a.png"))

	cdn := NewS3Service(client, S3Options{Bucket: "pics", PublicBaseURL: "https://cdn.example.com/"})
	assert.Equal(t, "1/a.png", cdn.objectKey("1/a.png"))
	assert.Equal(t, "https://cdn.example.com/1/a.png", cdn.publicURL("1/a.png"))

	_, err := NewS3Service(client, S3Options{}).Put(context.Background(), Object{Key: "k"})
	assert.Error(t, err)
}
