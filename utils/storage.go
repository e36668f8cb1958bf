// forum/utils/storage.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// LocalStorage keeps avatars on local disk under AvatarDir, served at
// /avatars/.
type LocalStorage struct {
	AvatarDir string
}

// NewLocalStorage creates the avatar directory if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create avatar directory %s: %w", dir, err)
	}
	return &LocalStorage{AvatarDir: dir}, nil
}

func (ls *LocalStorage) Save(filename string, data []byte, contentType string) (string, error) {
	fullPath := filepath.Join(ls.AvatarDir, filename)
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", err
	}
	return "/avatars/" + filename, nil
}

func (ls *LocalStorage) Delete(path string) error {
	// Path is like "/avatars/filename.ext"
	filename := filepath.Base(path)
	err := os.Remove(filepath.Join(ls.AvatarDir, filename))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// S3Storage keeps avatars in an S3-compatible bucket.
type S3Storage struct {
	Client     *minio.Client
	BucketName string
	PublicURL  string
}

func NewS3Storage(endpoint, accessKey, secretKey, bucket, region, publicURL string, useSSL bool) (*S3Storage, error) {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	var creds *credentials.Credentials
	if accessKey == "" || secretKey == "" {
		// Fall back to IAM role credentials when keys are not provided.
		creds = credentials.NewIAM("")
	} else {
		creds = credentials.NewStaticV4(accessKey, secretKey, "")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	if publicURL == "" {
		protocol := "http"
		if useSSL {
			protocol = "https"
		}
		publicURL = fmt.Sprintf("%s://%s.%s", protocol, bucket, endpoint)
	}
	publicURL = strings.TrimSuffix(publicURL, "/")

	return &S3Storage{
		Client:     client,
		BucketName: bucket,
		PublicURL:  publicURL,
	}, nil
}

func (s3 *S3Storage) Save(filename string, data []byte, contentType string) (string, error) {
	ctx := context.Background()
	_, err := s3.Client.PutObject(ctx, s3.BucketName, filename, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", s3.PublicURL, filename), nil
}

func (s3 *S3Storage) Delete(path string) error {
	// Path is the full public URL; the object key is its last segment.
	parts := strings.Split(path, "/")
	if len(parts) == 0 {
		return nil
	}
	key := parts[len(parts)-1]
	return s3.Client.RemoveObject(context.Background(), s3.BucketName, key, minio.RemoveObjectOptions{})
}
