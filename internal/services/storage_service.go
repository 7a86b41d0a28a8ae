// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"github.com/sapmusicgroup/sap-backend/internal/config"
)

// Upload categories.
const (
	CategoryArtwork    = "artwork"
	CategorySignatures = "signatures"
	CategoryAgreements = "agreements"
)

// ObjectStore puts objects and knows their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(key string) string
	Delete(ctx context.Context, key string) error
}

type StorageService struct {
	store ObjectStore
	now   func() time.Time
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
}

// NewStorageService builds the object store named by cfg.Storage.Provider.
func NewStorageService(cfg *config.Config) (*StorageService, error) {
	var (
		store ObjectStore
		err   error
	)
	switch cfg.Storage.Provider {
	case "s3":
		store, err = NewS3Store(cfg.Storage)
	case "minio":
		store, err = NewMinioStore(cfg.Storage)
	default:
		store, err = NewLocalStore(cfg.Storage.LocalPath, cfg.Storage.PublicBaseURL)
	}
	if err != nil {
		return nil, err
	}
	return NewStorageServiceWithStore(store), nil
}

func NewStorageServiceWithStore(store ObjectStore) *StorageService {
	return &StorageService{store: store, now: time.Now}
}

func UploadOptionsFor(category string) (UploadOptions, bool) {
	switch category {
	case CategoryArtwork:
		return UploadOptions{
			Folder:       "artwork",
			MaxSize:      5 * 1024 * 1024, // 5MB
			AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		}, true
	case CategorySignatures:
		return UploadOptions{
			Folder:       "signatures",
			MaxSize:      2 * 1024 * 1024, // 2MB
			AllowedTypes: []string{"image/png", "image/jpeg"},
		}, true
	case CategoryAgreements:
		return UploadOptions{
			Folder:       "agreements",
			MaxSize:      10 * 1024 * 1024, // 10MB
			AllowedTypes: []string{"application/pdf"},
		}, true
	}
	return UploadOptions{}, false
}

// Upload stores one multipart file under the caller's folder for category.
// The content type is sniffed from the bytes, not taken from the client.
func (s *StorageService) Upload(ctx context.Context, actor Actor, category string, header *multipart.FileHeader) (*UploadResult, error) {
	opts, ok := UploadOptionsFor(category)
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrFileType, category)
	}
	if header.Size > opts.MaxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, header.Size, opts.MaxSize)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, opts.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > opts.MaxSize {
		return nil, ErrFileTooLarge
	}

	mimeType := detectContentType(data)
	if !contains(opts.AllowedTypes, mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrFileType, mimeType)
	}

	key := s.objectKey(opts.Folder, actor.ID, header.Filename)
	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), mimeType); err != nil {
		return nil, err
	}

	return &UploadResult{
		URL:      s.store.URL(key),
		Key:      key,
		Size:     int64(len(data)),
		MimeType: mimeType,
	}, nil
}

// LocalRoot returns the directory served under the public base URL when
// objects are kept on local disk.
func (s *StorageService) LocalRoot() (string, bool) {
	l, ok := s.store.(*LocalStore)
	if !ok {
		return "", false
	}
	return l.Root(), true
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, key)
}

func (s *StorageService) objectKey(folder string, owner uuid.UUID, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := fmt.Sprintf("%s_%s%s", s.now().Format("20060102"), uuid.New().String()[:8], ext)
	return fmt.Sprintf("%s/%s/%s", folder, owner, name)
}

func detectContentType(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

type S3Store struct {
	client        *s3.S3
	bucket        string
	region        string
	cloudFrontURL string
}

func NewS3Store(cfg config.StorageConfig) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Store{
		client:        s3.New(sess),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		cloudFrontURL: strings.TrimRight(cfg.CloudFrontURL, "/"),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	body, ok := r.(io.ReadSeeker)
	if !ok {
		b, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3Store) URL(key string) string {
	if s.cloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.cloudFrontURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

type MinioStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

// NewMinioStore connects to MinIO and creates the bucket when missing.
func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, endpoint: cfg.MinioEndpoint, useSSL: cfg.MinioUseSSL}, nil
}

func (m *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (m *MinioStore) URL(key string) string {
	scheme := "http"
	if m.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, m.endpoint, m.bucket, key)
}

func (m *MinioStore) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// LocalStore writes under a directory served at baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *LocalStore) Root() string { return l.root }

func (l *LocalStore) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *LocalStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	p := l.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (l *LocalStore) URL(key string) string {
	return fmt.Sprintf("%s/%s", l.baseURL, key)
}

func (l *LocalStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(l.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	logrus.WithField("key", key).Debug("Deleted local upload")
	return nil
}
