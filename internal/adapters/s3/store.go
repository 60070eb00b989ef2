package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/knitout/pkg/ports"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config locates the bucket artifacts are kept in.
type Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

const (
	metaObject    = "artifact.json"
	programObject = "program.k"
)

// Store implements ports.ArtifactStore on an S3-compatible bucket. Every
// artifact is two objects under <prefix><id>/: its JSON record and the
// program text, so the program can be shared with a presigned URL.
type Store struct {
	client   *minio.Client
	bucket   string
	region   string
	prefix   string
	initOnce sync.Once
	initErr  error
}

// New validates cfg and creates the client. The bucket is created on first use.
func New(cfg Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	prefix := strings.Trim(strings.TrimSpace(cfg.Prefix), "/")
	if prefix != "" {
		prefix += "/"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &Store{client: client, bucket: bucket, region: region, prefix: prefix}, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	if s.initErr != nil {
		return fmt.Errorf("ensure bucket: %w", s.initErr)
	}
	return nil
}

// ObjectKey is the key of one of an artifact's objects.
func (s *Store) ObjectKey(id, name string) string {
	return s.prefix + strings.TrimSpace(id) + "/" + name
}

func (s *Store) put(ctx context.Context, key, contentType string, content []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// Save uploads the record and the program.
func (s *Store) Save(ctx context.Context, a *ports.Artifact) error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("artifact id is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	if err := s.put(ctx, s.ObjectKey(a.ID, programObject), "text/plain; charset=utf-8", []byte(a.Knitout)); err != nil {
		return fmt.Errorf("failed to upload program: %w", err)
	}
	if err := s.put(ctx, s.ObjectKey(a.ID, metaObject), "application/json", data); err != nil {
		return fmt.Errorf("failed to upload artifact: %w", err)
	}
	return nil
}

// Load downloads an artifact record.
func (s *Store) Load(ctx context.Context, id string) (*ports.Artifact, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.ObjectKey(id, metaObject), minio.GetObjectOptions{})
	if err != nil {
		return nil, notFound(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, notFound(err)
	}
	var a ports.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
	}
	return &a, nil
}

func notFound(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return ports.ErrArtifactNotFound
	}
	return err
}

// Delete removes both objects. S3 deletes of missing keys succeed.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	for _, name := range []string{metaObject, programObject} {
		if err := s.client.RemoveObject(ctx, s.bucket, s.ObjectKey(id, name), minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to delete %s: %w", name, err)
		}
	}
	return nil
}

// List returns the ids of every artifact record under the prefix.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	ids := make([]string, 0, 32)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		id, ok := strings.CutSuffix(strings.TrimPrefix(obj.Key, s.prefix), "/"+metaObject)
		if ok && id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ProgramURL presigns a download of an artifact's program.
func (s *Store) ProgramURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", id+".k"))
	u, err := s.client.PresignedGetObject(ctx, s.bucket, s.ObjectKey(id, programObject), expiry, params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
