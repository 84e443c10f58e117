package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// StoreDriver names a BlobStore implementation.
type StoreDriver string

const (
	DriverFilesystem StoreDriver = "fs"
	DriverMemory     StoreDriver = "memory"
	DriverS3         StoreDriver = "s3"
)

// BlobStore is where generated data is written. Put overwrites: the fork
// index is rewritten on every run.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Driver() StoreDriver
}

// NewStore opens the store selected by cfg.
func NewStore(ctx context.Context, cfg StoreConfig) (BlobStore, error) {
	switch cfg.Driver {
	case DriverFilesystem, "":
		return newFSStore(cfg.FSRoot)
	case DriverMemory:
		return newMemoryStore(), nil
	case DriverS3:
		return newS3Store(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
}

// ── Filesystem ──────────────────────────────────────────────────────

type fsStore struct {
	root string
}

func newFSStore(root string) (*fsStore, error) {
	if root == "" {
		root = "public"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &fsStore{root: root}, nil
}

func (s *fsStore) Driver() StoreDriver { return DriverFilesystem }

// path maps key to a file under the root, refusing keys that escape it.
func (s *fsStore) path(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(filepath.Clean(key))), nil
}

func (s *fsStore) Put(_ context.Context, key string, data []byte, _ string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(p); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Create: %s\n", p)
	}
	return os.WriteFile(p, data, 0o644)
}

func (s *fsStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// ── Memory ──────────────────────────────────────────────────────────

type memoryStore struct {
	mu   sync.RWMutex
	objs map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objs: make(map[string][]byte)}
}

func (s *memoryStore) Driver() StoreDriver { return DriverMemory }

func (s *memoryStore) Put(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objs[key] = bytes.Clone(data)
	return nil
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", key)
	}
	return bytes.Clone(data), nil
}

// Keys returns every stored key, sorted.
func (s *memoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objs))
	for k := range s.objs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ── S3 ──────────────────────────────────────────────────────────────

// s3Store writes to a single bucket, AWS S3 or anything compatible (MinIO).
// Keys map to object keys directly.
type s3Store struct {
	client *s3.Client
	bucket string
}

func newS3Store(ctx context.Context, cfg StoreConfig) (*s3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("COOKBOOK_BLOB_S3_BUCKET required for s3 driver")
	}
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})
	return &s3Store{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *s3Store) Driver() StoreDriver { return DriverS3 }

func (s *s3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *s3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}
