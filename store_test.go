package main

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestFSStore(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "public")
	store, err := NewStore(ctx, StoreConfig{Driver: DriverFilesystem, FSRoot: root})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Errorf("driver = %s", store.Driver())
	}

	if err := store.Put(ctx, "data/index.json", []byte("[]"), jsonContentType); err != nil {
		t.Fatalf("Put: %v", err)
	}
	onDisk, err := os.ReadFile(filepath.Join(root, "data", "index.json"))
	if err != nil || string(onDisk) != "[]" {
		t.Errorf("file = %q, %v", onDisk, err)
	}
	got, err := store.Get(ctx, "data/index.json")
	if err != nil || string(got) != "[]" {
		t.Errorf("Get = %q, %v", got, err)
	}

	for _, key := range []string{"", "  ", "/etc/passwd", "../outside.json", "data/../../x"} {
		if err := store.Put(ctx, key, nil, ""); err == nil {
			t.Errorf("Put(%q): got nil error", key)
		}
	}
	if _, err := store.Get(ctx, "data/missing.json"); err == nil {
		t.Error("Get of a missing key: got nil error")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	data := []byte(`{"a":1}`)
	if err := store.Put(ctx, "b", data, jsonContentType); err != nil {
		t.Fatal(err)
	}
	data[0] = 'x'
	if err := store.Put(ctx, "a", nil, ""); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "b")
	if err != nil || string(got) != `{"a":1}` {
		t.Errorf("Get = %q, %v; want the bytes as put", got, err)
	}
	if keys := store.Keys(); !slices.Equal(keys, []string{"a", "b"}) {
		t.Errorf("keys = %v", keys)
	}
	if _, err := store.Get(ctx, "c"); err == nil {
		t.Error("Get of a missing key: got nil error")
	}
}

func TestNewStoreUnknownDriver(t *testing.T) {
	if _, err := NewStore(context.Background(), StoreConfig{Driver: "gcs"}); err == nil {
		t.Error("got nil error")
	}
	if _, err := NewStore(context.Background(), StoreConfig{Driver: DriverS3}); err == nil {
		t.Error("s3 without bucket: got nil error")
	}
}

func TestStoreConfigFromEnv(t *testing.T) {
	t.Setenv("COOKBOOK_BLOB_DRIVER", "")
	t.Setenv("COOKBOOK_BLOB_FS_ROOT", "")
	t.Setenv("COOKBOOK_BLOB_S3_REGION", "")
	t.Setenv("COOKBOOK_BLOB_S3_PATH_STYLE", "true")

	cfg := StoreConfigFromEnv()
	if cfg.Driver != DriverFilesystem || cfg.FSRoot != "public" || cfg.S3Region != "us-east-1" || !cfg.PathStyle {
		t.Errorf("cfg = %+v", cfg)
	}
}
