package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tutorsite/internal/config"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)
	cases := []struct {
		name string
		opts SaveOptions
		want string
	}{
		{name: "full", opts: SaveOptions{Category: "Exports", BaseName: "Registrations 2024", Extension: ".CSV"}, want: "exports/2024/03/09/registrations-2024.csv"},
		{name: "defaults", opts: SaveOptions{}, want: "misc/2024/03/09/" + "1709996645000000000" + ".bin"},
		{name: "strips unsafe characters", opts: SaveOptions{Category: "../etc", BaseName: "../../passwd", Extension: "t/xt"}, want: "etc/2024/03/09/passwd.txt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ObjectKey(now, tc.opts); got != tc.want {
				t.Fatalf("ObjectKey() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := contentTypeFor(SaveOptions{ContentType: "text/csv; charset=utf-8"}); got != "text/csv; charset=utf-8" {
		t.Fatalf("explicit content type not kept: %q", got)
	}
	if got := contentTypeFor(SaveOptions{Extension: "zzz-unknown"}); got != "application/octet-stream" {
		t.Fatalf("expected octet-stream fallback, got %q", got)
	}
}

func TestJoinPrefix(t *testing.T) {
	cases := map[string][2]string{
		"exports/a.csv":        {"", "/exports/a.csv"},
		"tenant/exports/a.csv": {"/tenant/", "exports/a.csv"},
	}
	for want, in := range cases {
		if got := joinPrefix(in[0], in[1]); got != want {
			t.Errorf("joinPrefix(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}

func TestLocalStorageSaveAndResolve(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}
	store.now = func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }

	opts := SaveOptions{Category: "exports", BaseName: "snapshot", Extension: "csv"}
	key, err := store.Save(context.Background(), []byte("a,b\n"), opts)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if key != "exports/2024/03/09/snapshot.csv" {
		t.Fatalf("unexpected key %q", key)
	}

	resolved, err := store.ResolvePath(key)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != filepath.Join(dir, "exports", "2024", "03", "09", "snapshot.csv") {
		t.Fatalf("unexpected path %q", resolved)
	}
	data, err := os.ReadFile(resolved)
	if err != nil || string(data) != "a,b\n" {
		t.Fatalf("unexpected file content %q (%v)", data, err)
	}

	opts.SkipIfExists = true
	if _, err := store.Save(context.Background(), []byte("changed"), opts); err != nil {
		t.Fatalf("save skip-if-exists: %v", err)
	}
	data, _ = os.ReadFile(resolved)
	if string(data) != "a,b\n" {
		t.Fatalf("expected existing file to be kept, got %q", data)
	}
}

func TestLocalStorageResolveStaysInsideBaseDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}
	resolved, err := store.ResolvePath("../../etc/passwd")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.HasPrefix(resolved, dir) {
		t.Fatalf("resolved path %q escapes %q", resolved, dir)
	}
	if _, err := store.ResolvePath("  "); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestLocalStorageRejectsEmptyPayload(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}
	if _, err := store.Save(context.Background(), nil, SaveOptions{}); !errors.Is(err, errEmptyPayload) {
		t.Fatalf("expected errEmptyPayload, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Save(ctx, []byte("x"), SaveOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewStorageSelectsBackend(t *testing.T) {
	local, err := NewStorage(config.Config{StorageType: "LOCAL", StorageLocalDir: t.TempDir()})
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	if _, ok := local.(*LocalStorage); !ok {
		t.Fatalf("expected *LocalStorage, got %T", local)
	}

	s3Store, err := NewStorage(config.Config{
		StorageType:              TypeS3,
		StorageS3Bucket:          "bucket",
		StorageS3Region:          "us-east-1",
		StorageS3Endpoint:        "minio.local:9000",
		StorageS3AccessKeyID:     "key",
		StorageS3SecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatalf("s3: %v", err)
	}
	if _, ok := s3Store.(*remoteS3Storage); !ok {
		t.Fatalf("expected *remoteS3Storage, got %T", s3Store)
	}

	r2Store, err := NewStorage(config.Config{
		StorageType:              TypeR2,
		StorageR2AccountID:       "acct",
		StorageR2Bucket:          "bucket",
		StorageR2AccessKeyID:     "key",
		StorageR2SecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatalf("r2: %v", err)
	}
	if _, ok := r2Store.(*remoteS3Storage); !ok {
		t.Fatalf("expected *remoteS3Storage, got %T", r2Store)
	}

	cosStore, err := NewStorage(config.Config{
		StorageType:         TypeCOS,
		StorageCOSBucketURL: "https://bucket-1250000000.cos.ap-guangzhou.myqcloud.com",
		StorageCOSSecretID:  "id",
		StorageCOSSecretKey: "key",
	})
	if err != nil {
		t.Fatalf("cos: %v", err)
	}
	if _, ok := cosStore.(*cosStorage); !ok {
		t.Fatalf("expected *cosStorage, got %T", cosStore)
	}
}

func TestNewStorageValidatesConfig(t *testing.T) {
	cases := map[string]config.Config{
		"unknown type":   {StorageType: "ftp"},
		"s3 no bucket":   {StorageType: TypeS3, StorageS3Region: "us-east-1"},
		"s3 no region":   {StorageType: TypeS3, StorageS3Bucket: "b", StorageS3AccessKeyID: "k", StorageS3SecretAccessKey: "s"},
		"s3 no creds":    {StorageType: TypeS3, StorageS3Bucket: "b", StorageS3Region: "us-east-1"},
		"r2 no endpoint": {StorageType: TypeR2, StorageR2Bucket: "b", StorageR2AccessKeyID: "k", StorageR2SecretAccessKey: "s"},
		"oss no bucket":  {StorageType: TypeOSS, StorageOSSEndpoint: "oss-cn-hangzhou.aliyuncs.com"},
		"cos no url":     {StorageType: TypeCOS},
		"cos no creds":   {StorageType: TypeCOS, StorageCOSBucketURL: "https://b.cos.ap-guangzhou.myqcloud.com"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewStorage(cfg); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}
