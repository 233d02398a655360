package blob

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	mem, err := Open(ctx, Config{Driver: DriverMemory})
	if err != nil || mem.Driver() != DriverMemory {
		t.Fatalf("memory: %v", err)
	}
	fs, err := Open(ctx, Config{FSRoot: t.TempDir()})
	if err != nil || fs.Driver() != DriverFilesystem {
		t.Fatalf("fs default: %v", err)
	}
	if _, err := Open(ctx, Config{Driver: DriverS3}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	if _, err := Open(ctx, Config{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("FMEA_BLOB_DRIVER", "s3")
	t.Setenv("FMEA_BLOB_FS_ROOT", "/tmp/reports")
	t.Setenv("FMEA_BLOB_S3_BUCKET", "fmea")
	t.Setenv("FMEA_BLOB_S3_REGION", "eu-central-1")
	t.Setenv("FMEA_BLOB_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("FMEA_BLOB_S3_PATH_STYLE", "TRUE")
	cfg := ConfigFromEnv()
	if cfg.Driver != DriverS3 || cfg.FSRoot != "/tmp/reports" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.S3.Bucket != "fmea" || cfg.S3.Region != "eu-central-1" || cfg.S3.Endpoint != "http://minio:9000" || !cfg.S3.PathStyle {
		t.Fatalf("unexpected s3 config %+v", cfg.S3)
	}
}

func TestOpenFromEnvMemory(t *testing.T) {
	t.Setenv("FMEA_BLOB_DRIVER", "memory")
	store, err := OpenFromEnv(context.Background())
	if err != nil || store.Driver() != DriverMemory {
		t.Fatalf("open from env: %v", err)
	}
}

func TestDriversShareErrorContract(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	for _, store := range []Store{NewMemory(), fs, NewMockS3ForTests()} {
		if _, err := store.Put(ctx, "r/a.csv", strings.NewReader("x"), PutOptions{}); err != nil {
			t.Fatalf("%s put: %v", store.Driver(), err)
		}
		if _, err := store.Put(ctx, "r/a.csv", strings.NewReader("x"), PutOptions{}); !errors.Is(err, ErrExists) {
			t.Fatalf("%s: expected ErrExists, got %v", store.Driver(), err)
		}
		if _, err := store.Head(ctx, "r/missing.csv"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", store.Driver(), err)
		}
	}
}
