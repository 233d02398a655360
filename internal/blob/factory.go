package blob

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// DefaultFSRoot is the artifact directory used when none is configured.
const DefaultFSRoot = "./reports"

// Config selects and configures an artifact store.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// ConfigFromEnv reads the artifact store selection from the environment.
//
//	FMEA_BLOB_DRIVER: fs|s3|memory (default fs)
//	FMEA_BLOB_FS_ROOT: directory when driver=fs (default ./reports)
//	FMEA_BLOB_S3_BUCKET: bucket when driver=s3 (required)
//	FMEA_BLOB_S3_REGION: region (default us-east-1)
//	FMEA_BLOB_S3_ENDPOINT: custom endpoint, e.g. MinIO
//	FMEA_BLOB_S3_PATH_STYLE: true|false
func ConfigFromEnv() Config {
	return Config{
		Driver: Driver(os.Getenv("FMEA_BLOB_DRIVER")),
		FSRoot: os.Getenv("FMEA_BLOB_FS_ROOT"),
		S3: S3Config{
			Bucket:    os.Getenv("FMEA_BLOB_S3_BUCKET"),
			Region:    os.Getenv("FMEA_BLOB_S3_REGION"),
			Endpoint:  os.Getenv("FMEA_BLOB_S3_ENDPOINT"),
			PathStyle: strings.EqualFold(os.Getenv("FMEA_BLOB_S3_PATH_STYLE"), "true"),
		},
	}
}

// Open builds the store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		root := cfg.FSRoot
		if root == "" {
			root = DefaultFSRoot
		}
		return NewFilesystem(root)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// OpenFromEnv is Open(ctx, ConfigFromEnv()).
func OpenFromEnv(ctx context.Context) (Store, error) {
	return Open(ctx, ConfigFromEnv())
}
