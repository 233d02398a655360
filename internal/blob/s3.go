package blob

import (
	"context"

	infraS3 "fmeacore/internal/infra/blob/s3"
)

// S3Config configures the S3 driver.
type S3Config = infraS3.Config

// NewS3 returns an S3-backed store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	s, err := infraS3.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewMockS3ForTests returns an S3 store served by an in-process fake, for
// tests in other packages.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
