package filestore

import (
	"path"
	"strings"

	"github.com/koustreak/automodel/internal/errs"
	"github.com/minio/minio-go/v7/pkg/s3utils"
)

// Provider identifies the object storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config describes where generated files are published.
type Config struct {
	Provider Provider

	// Endpoint is host:port, e.g. "localhost:9000".
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string

	// Bucket receives the files and is created when missing.
	Bucket string
	Prefix string
}

// DefaultConfig returns a plain-HTTP MinIO config.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}
}

// Validate checks the provider, the endpoint and, when set, the bucket name.
func (c *Config) Validate() error {
	if c.Provider != "" && c.Provider != ProviderMinIO {
		return errs.New(errs.ErrKindUnsupported, "unsupported object store provider: "+string(c.Provider))
	}
	if c.Endpoint == "" {
		return errs.New(errs.ErrKindInvalidInput, "object store endpoint is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		return errs.New(errs.ErrKindInvalidInput, "object store endpoint must be host:port, got "+c.Endpoint)
	}
	if c.Bucket != "" {
		if err := s3utils.CheckValidBucketNameStrict(c.Bucket); err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, "bucket "+c.Bucket, err)
		}
	}
	return nil
}

// ObjectKey returns the key name is stored under.
func (c *Config) ObjectKey(name string) string {
	return path.Join(c.Prefix, name)
}
